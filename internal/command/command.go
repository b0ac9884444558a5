// Package command implements tadpole's static command table and handlers:
// arity-checked, case-insensitive dispatch from a parsed argument vector
// onto internal/store operations and RESP-formatted replies.
package command

import (
	"github.com/tadpole/tadpole/internal/config"
	"github.com/tadpole/tadpole/internal/store"
)

// Action tells the caller (the reactor) what to do with the connection
// after a command returns, beyond writing the reply bytes.
type Action int

const (
	// ActionNone leaves the connection open; this is the common case.
	ActionNone Action = iota
	// ActionClose closes the connection after the reply (if any) is sent —
	// used only by QUIT.
	ActionClose
	// ActionShutdown tells the server to run its shutdown sequence
	// (snapshot save, log, process exit) — used only by SHUTDOWN.
	ActionShutdown
)

// Server is the slice of server state a command handler needs. It exists
// so this package depends on store/config but not on the reactor or
// process-bootstrap packages that assemble the real server.
type Server interface {
	Store() *store.Store
	FixedLength() *config.FixedLength
}

// Handler executes one already arity-checked command and produces the
// reply bytes to write (nil means "no reply") plus what the caller should
// do with the connection afterward.
type Handler func(srv Server, args [][]byte) ([]byte, Action)

type entry struct {
	arity   int
	handler Handler
}

// table is the static command dictionary. Negative arity means "at least
// -arity arguments"; positive means "exactly arity". It is immutable after
// package init.
var table = map[string]entry{
	"ping":     {1, handlePing},
	"get":      {2, handleGet},
	"put":      {3, handlePut},
	"set":      {3, handlePut},
	"delete":   {2, handleDelete},
	"scan":     {3, handleScan},
	"show":     {1, handleShow},
	"shutdown": {1, handleShutdown},
}
