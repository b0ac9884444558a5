package command

import (
	"fmt"
	"strings"

	"github.com/tadpole/tadpole/internal/resp"
)

// Dispatch resolves args[0] to a command, validates arity, and invokes the
// handler. Command name lookup is case-insensitive; argument bodies are
// passed through untouched. QUIT is handled inline here rather than
// through the table since closing the connection isn't a store operation.
func Dispatch(srv Server, args [][]byte) ([]byte, Action) {
	name := strings.ToLower(string(args[0]))

	if name == "quit" {
		return resp.OK, ActionClose
	}

	e, ok := table[name]
	if !ok {
		return resp.Error(fmt.Sprintf("unknown command '%s'", args[0])), ActionNone
	}

	argc := len(args)
	if (e.arity > 0 && argc != e.arity) || (e.arity < 0 && argc < -e.arity) {
		return resp.Error(fmt.Sprintf("wrong number of arguments for '%s' command", name)), ActionNone
	}

	return e.handler(srv, args)
}
