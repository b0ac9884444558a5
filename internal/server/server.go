// Package server assembles tadpole's store, configuration, logging, and
// reactor into the process-wide context command handlers run against, and
// sequences startup (snapshot load, listen) and shutdown (snapshot save).
package server

import (
	"fmt"

	"github.com/tadpole/tadpole/internal/command"
	"github.com/tadpole/tadpole/internal/config"
	"github.com/tadpole/tadpole/internal/logging"
	"github.com/tadpole/tadpole/internal/reactor"
	"github.com/tadpole/tadpole/internal/snapshot"
	"github.com/tadpole/tadpole/internal/store"
)

// Server is the process-wide context: the one instance a running tadpole
// process holds, implementing command.Server so the dispatcher can reach
// the store and the fixed-length constraint.
type Server struct {
	st      *store.Store
	cfg     *config.Config
	log     *logging.Logger
	reactor *reactor.Reactor
}

var _ command.Server = (*Server)(nil)

// New builds a Server from cfg: opens the log sink, loads the snapshot
// file (if any), and binds the listening socket. The reactor does not
// start accepting connections until Run is called.
func New(cfg *config.Config) (*Server, error) {
	log, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	st := store.New()
	if err := snapshot.Load(cfg.DBFilename, st); err != nil {
		log.Warningf("data file format error, load failed: %v", err)
		return nil, fmt.Errorf("server: %w", err)
	}

	srv := &Server{st: st, cfg: cfg, log: log}
	srv.reactor = reactor.New(srv, log)
	if err := srv.reactor.Listen(cfg.Port); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	return srv, nil
}

// Store implements command.Server.
func (s *Server) Store() *store.Store { return s.st }

// FixedLength implements command.Server.
func (s *Server) FixedLength() *config.FixedLength { return s.cfg.FixedLength }

// Run blocks, servicing client connections, until shutdown is requested —
// either a dispatched SHUTDOWN command or an external call to Stop.
func (s *Server) Run() error {
	s.log.Noticef("tadpole listening on port %d", s.cfg.Port)
	return s.reactor.Run()
}

// Stop requests Run to return on its next poll iteration. Safe to call
// from a signal handler.
func (s *Server) Stop() {
	s.reactor.Stop()
}

// Shutdown persists the snapshot and releases reactor resources. Call
// exactly once, after Run returns.
func (s *Server) Shutdown() {
	s.log.Warningf("tadpole is now ready to exit, bye bye...")
	if err := snapshot.Save(s.cfg.DBFilename, s.st); err != nil {
		s.log.Warningf("snapshot save failed: %v", err)
	}
	s.reactor.Close()
}
