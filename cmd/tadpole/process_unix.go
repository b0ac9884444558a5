package main

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/tadpole/tadpole/internal/server"
)

// daemonize re-executes the current binary detached from the controlling
// terminal, with a new session (Setsid) and std streams redirected to
// /dev/null, then lets the parent return so it can exit. This is the
// closest a single Go process image gets to fork()+setsid().
func daemonize() error {
	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer devnull.Close()

	cmd := exec.Command(os.Args[0], os.Args[1:]...)
	cmd.Stdin = devnull
	cmd.Stdout = devnull
	cmd.Stderr = devnull
	cmd.Env = append(os.Environ(), daemonizedEnv+"=1")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd.Start()
}

// installSignalHandlers wires SIGTERM/SIGINT/SIGCHLD to a graceful
// shutdown (srv.Stop unblocks Run so main can call Shutdown) and ignores
// SIGHUP/SIGPIPE so that a dead peer only ever surfaces as EPIPE/EAGAIN on
// write.
func installSignalHandlers(srv *server.Server) {
	signal.Ignore(syscall.SIGHUP, syscall.SIGPIPE)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGINT, syscall.SIGCHLD)
	go func() {
		for range sig {
			srv.Stop()
		}
	}()
}
