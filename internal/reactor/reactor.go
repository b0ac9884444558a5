// Package reactor implements tadpole's single-threaded readiness loop:
// one epoll instance owns the listening socket and every client socket,
// accepts connections, reads bytes into each client's parser, dispatches
// complete commands in arrival order, and writes replies back. Everything
// here runs on one goroutine between epoll_wait calls, except Stop, which
// may be called from any goroutine and is guarded by a sync.Once.
package reactor

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/tadpole/tadpole/internal/command"
	"github.com/tadpole/tadpole/internal/logging"
)

const (
	maxEvents     = 1024
	readChunk     = 16 * 1024
	listenBacklog = 128
	keepaliveSecs = 60
	pollTimeoutMs = 1000
)

// Reactor owns the listening socket, the epoll instance, and every
// currently-connected client session.
type Reactor struct {
	epfd     int
	listenFd int
	sessions map[int32]*session

	srv command.Server
	log *logging.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a Reactor that will dispatch commands against srv, logging
// through log. Call Listen before Run.
func New(srv command.Server, log *logging.Logger) *Reactor {
	return &Reactor{
		sessions: make(map[int32]*session),
		srv:      srv,
		log:      log,
		stop:     make(chan struct{}),
	}
}

// Listen opens a non-blocking listening socket on port, registers it with a
// fresh epoll instance, and prepares the reactor to accept connections.
func (r *Reactor) Listen(port int) error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("reactor: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return fmt.Errorf("reactor: setsockopt SO_REUSEADDR: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
		unix.Close(fd)
		return fmt.Errorf("reactor: bind port %d: %w", port, err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		unix.Close(fd)
		return fmt.Errorf("reactor: listen: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return fmt.Errorf("reactor: set listen socket nonblocking: %w", err)
	}

	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		unix.Close(fd)
		return fmt.Errorf("reactor: epoll_create1: %w", err)
	}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(fd),
	}); err != nil {
		unix.Close(fd)
		unix.Close(epfd)
		return fmt.Errorf("reactor: epoll_ctl add listen fd: %w", err)
	}

	r.listenFd = fd
	r.epfd = epfd
	return nil
}

// Port reports the listening socket's bound port, useful after Listen(0)
// lets the kernel pick an ephemeral one.
func (r *Reactor) Port() (int, error) {
	sa, err := unix.Getsockname(r.listenFd)
	if err != nil {
		return 0, fmt.Errorf("reactor: getsockname: %w", err)
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, fmt.Errorf("reactor: unexpected sockaddr type %T", sa)
	}
	return in4.Port, nil
}

// Run blocks, servicing readiness events, until Stop is called (directly,
// or indirectly via a dispatched SHUTDOWN command) or epoll_wait returns a
// fatal error.
func (r *Reactor) Run() error {
	events := make([]unix.EpollEvent, maxEvents)
	for {
		select {
		case <-r.stop:
			return nil
		default:
		}

		n, err := unix.EpollWait(r.epfd, events, pollTimeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("reactor: epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			fd := events[i].Fd
			if int(fd) == r.listenFd {
				r.acceptAll()
				continue
			}
			if sess, ok := r.sessions[fd]; ok {
				r.handleReadable(sess)
			}
		}

		select {
		case <-r.stop:
			return nil
		default:
		}
	}
}

// Stop requests Run to return after the current poll iteration. Safe to
// call more than once or from within a dispatched handler.
func (r *Reactor) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Close releases every session, the listening socket, and the epoll
// instance. Call after Run returns.
func (r *Reactor) Close() {
	for _, sess := range r.sessions {
		r.closeSession(sess)
	}
	if r.listenFd != 0 {
		unix.Close(r.listenFd)
	}
	if r.epfd != 0 {
		unix.Close(r.epfd)
	}
}

// acceptAll drains every pending connection on the listening socket (it is
// level-triggered, so a single epoll event may represent several pending
// connections queued in the backlog).
func (r *Reactor) acceptAll() {
	for {
		connFd, _, err := unix.Accept(r.listenFd)
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			r.log.Warningf("accept: %v", err)
			return
		}

		if err := unix.SetNonblock(connFd, true); err != nil {
			unix.Close(connFd)
			continue
		}
		unix.SetsockoptInt(connFd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		unix.SetsockoptInt(connFd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
		unix.SetsockoptInt(connFd, unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, keepaliveSecs)

		sess := newSession(connFd)
		if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, connFd, &unix.EpollEvent{
			Events: unix.EPOLLIN,
			Fd:     int32(connFd),
		}); err != nil {
			unix.Close(connFd)
			continue
		}
		r.sessions[int32(connFd)] = sess
	}
}

// handleReadable reads one chunk from sess, feeds it to the parser, and
// drains any complete commands. read == 0 or a non-EAGAIN error closes the
// session.
func (r *Reactor) handleReadable(sess *session) {
	buf := make([]byte, readChunk)
	n, err := unix.Read(sess.fd, buf)
	if err != nil {
		if err == unix.EAGAIN {
			return
		}
		r.closeSession(sess)
		return
	}
	if n == 0 {
		r.closeSession(sess)
		return
	}

	if ferr := sess.parser.Feed(buf[:n]); ferr != nil {
		r.log.Noticef("closing fd %d after protocol error: %v", sess.fd, ferr)
		r.closeSession(sess)
		return
	}
	r.drain(sess)
}

// drain dispatches every command the parser can currently produce, in
// arrival order, writing each reply before moving to the next.
func (r *Reactor) drain(sess *session) {
	for {
		args, ok, err := sess.parser.Next()
		if err != nil {
			r.log.Noticef("closing fd %d after protocol error: %v", sess.fd, err)
			r.closeSession(sess)
			return
		}
		if !ok {
			return
		}
		if len(args) == 0 {
			continue
		}

		reply, action := command.Dispatch(r.srv, args)
		if reply != nil && !r.writeReply(sess, reply) {
			return
		}

		switch action {
		case command.ActionClose:
			r.closeSession(sess)
			return
		case command.ActionShutdown:
			r.closeSession(sess)
			r.Stop()
			return
		}
	}
}

// writeReply flushes data to the client, closing the session on any error
// other than having delivered every byte.
func (r *Reactor) writeReply(sess *session, data []byte) bool {
	if _, err := sess.out.Write(data); err == nil {
		err = sess.out.Flush()
		if err == nil {
			return true
		}
	}
	r.log.Noticef("closing fd %d after write error", sess.fd)
	r.closeSession(sess)
	return false
}

func (r *Reactor) closeSession(sess *session) {
	unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, sess.fd, nil)
	unix.Close(sess.fd)
	delete(r.sessions, int32(sess.fd))
}
