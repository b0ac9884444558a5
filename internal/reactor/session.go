package reactor

import (
	"bufio"

	"golang.org/x/sys/unix"

	"github.com/tadpole/tadpole/internal/resp"
)

// fdWriter adapts a raw, non-blocking file descriptor to io.Writer, looping
// over unix.Write until every byte is accepted or a non-EAGAIN error
// occurs. This keeps the "reply fully delivered or connection closed"
// contract; EAGAIN is retried in place, so a slow client holds up the
// whole event loop until its reply is written.
type fdWriter int

func (w fdWriter) Write(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := unix.Write(int(w), p[total:])
		if err != nil {
			if err == unix.EAGAIN {
				continue
			}
			return total, err
		}
		total += n
	}
	return total, nil
}

// session is one client connection's reactor-owned state: the raw fd, its
// protocol parser, and a buffered reply writer over that same fd.
type session struct {
	fd     int
	parser *resp.Parser
	out    *bufio.Writer
}

func newSession(fd int) *session {
	return &session{
		fd:     fd,
		parser: resp.NewParser(),
		out:    bufio.NewWriter(fdWriter(fd)),
	}
}
