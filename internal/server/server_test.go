package server

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tadpole/tadpole/internal/config"
	"github.com/tadpole/tadpole/internal/logging"
)

func newTestConfig(t *testing.T, dbFile string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Port = 0
	cfg.LogLevel = logging.LevelWarning
	cfg.DBFilename = dbFile
	return cfg
}

func TestServerLifecycleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "dump.data")
	cfg := newTestConfig(t, dbFile)

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	port, err := srv.reactor.Port()
	if err != nil {
		t.Fatalf("Port: %v", err)
	}

	done := make(chan struct{})
	go func() {
		srv.Run()
		close(done)
	}()

	addr := net.JoinHostPort("127.0.0.1", itoaForTest(port))
	conn := dialForTest(t, addr)
	conn.Write([]byte("*3\r\n$3\r\nput\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"))
	readReplyForTest(t, conn, "+OK\r\n")
	conn.Close()

	srv.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	srv.Shutdown()

	data, err := os.ReadFile(dbFile)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if string(data) != "foo bar\n" {
		t.Fatalf("snapshot content = %q", data)
	}
}

func itoaForTest(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func dialForTest(t *testing.T, addr string) net.Conn {
	t.Helper()
	var lastErr error
	for i := 0; i < 50; i++ {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			conn.SetDeadline(time.Now().Add(2 * time.Second))
			return conn
		}
		lastErr = err
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("dial %s: %v", addr, lastErr)
	return nil
}

func readReplyForTest(t *testing.T, conn net.Conn, want string) {
	t.Helper()
	buf := make([]byte, len(want))
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if string(buf) != want {
		t.Fatalf("got %q, want %q", buf, want)
	}
}
