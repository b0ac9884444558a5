// Package snapshot implements tadpole's whole-database dump and reload as a
// flat text file of "key value" lines. Save walks the store into one
// ordered []byte slice per record and hands the whole batch to
// golang.org/x/sys/unix's Writev in as few syscalls as IOV_MAX allows,
// rather than issuing one write(2) per record.
package snapshot

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/tadpole/tadpole/internal/store"
)

// writevMaxIovec caps how many buffers are handed to a single Writev call;
// Linux's IOV_MAX is typically 1024.
const writevMaxIovec = 1024

// Save walks st's level-0 chain and writes "<key> <value>\n" records to a
// sibling temp-<pid>.data file, fsyncs it, then renames it over dbFilename
// — an atomic overwrite on POSIX rename semantics, so a crash mid-save
// never corrupts the last good snapshot.
func Save(dbFilename string, st *store.Store) error {
	dir := filepath.Dir(dbFilename)
	tmpPath := filepath.Join(dir, fmt.Sprintf("temp-%d.data", os.Getpid()))

	fd, err := unix.Open(tmpPath, os.O_WRONLY|os.O_CREAT|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("snapshot: open %s: %w", tmpPath, err)
	}

	var buffers [][]byte
	var walkErr error
	st.All(func(key, val []byte) {
		if bytes.IndexByte(key, ' ') >= 0 || bytes.IndexByte(key, '\n') >= 0 ||
			bytes.IndexByte(val, ' ') >= 0 || bytes.IndexByte(val, '\n') >= 0 {
			walkErr = fmt.Errorf("snapshot: key or value contains space/newline, cannot be represented in the text snapshot format")
			return
		}
		line := make([]byte, 0, len(key)+len(val)+2)
		line = append(line, key...)
		line = append(line, ' ')
		line = append(line, val...)
		line = append(line, '\n')
		buffers = append(buffers, line)
	})
	if walkErr != nil {
		unix.Close(fd)
		os.Remove(tmpPath)
		return walkErr
	}

	for len(buffers) > 0 {
		n := len(buffers)
		if n > writevMaxIovec {
			n = writevMaxIovec
		}
		if _, err := unix.Writev(fd, buffers[:n]); err != nil {
			unix.Close(fd)
			os.Remove(tmpPath)
			return fmt.Errorf("snapshot: writev: %w", err)
		}
		buffers = buffers[n:]
	}

	if err := unix.Fsync(fd); err != nil {
		unix.Close(fd)
		os.Remove(tmpPath)
		return fmt.Errorf("snapshot: fsync: %w", err)
	}
	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("snapshot: close: %w", err)
	}

	if err := os.Rename(tmpPath, dbFilename); err != nil {
		return fmt.Errorf("snapshot: rename %s to %s: %w", tmpPath, dbFilename, err)
	}
	return nil
}

// Load reads dbFilename line by line, splitting each on the first space,
// and inserts each pair into st. If dbFilename does not exist, Load is a
// no-op — there is nothing to restore on a first run. A malformed line (not
// exactly two space-separated fields) is a fatal startup error.
func Load(dbFilename string, st *store.Store) error {
	f, err := os.Open(dbFilename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("snapshot: open %s: %w", dbFilename, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 512*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		idx := bytes.IndexByte(line, ' ')
		if idx < 0 || bytes.IndexByte(line[idx+1:], ' ') >= 0 {
			return fmt.Errorf("snapshot: data file format error, load failed")
		}
		key := append([]byte(nil), line[:idx]...)
		val := append([]byte(nil), line[idx+1:]...)
		st.LoadRaw(key, val)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("snapshot: reading %s: %w", dbFilename, err)
	}
	return nil
}
