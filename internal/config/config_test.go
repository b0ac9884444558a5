package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tadpole/tadpole/internal/logging"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tadpole.conf")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "# nothing but comments\n\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 6666 {
		t.Errorf("got port %d, want 6666", cfg.Port)
	}
	if cfg.LogLevel != logging.LevelNotice {
		t.Errorf("got level %v, want notice", cfg.LogLevel)
	}
	if cfg.FixedLength != nil {
		t.Errorf("expected no fixed-length by default")
	}
}

func TestLoadDirectives(t *testing.T) {
	path := writeConfig(t, `
# tadpole config
port 7000
loglevel debug
daemonize no
pidfile /tmp/tadpole.pid
fixed-length 3 3
dbfilename snapshot.data
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 7000 {
		t.Errorf("got port %d, want 7000", cfg.Port)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Errorf("got level %v, want debug", cfg.LogLevel)
	}
	if cfg.Daemonize {
		t.Error("expected daemonize=no")
	}
	if cfg.PidFile != "/tmp/tadpole.pid" {
		t.Errorf("got pidfile %q", cfg.PidFile)
	}
	if cfg.FixedLength == nil || cfg.FixedLength.KeyLen != 3 || cfg.FixedLength.ValLen != 3 {
		t.Errorf("got fixed-length %+v", cfg.FixedLength)
	}
	if cfg.DBFilename != "snapshot.data" {
		t.Errorf("got dbfilename %q", cfg.DBFilename)
	}
}

func TestLoadRejectsDbfilenameWithPathSeparator(t *testing.T) {
	path := writeConfig(t, "dbfilename ../escape.data\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for path-shaped dbfilename")
	}
}

func TestLoadRejectsBadDirective(t *testing.T) {
	path := writeConfig(t, "not-a-real-directive foo\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown directive")
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	path := writeConfig(t, "port 70000\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.conf")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
