// Package config loads tadpole's directive-style configuration file into a
// populated Config record: one directive per line, same quote-aware
// tokenizer the inline command parser uses, explicit errors and no panics
// on malformed input.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tadpole/tadpole/internal/logging"
	"github.com/tadpole/tadpole/internal/resp"
)

// FixedLength enforces exact key/value byte lengths across GET/PUT/DELETE/
// SCAN, set via the "fixed-length" directive.
type FixedLength struct {
	KeyLen int
	ValLen int
}

// Config is the populated record produced by Load.
type Config struct {
	Port        int
	LogLevel    logging.Level
	Dir         string
	LogFile     string
	Daemonize   bool
	PidFile     string
	FixedLength *FixedLength
	DBFilename  string
}

// Default returns the config a fresh server starts from before any
// directives are applied: port 6666, notice-level logging, log to stdout.
func Default() *Config {
	return &Config{
		Port:       6666,
		LogLevel:   logging.LevelNotice,
		LogFile:    "",
		DBFilename: "dump.data",
	}
}

// Load reads path and applies its directives on top of Default().
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg := Default()
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := applyDirective(cfg, line); err != nil {
			return nil, fmt.Errorf("config: line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	return cfg, nil
}

func applyDirective(cfg *Config, line string) error {
	tokens, err := resp.SplitArgs([]byte(line))
	if err != nil {
		return fmt.Errorf("unbalanced quotes in configuration line")
	}
	if len(tokens) == 0 {
		return nil
	}

	argv := make([]string, len(tokens))
	for i, tok := range tokens {
		argv[i] = string(tok)
	}
	directive := strings.ToLower(argv[0])

	switch {
	case directive == "port" && len(argv) == 2:
		port, err := strconv.Atoi(argv[1])
		if err != nil || port < 0 || port > 65535 {
			return fmt.Errorf("invalid port")
		}
		cfg.Port = port

	case directive == "loglevel" && len(argv) == 2:
		level, err := logging.ParseLevel(strings.ToLower(argv[1]))
		if err != nil {
			return fmt.Errorf("invalid log level. Must be one of debug, verbose, notice, warning")
		}
		cfg.LogLevel = level

	case directive == "dir" && len(argv) == 2:
		if err := os.Chdir(argv[1]); err != nil {
			return fmt.Errorf("changing directory failed: %w", err)
		}
		cfg.Dir = argv[1]

	case directive == "logfile" && len(argv) == 2:
		if argv[1] != "" {
			f, err := os.OpenFile(argv[1], os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("can't open the log file: %w", err)
			}
			f.Close()
		}
		cfg.LogFile = argv[1]

	case directive == "daemonize" && len(argv) == 2:
		yes, err := yesNo(argv[1])
		if err != nil {
			return err
		}
		cfg.Daemonize = yes

	case directive == "pidfile" && len(argv) == 2:
		cfg.PidFile = argv[1]

	case directive == "fixed-length" && len(argv) == 3:
		keyLen, err1 := strconv.Atoi(argv[1])
		valLen, err2 := strconv.Atoi(argv[2])
		if err1 != nil || err2 != nil || keyLen <= 0 || valLen <= 0 {
			return fmt.Errorf("fixed-length requires two positive integers")
		}
		cfg.FixedLength = &FixedLength{KeyLen: keyLen, ValLen: valLen}

	case directive == "dbfilename" && len(argv) == 2:
		if !isBaseName(argv[1]) {
			return fmt.Errorf("dbfilename can't be a path, just a filename")
		}
		cfg.DBFilename = argv[1]

	default:
		return fmt.Errorf("bad directive or wrong number of arguments")
	}

	return nil
}

func yesNo(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	default:
		return false, fmt.Errorf("argument must be 'yes' or 'no'")
	}
}

func isBaseName(name string) bool {
	return name != "" && name == filepath.Base(name) && !strings.ContainsAny(name, `/\`)
}
