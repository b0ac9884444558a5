// Package logging wires tadpole's four log levels (debug, verbose, notice,
// warning) onto github.com/sirupsen/logrus. logrus has no verbose/notice
// rungs of its own, so both map onto logrus's Info level with a "level"
// field carrying which one was actually requested; the four-way ordering
// is enforced independently by minLevel, regardless of what logrus itself
// would filter.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Level is tadpole's four-rung log severity, from least to most urgent.
type Level int

const (
	LevelDebug Level = iota
	LevelVerbose
	LevelNotice
	LevelWarning
)

// ParseLevel maps the config directive's textual level name onto a Level,
// or reports an error for anything else.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug":
		return LevelDebug, nil
	case "verbose":
		return LevelVerbose, nil
	case "notice":
		return LevelNotice, nil
	case "warning":
		return LevelWarning, nil
	default:
		return 0, fmt.Errorf("logging: invalid log level %q", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelVerbose:
		return "verbose"
	case LevelNotice:
		return "notice"
	case LevelWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// levelChar returns the per-level marker character used in the log line prefix.
func (l Level) levelChar() byte {
	switch l {
	case LevelDebug:
		return '.'
	case LevelVerbose:
		return '-'
	case LevelNotice:
		return '*'
	default:
		return '#'
	}
}

// Logger is tadpole's process-wide log sink: a minimum level filter wrapping
// a logrus.Logger.
type Logger struct {
	entry    *logrus.Logger
	minLevel Level
	pid      int
}

// New opens (or reuses stdout for) the configured log file and returns a
// Logger filtering below minLevel. An empty path means stdout.
func New(path string, minLevel Level) (*Logger, error) {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("logging: open logfile: %w", err)
		}
		out = f
	}

	base := logrus.New()
	base.SetOutput(out)
	base.SetLevel(logrus.DebugLevel)
	base.SetFormatter(&tadpoleFormatter{})

	return &Logger{entry: base, minLevel: minLevel, pid: os.Getpid()}, nil
}

func (l *Logger) logAt(level Level, msg string) {
	if level < l.minLevel {
		return
	}
	e := l.entry.WithFields(logrus.Fields{
		"pid":   l.pid,
		"level": level.String(),
		"char":  string(level.levelChar()),
	})
	switch level {
	case LevelDebug:
		e.Debug(msg)
	case LevelWarning:
		e.Warn(msg)
	default:
		e.Info(msg)
	}
}

// Debugf logs at LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logAt(LevelDebug, fmt.Sprintf(format, args...))
}

// Verbosef logs at LevelVerbose.
func (l *Logger) Verbosef(format string, args ...interface{}) {
	l.logAt(LevelVerbose, fmt.Sprintf(format, args...))
}

// Noticef logs at LevelNotice.
func (l *Logger) Noticef(format string, args ...interface{}) {
	l.logAt(LevelNotice, fmt.Sprintf(format, args...))
}

// Warningf logs at LevelWarning.
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.logAt(LevelWarning, fmt.Sprintf(format, args...))
}

// Guru logs the "Guru Meditation" banner on an invariant break, always at
// warning level regardless of the configured minimum.
func (l *Logger) Guru(msg string) {
	e := l.entry.WithFields(logrus.Fields{
		"pid":   l.pid,
		"level": LevelWarning.String(),
		"char":  string(LevelWarning.levelChar()),
	})
	e.Warning("------------------------------------------------")
	e.Warning("!!! Software Failure. Press left mouse button to continue")
	e.Warningf("Guru Meditation: %s", msg)
	e.Warning("------------------------------------------------")
}
