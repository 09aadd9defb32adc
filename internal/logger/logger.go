// Package logger provides a small, centralized logging facility with
// configurable verbosity levels.
//
// Verbosity levels (in increasing order):
//
//	Error < Warn < Info < Debug < Trace
//
// Example usage:
//
//	logger.SetLevel("debug")
//	logger.Infof("pricing %s", underlying)
//	logger.Debugf("spot=%f vol=%f", spot, vol)
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int32

const (
	Error Level = iota // Error logs only failures.
	Warn               // Warn logs recoverable problems such as provider fallbacks.
	Info               // Info logs high-level progress.
	Debug              // Debug logs resolved inputs and intermediate values.
	Trace              // Trace logs very fine-grained execution details.
)

var levelNames = map[string]Level{
	"error": Error,
	"warn":  Warn,
	"info":  Info,
	"debug": Debug,
	"trace": Trace,
}

// current holds the active verbosity level.
// Only messages with level <= current are logged.
var current atomic.Int32

var std = log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)

func init() {
	current.Store(int32(Info))
}

func (l Level) String() string {
	for name, lvl := range levelNames {
		if lvl == l {
			return name
		}
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel maps a level name ("error", "warn", "info", "debug", "trace")
// to its Level.
func ParseLevel(name string) (Level, error) {
	lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Info, fmt.Errorf("unknown log level %q", name)
	}
	return lvl, nil
}

// SetLevel sets the global verbosity by name. An empty name is a no-op.
func SetLevel(name string) error {
	if name == "" {
		return nil
	}
	lvl, err := ParseLevel(name)
	if err != nil {
		return err
	}
	current.Store(int32(lvl))
	return nil
}

// SetVerbosity sets the global verbosity numerically.
func SetVerbosity(v int) {
	current.Store(int32(v))
}

// Verbosity returns the active level.
func Verbosity() Level {
	return Level(current.Load())
}

// SetOutput redirects log output, e.g. to a buffer in tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

func logf(l Level, prefix, format string, args ...any) {
	if Level(current.Load()) >= l {
		// depth 3: logf -> Xxxf -> caller
		_ = std.Output(3, prefix+fmt.Sprintf(format, args...))
	}
}

// Errorf logs an error-level message.
func Errorf(format string, args ...any) {
	logf(Error, "[ERROR] ", format, args...)
}

// Warnf logs a warning.
func Warnf(format string, args ...any) {
	logf(Warn, "[WARN]  ", format, args...)
}

// Infof logs an informational message.
func Infof(format string, args ...any) {
	logf(Info, "[INFO]  ", format, args...)
}

// Debugf logs debugging information.
func Debugf(format string, args ...any) {
	logf(Debug, "[DEBUG] ", format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	logf(Trace, "[TRACE] ", format, args...)
}
