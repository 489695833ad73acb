// =============================================================================
// Tax Invoice Generator - Logging
// =============================================================================
//
// A small leveled logger used by the converter and the CLI commands. Messages
// are printf-style and prefixed with their level:
//
//   2025/04/22 10:15:02 [INFO] Processing file: data/DMART/1546_20250422_01.xlsx
//
// Output goes to stdout and, when a log file is configured, to that file too.
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Logger is the logging interface used throughout the application.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Level is a logging threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a config value to a Level. Unknown values map to info.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// levelLogger filters messages below its threshold.
type levelLogger struct {
	level Level
	out   *log.Logger
}

// New returns a Logger writing to w at the given level.
func New(w io.Writer, level Level) Logger {
	return &levelLogger{
		level: level,
		out:   log.New(w, "", log.LstdFlags),
	}
}

// NewFromConfig builds the application logger. When logFile is non-empty the
// file is opened for append (its directory is created) and messages go to both
// stdout and the file. The returned closer must be called on exit.
func NewFromConfig(logFile, level string, verbose bool) (Logger, io.Closer, error) {
	lvl := ParseLevel(level)
	if verbose {
		lvl = LevelDebug
	}

	if logFile == "" {
		return New(os.Stdout, lvl), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return New(io.MultiWriter(os.Stdout, f), lvl), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return New(io.Discard, LevelError+1)
}

func (l *levelLogger) Debug(msg string, args ...interface{}) {
	l.print(LevelDebug, "DEBUG", msg, args)
}

func (l *levelLogger) Info(msg string, args ...interface{}) {
	l.print(LevelInfo, "INFO", msg, args)
}

func (l *levelLogger) Warn(msg string, args ...interface{}) {
	l.print(LevelWarn, "WARN", msg, args)
}

func (l *levelLogger) Error(msg string, args ...interface{}) {
	l.print(LevelError, "ERROR", msg, args)
}

func (l *levelLogger) print(level Level, tag, msg string, args []interface{}) {
	if level < l.level {
		return
	}
	l.out.Printf("["+tag+"] "+msg, args...)
}
