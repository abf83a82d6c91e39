package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"trend-observer/src/models"
)

// Log levels in increasing severity.
const (
	LevelDebug = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name   string
	level  int
	logger *log.Logger
	exit   func(int)
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. A nil config logs at INFO.
func NewLogger(cfg *models.MConfig, name string) *Logger {
	level := LevelInfo
	if cfg != nil {
		level = ParseLevel(cfg.LogLevel)
	}
	return &Logger{
		name:   name,
		level:  level,
		logger: log.New(os.Stdout, "", log.LstdFlags),
		exit:   os.Exit,
	}
}

// -----------------------------------------------------------------------------

// ParseLevel maps a config string to a level, defaulting to INFO.
func ParseLevel(s string) int {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	case "CRITICAL":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// -----------------------------------------------------------------------------

// Named returns a logger for a sub-component sharing output and level.
func (l *Logger) Named(name string) *Logger {
	return &Logger{name: name, level: l.level, logger: l.logger, exit: l.exit}
}

// -----------------------------------------------------------------------------

// SetOutput redirects the log stream.
func (l *Logger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// -----------------------------------------------------------------------------

func (l *Logger) write(level int, tag, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s: %s", l.name, tag, msg)
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, "DEBUG", format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.write(LevelWarning, "WARNING", format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, "INFO", format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, "ERROR", format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] CRITICAL: %s", l.name, msg)
	l.exit(1)
}
