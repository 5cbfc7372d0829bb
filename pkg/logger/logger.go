// Package logger provides the DefaultLogger used throughout xsmd, a small
// leveled wrapper over the standard library logger with structured
// key=value fields. It implements arch.Logger without importing it, so
// cmd/xsmd, internal/manager, and friends can all depend on it directly.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// LogLevel is a logging severity threshold.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (ll LogLevel) String() string {
	switch ll {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// DefaultLogger writes leveled, component-tagged lines to stdout. Loggers
// derived with WithComponent share their parent's level and writer.
type DefaultLogger struct {
	component string
	level     LogLevel
	logger    *log.Logger
}

// New returns a DefaultLogger tagged with component, filtering anything
// below the level named by levelStr (case-insensitive; unrecognized
// values fall back to info).
func New(component, levelStr string) *DefaultLogger {
	return &DefaultLogger{
		component: component,
		level:     parseLogLevel(levelStr),
		logger:    log.New(os.Stdout, "", 0),
	}
}

// NewDefaultLogger is an alias for New kept for callers that prefer the
// explicit constructor name.
func NewDefaultLogger(component, levelStr string) *DefaultLogger {
	return New(component, levelStr)
}

func parseLogLevel(levelStr string) LogLevel {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// WithComponent returns a logger sharing this one's level and writer but
// tagged with a different component, e.g. "manager", "ipc", "startup".
func (dl *DefaultLogger) WithComponent(component string) *DefaultLogger {
	return &DefaultLogger{component: component, level: dl.level, logger: dl.logger}
}

func (dl *DefaultLogger) formatMessage(level LogLevel, msg string, fields ...interface{}) string {
	timestamp := time.Now().Format("2006-01-02T15:04:05.000Z07:00")

	var fieldStr strings.Builder
	if len(fields) > 0 {
		fieldStr.WriteString(" |")
		for i := 0; i < len(fields); i += 2 {
			if i+1 < len(fields) {
				fieldStr.WriteString(fmt.Sprintf(" %s=%v", fields[i], fields[i+1]))
			}
		}
	}

	return fmt.Sprintf("[%s] %s [%s] %s%s",
		timestamp, level.String(), dl.component, msg, fieldStr.String())
}

func (dl *DefaultLogger) shouldLog(level LogLevel) bool {
	return level >= dl.level
}

func (dl *DefaultLogger) Debug(msg string, fields ...interface{}) {
	if dl.shouldLog(LevelDebug) {
		dl.logger.Println(dl.formatMessage(LevelDebug, msg, fields...))
	}
}

func (dl *DefaultLogger) Info(msg string, fields ...interface{}) {
	if dl.shouldLog(LevelInfo) {
		dl.logger.Println(dl.formatMessage(LevelInfo, msg, fields...))
	}
}

func (dl *DefaultLogger) Warn(msg string, fields ...interface{}) {
	if dl.shouldLog(LevelWarn) {
		dl.logger.Println(dl.formatMessage(LevelWarn, msg, fields...))
	}
}

func (dl *DefaultLogger) Error(msg string, fields ...interface{}) {
	if dl.shouldLog(LevelError) {
		dl.logger.Println(dl.formatMessage(LevelError, msg, fields...))
	}
}

// Fatal logs at fatal level and terminates the process. Reserved for
// cmd/xsmd's own top-level error handling; internal/manager never calls
// it directly since a manager must never take the whole session down.
func (dl *DefaultLogger) Fatal(msg string, fields ...interface{}) {
	dl.logger.Println(dl.formatMessage(LevelFatal, msg, fields...))
	os.Exit(1)
}
