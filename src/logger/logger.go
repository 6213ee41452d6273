package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"exchange-chat/src/models"
)

// -----------------------------------------------------------------------------

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// ParseLevel maps a config log_level to a Level. Unknown values mean INFO.
func ParseLevel(s string) Level {
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

// Logger provides structured logging functionality
type Logger struct {
	name   string
	logger *log.Logger
	level  Level
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. config may be nil, a *models.MConfig
// or anything embedding one; its LogLevel sets the minimum level.
func NewLogger(config interface{}, name string) *Logger {
	return NewLoggerWithWriter(config, name, os.Stdout)
}

// -----------------------------------------------------------------------------

// NewLoggerWithWriter is NewLogger with an explicit destination.
func NewLoggerWithWriter(config interface{}, name string, w io.Writer) *Logger {
	l := &Logger{
		name:   name,
		logger: log.New(w, "", log.LstdFlags),
		level:  LevelInfo,
	}
	if lv, ok := config.(interface{ GetLogLevel() string }); ok {
		l.level = ParseLevel(lv.GetLogLevel())
	} else if cfg, ok := config.(*models.MConfig); ok && cfg != nil {
		l.level = ParseLevel(cfg.LogLevel)
	}
	return l
}

// -----------------------------------------------------------------------------

// Named returns a logger for a sub-component sharing destination and level.
func (l *Logger) Named(name string) *Logger {
	return &Logger{name: name, logger: l.logger, level: l.level}
}

// -----------------------------------------------------------------------------

func (l *Logger) print(level Level, tag, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s: %s", l.name, tag, msg)
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.print(LevelDebug, "DEBUG", format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.print(LevelWarning, "WARNING", format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.print(LevelInfo, "INFO", format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.print(LevelError, "ERROR", format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] CRITICAL: %s", l.name, msg)
	os.Exit(1)
}
