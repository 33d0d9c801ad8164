// Package logging provides leveled, component-prefixed logging on top of the
// standard logger.
package logging

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

// Level represents different logging verbosity levels
type Level int32

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelNames = map[string]Level{
	"ERROR": LevelError,
	"WARN":  LevelWarn,
	"INFO":  LevelInfo,
	"DEBUG": LevelDebug,
}

// ParseLevel converts a level name such as "debug" into a Level
func ParseLevel(name string) (Level, error) {
	level, ok := levelNames[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

var current atomic.Int32

func init() {
	current.Store(int32(LevelInfo))
}

// SetLevel changes the process-wide verbosity
func SetLevel(level Level) {
	current.Store(int32(level))
}

// GetLevel returns the process-wide verbosity
func GetLevel() Level {
	return Level(current.Load())
}

// Logger writes messages tagged with a component name
type Logger struct {
	component string
}

// New creates a logger for the named component
func New(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) logf(level Level, tag, format string, args ...interface{}) {
	if GetLevel() < level {
		return
	}
	log.Printf("["+tag+"] ["+l.component+"] "+format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LevelError, "ERROR", format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(LevelWarn, "WARN", format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LevelInfo, "INFO", format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LevelDebug, "DEBUG", format, args...)
}
