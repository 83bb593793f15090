// Package logging provides structured, leveled logging for causegraph.
//
// The API favors explicit, boring Go: a Logger carries a component name and
// optional persistent fields, and every method either formats printf-style or
// appends structured key/value fields.
//
// Initialize the global level once at startup:
//
//	logging.Initialize("info")
//
// Then obtain a named logger per component:
//
//	logger := logging.GetLogger("engine")
//	logger.Info("ingested event for subsystem %s", subsystem)
//	logger.InfoWithFields("edge created",
//	    logging.Field("influence", score),
//	    logging.Field("lag_ms", lag.Milliseconds()),
//	)
//
// Logger instances are immutable; WithField and WithFields return copies, so
// a logger may be shared across goroutines without coordination.
package logging

import (
	"os"
	"sync"
)

var (
	globalLevel LogLevel = INFO
	levelMu     sync.RWMutex
	// exitFunc is called by Fatal. Overridable for tests.
	exitFunc = os.Exit
)

// Initialize sets the global minimum log level. Unknown level strings fall
// back to INFO rather than failing: logging must never prevent startup.
func Initialize(levelStr string) {
	level, err := parseLevel(levelStr)
	if err != nil {
		level = INFO
	}
	levelMu.Lock()
	globalLevel = level
	levelMu.Unlock()
}

// GetLogger returns a logger with the given component name. The global
// level defaults to INFO until Initialize is called.
func GetLogger(name string) *Logger {
	return &Logger{
		name:   name,
		fields: map[string]interface{}{},
	}
}

func currentLevel() LogLevel {
	levelMu.RLock()
	defer levelMu.RUnlock()
	return globalLevel
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return level >= currentLevel()
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.shouldLog(DEBUG) {
		l.logf("DEBUG", msg, args...)
	}
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...interface{}) {
	if l.shouldLog(INFO) {
		l.logf("INFO", msg, args...)
	}
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.shouldLog(WARN) {
		l.logf("WARN", msg, args...)
	}
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	if l.shouldLog(ERROR) {
		l.logf("ERROR", msg, args...)
	}
}

// ErrorWithErr logs an error message with an attached error value.
func (l *Logger) ErrorWithErr(msg string, err error, args ...interface{}) {
	if l.shouldLog(ERROR) {
		args = append(args, err)
		l.logf("ERROR", msg+" - %v", args...)
	}
}

// Fatal logs a fatal message and exits the process with code 1.
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.logf("FATAL", msg, args...)
	exitFunc(1)
}

// DebugWithFields logs a debug message with structured fields.
func (l *Logger) DebugWithFields(msg string, fields ...LogField) {
	if l.shouldLog(DEBUG) {
		l.logWithFields("DEBUG", msg, fields...)
	}
}

// InfoWithFields logs an info message with structured fields.
func (l *Logger) InfoWithFields(msg string, fields ...LogField) {
	if l.shouldLog(INFO) {
		l.logWithFields("INFO", msg, fields...)
	}
}

// WarnWithFields logs a warning message with structured fields.
func (l *Logger) WarnWithFields(msg string, fields ...LogField) {
	if l.shouldLog(WARN) {
		l.logWithFields("WARN", msg, fields...)
	}
}

// ErrorWithFields logs an error message with structured fields.
func (l *Logger) ErrorWithFields(msg string, fields ...LogField) {
	if l.shouldLog(ERROR) {
		l.logWithFields("ERROR", msg, fields...)
	}
}

// WithName returns a new logger with a different component name.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{name: name, fields: cloneFields(l.fields)}
}

// WithField returns a new logger carrying an additional persistent field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	next := &Logger{name: l.name, fields: cloneFields(l.fields)}
	next.fields[key] = value
	return next
}

// WithFields returns a new logger carrying additional persistent fields.
func (l *Logger) WithFields(fields ...LogField) *Logger {
	next := &Logger{name: l.name, fields: cloneFields(l.fields)}
	for _, f := range fields {
		next.fields[f.Key] = f.Value
	}
	return next
}

func (l *Logger) logWithFields(level, msg string, fields ...LogField) {
	merged := cloneFields(l.fields)
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	l.writeLog(level, msg, merged)
}
