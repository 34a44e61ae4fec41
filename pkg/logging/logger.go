// Package logging provides structured component loggers over slog.
package logging

import (
	"fmt"
	"os"
	"strings"
)

// LogLevel represents the severity of a log message
type LogLevel int

// LogLevel constants represent the various log levels
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

const (
	logLevelDebug = "DEBUG"
	logLevelInfo  = "INFO"
	logLevelWarn  = "WARN"
	logLevelError = "ERROR"
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return logLevelDebug
	case INFO:
		return logLevelInfo
	case WARN:
		return logLevelWarn
	case ERROR:
		return logLevelError
	default:
		return "UNKNOWN"
	}
}

// Logger provides structured logging for a named component
type Logger struct {
	component  string
	level      LogLevel
	slogLogger *SlogLogger
}

// NewLogger creates a new logger for a specific component
func NewLogger(component string) *Logger {
	return &Logger{
		component:  component,
		level:      getLogLevel(),
		slogLogger: NewSlogLogger(component),
	}
}

// getLogLevel determines the current log level from environment
func getLogLevel() LogLevel {
	switch strings.ToUpper(os.Getenv("TWIN_LOG_LEVEL")) {
	case logLevelDebug:
		return DEBUG
	case logLevelInfo:
		return INFO
	case logLevelWarn:
		return WARN
	case logLevelError:
		return ERROR
	default:
		return INFO
	}
}

// logf logs a message at the specified level
func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	msg := fmt.Sprintf(format, args...)
	switch level {
	case DEBUG:
		l.slogLogger.Debug(msg)
	case INFO:
		l.slogLogger.Info(msg)
	case WARN:
		l.slogLogger.Warn(msg)
	case ERROR:
		l.slogLogger.Error(msg)
	}
}

// Debug logs a debug-level message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(DEBUG, format, args...)
}

// Info logs an info-level message
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(INFO, format, args...)
}

// Warn logs a warning-level message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(WARN, format, args...)
}

// Error logs an error-level message
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(ERROR, format, args...)
}

// IsDebugEnabled returns true if debug logging is enabled
func (l *Logger) IsDebugEnabled() bool {
	return l.level <= DEBUG
}

// StageStart logs the beginning of a pipeline stage
func (l *Logger) StageStart(stage string) {
	l.slogLogger.StageStart(stage)
}

// StageSuccess logs a successfully completed pipeline stage
func (l *Logger) StageSuccess(stage string) {
	l.slogLogger.StageSuccess(stage)
}

// StageFailed logs a failed pipeline stage
func (l *Logger) StageFailed(stage string, err error) {
	l.slogLogger.StageFailed(stage, err)
}

// StageSkipped logs a skipped pipeline stage with the reason
func (l *Logger) StageSkipped(stage, reason string) {
	l.slogLogger.StageSkipped(stage, reason)
}
