package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// SlogLogger provides structured logging using slog
type SlogLogger struct {
	logger    *slog.Logger
	component string
}

// NewSlogLogger creates a new logger using slog backend
func NewSlogLogger(component string) *SlogLogger {
	return &SlogLogger{
		logger:    slog.New(createHandler()),
		component: component,
	}
}

// createHandler creates an appropriate slog handler based on environment variables
func createHandler() slog.Handler {
	var output io.Writer = os.Stderr
	level := getLogLevelSlog()

	switch strings.ToUpper(os.Getenv("TWIN_LOG_FORMAT")) {
	case "JSON":
		return slog.NewJSONHandler(output, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replaceAttr,
		})
	default:
		return slog.NewTextHandler(output, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replaceAttr,
		})
	}
}

// getLogLevelSlog determines the slog level from environment
func getLogLevelSlog() slog.Level {
	switch strings.ToUpper(os.Getenv("TWIN_LOG_LEVEL")) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// replaceAttr customizes attribute names and values
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		switch level {
		case slog.LevelDebug:
			return slog.Attr{Key: a.Key, Value: slog.StringValue("DEBUG")}
		case slog.LevelInfo:
			return slog.Attr{Key: a.Key, Value: slog.StringValue("INFO")}
		case slog.LevelWarn:
			return slog.Attr{Key: a.Key, Value: slog.StringValue("WARN")}
		case slog.LevelError:
			return slog.Attr{Key: a.Key, Value: slog.StringValue("ERROR")}
		}
	}
	return a
}

// Debug logs a debug-level message
func (l *SlogLogger) Debug(msg string) {
	l.logger.Debug(msg, "component", l.component)
}

// Info logs an info-level message
func (l *SlogLogger) Info(msg string) {
	l.logger.Info(msg, "component", l.component)
}

// Warn logs a warning-level message
func (l *SlogLogger) Warn(msg string) {
	l.logger.Warn(msg, "component", l.component)
}

// Error logs an error-level message
func (l *SlogLogger) Error(msg string) {
	l.logger.Error(msg, "component", l.component)
}

// WithFields returns a logger with additional fields
func (l *SlogLogger) WithFields(fields map[string]interface{}) *SlogLogger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &SlogLogger{
		logger:    l.logger.With(args...),
		component: l.component,
	}
}

// IsDebugEnabled returns true if debug logging is enabled
func (l *SlogLogger) IsDebugEnabled() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}

// Specialized logging methods for pipeline stages

// StageStart logs the start of a pipeline stage
func (l *SlogLogger) StageStart(stage string) {
	l.logger.Info("Starting stage",
		"component", l.component,
		"stage", stage)
}

// StageSuccess logs successful stage completion
func (l *SlogLogger) StageSuccess(stage string) {
	l.logger.Info("Stage completed",
		"component", l.component,
		"stage", stage,
		"status", "success")
}

// StageFailed logs a failed stage
func (l *SlogLogger) StageFailed(stage string, err error) {
	l.logger.Error("Stage failed",
		"component", l.component,
		"stage", stage,
		"status", "failed",
		"error", err)
}

// StageSkipped logs a skipped stage
func (l *SlogLogger) StageSkipped(stage, reason string) {
	l.logger.Info("Stage skipped",
		"component", l.component,
		"stage", stage,
		"status", "skipped",
		"reason", reason)
}
