package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevelString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level LogLevel
		want  string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.String())
	}
}

func TestLoggerLevelFromEnvironment(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv
	tests := []struct {
		name         string
		envValue     string
		debugEnabled bool
	}{
		{name: "default is info", envValue: "", debugEnabled: false},
		{name: "debug enables debug", envValue: "DEBUG", debugEnabled: true},
		{name: "lowercase accepted", envValue: "debug", debugEnabled: true},
		{name: "error disables debug", envValue: "ERROR", debugEnabled: false},
		{name: "unknown falls back to info", envValue: "VERBOSE", debugEnabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TWIN_LOG_LEVEL", tt.envValue)
			logger := NewLogger("test-component")
			assert.Equal(t, tt.debugEnabled, logger.IsDebugEnabled())
		})
	}
}

func TestSlogLoggerWithFields(t *testing.T) {
	t.Parallel()

	base := NewSlogLogger("test-component")
	derived := base.WithFields(map[string]interface{}{"environment": "dev"})
	assert.NotNil(t, derived)
	assert.NotSame(t, base, derived)
}
