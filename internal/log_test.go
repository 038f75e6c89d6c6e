package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LogLevelInfo, &buf)

	logger.Info("[Transformer] run %s", "abc")
	logger.Warn("careful")
	logger.Debug("hidden")
	logger.Trace("hidden too")

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "[Transformer] run abc")
	assert.Contains(t, out, "WARN")
	assert.NotContains(t, out, "hidden")
}

func TestLoggerTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LogLevelTrace, &buf)

	logger.Trace("found terms %q", "x")
	assert.Contains(t, buf.String(), `[TRACE] found terms "x"`)
	assert.Equal(t, LogLevelTrace, logger.GetLevel())
}

func TestParseLogLevel(t *testing.T) {
	level, ok := ParseLogLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, LogLevelDebug, level)

	level, ok = ParseLogLevel("chatty")
	assert.False(t, ok)
	assert.Equal(t, LogLevelInfo, level)
}

func TestNewDefaultLoggerReadsEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	assert.Equal(t, LogLevelError, NewDefaultLogger().GetLevel())
}
