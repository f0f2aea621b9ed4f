package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "warn")

	l.Info("hidden")
	l.Warn("shown", zap.Int64("ip", 4))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), `"ip": 4`)
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "info")
	assert.Equal(t, zapcore.InfoLevel, l.Level())

	l.Debug("before")
	l.SetLevel("debug")
	l.Debug("after")

	assert.Equal(t, zapcore.DebugLevel, l.Level())
	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
}

func TestLevels(t *testing.T) {
	assert.True(t, ValidLevel(""))
	assert.True(t, ValidLevel("debug"))
	assert.True(t, ValidLevel("fatal"))
	assert.False(t, ValidLevel("verbose"))

	assert.Equal(t, zapcore.InfoLevel, getLoggerLevel("verbose"))
	assert.Equal(t, zapcore.ErrorLevel, getLoggerLevel("error"))
}
