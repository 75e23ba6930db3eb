package app

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewLogger(LoggerConfig{Level: level, Format: FormatJSON, Output: buf})
}

func TestNewLogger_Level(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, jsonLogger(&bytes.Buffer{}, tt.input).Level())
		})
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "warn")

	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown %d", 1)
	assert.Equal(t, "shown 1", gjson.Get(buf.String(), "message").String())
	assert.Equal(t, "warn", gjson.Get(buf.String(), "level").String())
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "debug").
		WithComponent("autosave").
		WithField("path", "a.md").
		WithFields(map[string]any{"attempt": 2})

	l.Debug("armed")
	line := buf.String()
	assert.Equal(t, "autosave", gjson.Get(line, "component").String())
	assert.Equal(t, "a.md", gjson.Get(line, "path").String())
	assert.EqualValues(t, 2, gjson.Get(line, "attempt").Int())
}

func TestLogger_WithFieldDoesNotModifyParent(t *testing.T) {
	var buf bytes.Buffer
	parent := jsonLogger(&buf, "info")
	_ = parent.WithField("child", true)

	parent.Info("msg")
	assert.False(t, gjson.Get(buf.String(), "child").Exists())
}

func TestLogger_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LoggerConfig{Level: "info", Format: FormatConsole, Output: &buf})
	l.Error("boom")
	assert.Contains(t, buf.String(), "boom")
	assert.False(t, gjson.Valid(buf.String()))
}

func TestUseConsole_AutoNonTerminal(t *testing.T) {
	assert.False(t, useConsole(FormatAuto, &bytes.Buffer{}))
	assert.True(t, useConsole(FormatConsole, &bytes.Buffer{}))
	assert.False(t, useConsole(FormatJSON, &bytes.Buffer{}))
}

func TestNullLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NullLogger.Error("discarded")
		NullLogger.WithComponent("x").Info("discarded")
	})
}

func TestGetSetLogger(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	SetLogger(NullLogger)
	assert.Same(t, NullLogger, GetLogger())
}
