package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "json")
	l.Debug("hidden")
	l.Info("chronicle generated", "realms", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "chronicle generated", line["msg"])
	assert.Equal(t, float64(3), line["realms"])
}

func TestConsoleFormatHasNoColourOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "text")
	l.Debug("backstory rendered", "template", "founding/dwarf/0")
	l.Error("save failed", "error", errors.New("disk full"))

	out := buf.String()
	assert.Contains(t, out, "backstory rendered")
	assert.Contains(t, out, "founding/dwarf/0")
	assert.Contains(t, out, "disk full")
	assert.NotContains(t, out, "\x1b[")
}
