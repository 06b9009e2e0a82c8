package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromFlags(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, LevelFromFlags(false, false))
	assert.Equal(t, slog.LevelInfo, LevelFromFlags(true, false))
	assert.Equal(t, slog.LevelDebug, LevelFromFlags(false, true))
	assert.Equal(t, slog.LevelDebug, LevelFromFlags(true, true))
}

func TestNewWritesJSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo)

	log.Debug("hidden")
	log.Info("listing content", "content_type", "Audit.Exchange")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "listing content", entry["msg"])
	assert.Equal(t, "Audit.Exchange", entry["content_type"])
	assert.Equal(t, "INFO", entry["level"])
}
