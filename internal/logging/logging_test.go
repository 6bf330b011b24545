package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "info", Output: &buf})
	require.NoError(t, err)

	storageLog := Component(l, "storage")
	storageLog.Info().Int("games", 3).Msg("ingested")
	storageLog.Debug().Msg("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "storage", entry["component"])
	assert.Equal(t, "ingested", entry["message"])
	assert.Equal(t, float64(3), entry["games"])
	assert.Contains(t, entry, "time")
}

func TestNewDevDefaultsToDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Dev: true, Output: &buf})
	require.NoError(t, err)

	l.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
