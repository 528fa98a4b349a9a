package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/huangsam/transit/schema"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerTo(&buf, zerolog.InfoLevel, schema.JSONLog)
	t.Cleanup(func() { SetupLoggerTo(&bytes.Buffer{}, zerolog.InfoLevel, schema.TextLog) })

	LogWarn("cache unavailable", errors.New("dial tcp: refused"))
	log.Debug().Msg("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "cache unavailable", entry["message"])
	assert.Equal(t, "dial tcp: refused", entry["error"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestSetupLoggerText(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerTo(&buf, zerolog.DebugLevel, schema.TextLog)
	t.Cleanup(func() { SetupLoggerTo(&bytes.Buffer{}, zerolog.InfoLevel, schema.TextLog) })

	log.Info().Int("n_samples", 42).Msg("series loaded")

	out := buf.String()
	assert.Contains(t, out, "series loaded")
	assert.Contains(t, out, "n_samples=42")
}
