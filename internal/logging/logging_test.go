package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Out: &buf})
	log.Debug().Str("user_id", "u1").Msg("scan recorded")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Equal(t, "scan recorded", line["message"])
	assert.Contains(t, line, "time")
}

func TestNewLevelFallback(t *testing.T) {
	for _, lvl := range []string{"", "chatty"} {
		log := New(Options{Level: lvl, Out: &bytes.Buffer{}})
		assert.Equal(t, zerolog.InfoLevel, log.GetLevel(), lvl)
	}
}

func TestNewPrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Pretty: true, Out: &buf})
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}
