package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yard-tracker/internal/config/components"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	newLogger(components.LoggerConfigImpl{Level: "warn", Format: "json"}, &buf)

	log := GetLogger("tracking-service")
	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Str("device_id", "moto-1").Msg("visible")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tracking-service", entry["component"])
	assert.Equal(t, "moto-1", entry["device_id"])
	assert.Equal(t, "warn", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}
