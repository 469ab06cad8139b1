package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("debug", FormatJSON, &buf)
	logger.Debug().Str("path", "config.yaml").Msg("reloading")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "config.yaml", entry["path"])
	assert.Equal(t, "reloading", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", FormatConsole, &buf)
	logger.Info().Int("jobs", 3).Msg("configuration loaded")

	assert.Contains(t, buf.String(), "configuration loaded")
	assert.Contains(t, buf.String(), "jobs=3")
}

func TestNewLoggerLevel(t *testing.T) {
	testCases := []struct {
		level    string
		expected zerolog.Level
	}{
		{level: "debug", expected: zerolog.DebugLevel},
		{level: "warn", expected: zerolog.WarnLevel},
		{level: "", expected: zerolog.InfoLevel},
		{level: "loud", expected: zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			logger := NewLogger(tc.level, FormatJSON, &bytes.Buffer{})
			assert.Equal(t, tc.expected, logger.GetLevel())
		})
	}
}
