package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_StructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info().Str("transfer_id", "abc").Msg("transfer committed")

	var output map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output), "logger output should be valid JSON")

	assert.Equal(t, "transfer committed", output["message"])
	assert.Equal(t, "abc", output["transfer_id"])
	assert.Equal(t, "info", output["level"])
	assert.Equal(t, ServiceName, output["service"])
	assert.Contains(t, output, "time")
}

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
		warnSeen  bool
	}{
		{level: "debug", debugSeen: true, infoSeen: true, warnSeen: true},
		{level: "info", debugSeen: false, infoSeen: true, warnSeen: true},
		{level: "WARNING", debugSeen: false, infoSeen: false, warnSeen: true},
		{level: "error", debugSeen: false, infoSeen: false, warnSeen: false},
		{level: "bogus", debugSeen: false, infoSeen: true, warnSeen: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(tt.level, &buf)

			log.Debug().Msg("d")
			assert.Equal(t, tt.debugSeen, buf.Len() > 0, "debug")
			buf.Reset()

			log.Info().Msg("i")
			assert.Equal(t, tt.infoSeen, buf.Len() > 0, "info")
			buf.Reset()

			log.Warn().Msg("w")
			assert.Equal(t, tt.warnSeen, buf.Len() > 0, "warn")
		})
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	log := Component(NewWithWriter("info", &buf), "ledger")

	log.Info().Msg("hello")

	var output map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "ledger", output["component"])
}

func TestNew_PrettyMode(t *testing.T) {
	// Pretty mode writes to stdout; just make sure it builds a usable logger.
	log := New("info", true)
	log.Info().Msg("pretty mode test")
}
