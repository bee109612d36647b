package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init(Config{Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")
}

func TestInitWritesRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	prev := log.Logger
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	require.NoError(t, Init(Config{
		Level:        "info",
		Format:       "json",
		FileEnabled:  true,
		FilePath:     dir,
		RotationSize: 1,
		ServiceName:  "test",
	}))
	log.Info().Str("tool", "get_trend_signals").Msg("hello")

	data, err := os.ReadFile(filepath.Join(dir, "tushare-mcp.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tool":"get_trend_signals"`)
	assert.Contains(t, string(data), `"service":"test"`)
}
