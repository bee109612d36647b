package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TUSHARE_TOKEN", "env-token")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Tushare.Token)
	assert.Equal(t, 200, cfg.Tushare.RateLimit)
	assert.Zero(t, cfg.Tushare.CacheTTL)
	assert.Equal(t, 70.0, cfg.Thresholds.Oscillator.RSI6Overbought)
	assert.Equal(t, 80.0, cfg.Sector.OvervaluedPercentile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileOverridesThresholds(t *testing.T) {
	t.Setenv("TUSHARE_TOKEN", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
tushare:
  token: file-token
  rate_limit: 50
  rate_limits:
    stk_factor_pro: 30
  timeout: 10s
scan:
  workers: 2
thresholds:
  oscillator:
    rsi6_overbought: 80
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Tushare.Token)
	assert.Equal(t, 50, cfg.Tushare.RateLimit)
	assert.Equal(t, map[string]int{"stk_factor_pro": 30}, cfg.Tushare.RateLimits)
	assert.Equal(t, 10*time.Second, cfg.Tushare.Timeout)
	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.Equal(t, 80.0, cfg.Thresholds.Oscillator.RSI6Overbought)
	// untouched keys keep their defaults
	assert.Equal(t, 30.0, cfg.Thresholds.Oscillator.RSI6Oversold)
}

func TestLoadEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tushare:\n  token: file-token\n"), 0o644))
	t.Setenv("TUSHARE_TOKEN", "env-token")
	t.Setenv("TUSHARE_RATE_LIMIT", "120")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Tushare.Token)
	assert.Equal(t, 120, cfg.Tushare.RateLimit)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tushare: ["), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tushare.Token = ""
	assert.NoError(t, cfg.Validate())

	cfg.Scan.Workers = 0
	assert.Error(t, cfg.Validate())

	cfg.Scan.Workers = 1
	cfg.Tushare.RateLimits = map[string]int{"moneyflow": 0}
	assert.ErrorContains(t, cfg.Validate(), "rate_limits.moneyflow")

	cfg.Tushare.RateLimits = map[string]int{"moneyflow": 100}
	assert.NoError(t, cfg.Validate())
}
