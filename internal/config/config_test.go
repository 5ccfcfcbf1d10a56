package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.APIURL)
	assert.Equal(t, 5, cfg.Agent.PollIntervalSeconds)
	assert.Equal(t, 1000.0, cfg.Agent.InitialInvestment)
	assert.Equal(t, "5m", cfg.Market.KlineInterval)
	assert.Equal(t, 100, cfg.Market.MaxCached)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[app]
log_level = "debug"

[backend]
api_url = "https://exec.example.com"

[market]
kline_interval = "1h"
max_cached = 200
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "https://exec.example.com", cfg.Backend.APIURL)
	assert.Equal(t, "1h", cfg.Market.KlineInterval)
	assert.Equal(t, 200, cfg.Market.MaxCached)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(writeConfig(t, `
[backend]
api_url = "exec.example.com"
`))
	assert.Error(t, err, "non-http url rejected")

	_, err = Load(writeConfig(t, `
[market]
kline_interval = "fast"
`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `
[notify.telegram]
enabled = true
`))
	assert.Error(t, err, "telegram needs token and chat id")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
