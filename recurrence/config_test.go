package recurrence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEngineConfig(t *testing.T) {
	cfg, err := ParseEngineConfig([]byte(`
horizon: "2026-12-31"
limits:
  daily: 730
cache_enabled: true
cache:
  ttl: 10m
`))
	require.NoError(t, err)

	assert.Equal(t, "2026-12-31", cfg.Horizon)
	assert.Equal(t, 730, cfg.Limits.Daily)
	assert.Equal(t, DefaultLimits.Weekly, cfg.Limits.Weekly)
	assert.Equal(t, DefaultLimits.Yearly, cfg.Limits.Yearly)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 10*time.Minute, cfg.CacheConfig.TTL)
	assert.Equal(t, DefaultCacheConfig.MaxEntries, cfg.CacheConfig.MaxEntries)
	assert.Equal(t, DefaultCacheConfig.CleanupInterval, cfg.CacheConfig.CleanupInterval)
}

func TestParseEngineConfigDefaults(t *testing.T) {
	cfg, err := ParseEngineConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultEngineConfig, cfg)
}

func TestParseEngineConfigErrors(t *testing.T) {
	_, err := ParseEngineConfig([]byte(`horizon: "end of year"`))
	assert.Error(t, err)

	_, err = ParseEngineConfig([]byte("limits: [1, 2"))
	assert.Error(t, err)
}

func TestLoadEngineConfig(t *testing.T) {
	cfg, err := LoadEngineConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultEngineConfig, cfg)

	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("horizon: \"2030-01-01\"\n"), 0o600))

	cfg, err = LoadEngineConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "2030-01-01", cfg.Horizon)

	_, err = LoadEngineConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewEngineWithConfigRejectsBadHorizon(t *testing.T) {
	_, err := NewEngineWithConfig(EngineConfig{Horizon: "2025-12-32"}, nil)
	assert.Error(t, err)
}
