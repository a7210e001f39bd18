package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "results", cfg.ResultsDir)
	assert.Equal(t, int64(16*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, 75.0, cfg.DefaultThreshold)
	assert.Equal(t, "fs", cfg.StorageBackend)
	assert.Equal(t, "console", cfg.EmailBackend)
	assert.Equal(t, 10*time.Second, cfg.EmailTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DP_LISTENADDR", ":8080")
	t.Setenv("DP_DEFAULTTHRESHOLD", "65")
	t.Setenv("DP_STORAGEBACKEND", "redis")
	t.Setenv("DP_EMAILTIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 65.0, cfg.DefaultThreshold)
	assert.Equal(t, "redis", cfg.StorageBackend)
	assert.Equal(t, 3*time.Second, cfg.EmailTimeout)
}
