package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempRoot(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, appName)
}

func TestLoadMergedWithoutProfile(t *testing.T) {
	useTempRoot(t)

	cfg, used, err := LoadMerged(Options{RateLimit: 5, Debug: true})
	require.NoError(t, err)

	assert.Contains(t, used, "default config in memory")
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 5.0, cfg.RateLimit)
	assert.True(t, cfg.Debug)
	assert.Equal(t, DefaultMaxUpdatePages, cfg.MaxUpdatePages)
}

func TestLoadMergedIgnoreConfig(t *testing.T) {
	useTempRoot(t)

	_, err := InitDefaultConfig()
	require.NoError(t, err)

	cfg, used, err := LoadMerged(Options{IgnoreConfig: true, BaseURL: "https://mirror.test"})
	require.NoError(t, err)
	assert.Equal(t, "(ignored config)", used)
	assert.Equal(t, "https://mirror.test", cfg.BaseURL)
}

func TestLoadMergedReadsActiveProfile(t *testing.T) {
	root := useTempRoot(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "configs", "Default.yaml"), path)

	raw := []byte("base_url: https://nelo.test\ntimeout: 5s\nattempts: 0\nmax_update_pages: 7\nskip_broken: true\n")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	cfg, used, err := LoadMerged(Options{Timeout: 9 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, path, used)
	assert.Equal(t, "https://nelo.test", cfg.BaseURL)
	assert.Equal(t, 9*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.Attempts)
	assert.Equal(t, 7, cfg.MaxUpdatePages)
	assert.True(t, cfg.SkipBroken)
	assert.Equal(t, 5, cfg.ImageWorkers)
}

func TestLoadMergedBadYAML(t *testing.T) {
	useTempRoot(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("timeout: [nope"), 0o644))

	_, _, err = LoadMerged(Options{})
	assert.ErrorContains(t, err, "failed to load config")
}

func TestSaveYAMLRoundTripKeepsDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.yaml")

	cfg := DefaultConfig()
	cfg.Timeout = 45 * time.Second
	require.NoError(t, SaveYAML(cfg, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "timeout: 45s")

	back, err := loadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
