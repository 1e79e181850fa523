package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaultConfigActivates(t *testing.T) {
	useTempRoot(t)

	_, err := InitDefaultConfig()
	require.NoError(t, err)

	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, DefaultLabel, label)

	_, err = InitDefaultConfig()
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestProfileLifecycle(t *testing.T) {
	useTempRoot(t)

	_, err := InitDefaultConfig()
	require.NoError(t, err)

	_, err = AddConfig("fast", "")
	require.NoError(t, err)
	_, err = AddConfig("fast", "")
	assert.ErrorContains(t, err, "already exists")

	require.NoError(t, SwitchConfig("fast"))
	require.NoError(t, RenameConfig("fast", "quick"))

	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "quick", label)

	list, err := ListConfigs()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Default", list[0].Label)
	assert.Equal(t, "quick", list[1].Label)
	assert.True(t, list[1].Active)

	switched, err := RemoveConfig("quick")
	require.NoError(t, err)
	assert.True(t, switched)

	label, err = CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, DefaultLabel, label)

	_, err = RemoveConfig(DefaultLabel)
	assert.Error(t, err)
}

func TestAddConfigFromFileValidates(t *testing.T) {
	useTempRoot(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("rate_limit: 1.5\n"), 0o644))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rate_limit: [\n"), 0o644))

	path, err := AddConfig("imported", good)
	require.NoError(t, err)
	cfg, err := loadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, 1.5, cfg.RateLimit)

	_, err = AddConfig("broken", bad)
	assert.ErrorContains(t, err, "invalid config")
}

func TestSwitchConfigUnknown(t *testing.T) {
	useTempRoot(t)
	assert.ErrorContains(t, SwitchConfig("ghost"), "does not exist")
}

func TestLabelValidation(t *testing.T) {
	useTempRoot(t)

	for _, label := range []string{"", " ", "..", "a/b", `a\b`} {
		_, err := ConfigPathByLabel(label)
		assert.ErrorIs(t, err, ErrInvalidLabel, label)
	}
}

func TestResetActive(t *testing.T) {
	useTempRoot(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("attempts: 9\n"), 0o644))

	got, err := ResetActive()
	require.NoError(t, err)
	assert.Equal(t, path, got)

	cfg, err := loadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Attempts, cfg.Attempts)
}
