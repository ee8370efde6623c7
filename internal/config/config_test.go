// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromCreatesDirectories(t *testing.T) {
	home := t.TempDir()

	cfg, err := LoadFrom(home)
	require.NoError(t, err)

	for _, dir := range []string{cfg.EngineDir, cfg.RecordingsDir, cfg.LogDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.Equal(t, filepath.Join(home, ".autoscribe", "scripts.db"), cfg.DatabasePath)
}

func TestLoadFromDefaultsWithoutSettingsFile(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Settings.Timing.CharDelayMS)
	assert.Equal(t, 500, cfg.Settings.Timing.PreFocusDelayMS)
	assert.False(t, cfg.Settings.Replay.Strict)
	assert.Equal(t, []string{"keystroke", "field-set", "clipboard"}, cfg.Settings.Cascade.Strategies)
}

func TestLoadFromAppliesSettingsOverrides(t *testing.T) {
	home := t.TempDir()
	engineDir := filepath.Join(home, ".autoscribe")
	require.NoError(t, os.MkdirAll(engineDir, 0755))

	settings := `
timing:
  char_delay_ms: 25
replay:
  strict: true
cascade:
  strategies: [clipboard, keystroke]
injector:
  pointer_click: [xdotool, click, "--window", "{target}", "{button}"]
`
	require.NoError(t, os.WriteFile(filepath.Join(engineDir, "settings.yaml"), []byte(settings), 0644))

	cfg, err := LoadFrom(home)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Settings.Timing.CharDelayMS)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, 500, cfg.Settings.Timing.PreFocusDelayMS)
	assert.True(t, cfg.Settings.Replay.Strict)
	assert.Equal(t, []string{"clipboard", "keystroke"}, cfg.Settings.Cascade.Strategies)
	assert.Equal(t, "xdotool", cfg.Settings.Injector.PointerClick[0])
}

func TestLoadFromRejectsMalformedSettings(t *testing.T) {
	home := t.TempDir()
	engineDir := filepath.Join(home, ".autoscribe")
	require.NoError(t, os.MkdirAll(engineDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(engineDir, "settings.yaml"), []byte("timing: ["), 0644))

	_, err := LoadFrom(home)
	assert.Error(t, err)
}
