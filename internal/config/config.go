// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all resolved engine paths plus the loaded settings.
type Config struct {
	HomeDir       string
	EngineDir     string
	RecordingsDir string
	DatabasePath  string
	LogDir        string
	SettingsPath  string
	Settings      Settings
}

// Settings is the user-tunable portion, read from settings.yaml in the
// engine directory. Missing file or missing keys fall back to defaults.
type Settings struct {
	Timing   TimingSettings   `yaml:"timing"`
	Replay   ReplaySettings   `yaml:"replay"`
	Cascade  CascadeSettings  `yaml:"cascade"`
	Injector InjectorSettings `yaml:"injector"`
}

// TimingSettings controls replay pacing in milliseconds.
type TimingSettings struct {
	PreFocusDelayMS int `yaml:"pre_focus_delay_ms"`
	CharDelayMS     int `yaml:"char_delay_ms"`
	SettleDelayMS   int `yaml:"settle_delay_ms"`
	ActionDelayMS   int `yaml:"action_delay_ms"`
}

// ReplaySettings controls default replay policy.
type ReplaySettings struct {
	Strict bool `yaml:"strict"`
}

// CascadeSettings controls the text-delivery strategy order.
type CascadeSettings struct {
	Strategies []string `yaml:"strategies"`
}

// InjectorSettings names the helper command lines driving OS-level input.
// Each value is an argv; payload placeholders ({x}, {y}, {button}, {key},
// {text}, {target}) are substituted at invocation time.
type InjectorSettings struct {
	PointerMove  []string `yaml:"pointer_move"`
	PointerClick []string `yaml:"pointer_click"`
	KeyPress     []string `yaml:"key_press"`
	TypeText     []string `yaml:"type_text"`
	ClipboardSet []string `yaml:"clipboard_set"`
	ClipboardGet []string `yaml:"clipboard_get"`
	TargetFocus  []string `yaml:"target_focus"`
	TargetClear  []string `yaml:"target_clear"`
	TargetSet    []string `yaml:"target_set"`
	TargetGet    []string `yaml:"target_get"`
	Capture      []string `yaml:"capture"`
}

// DefaultSettings returns the built-in settings. Timing defaults follow the
// virtual-HID helper: 500ms focus settle, 100ms between characters.
func DefaultSettings() Settings {
	return Settings{
		Timing: TimingSettings{
			PreFocusDelayMS: 500,
			CharDelayMS:     100,
			SettleDelayMS:   200,
			ActionDelayMS:   800,
		},
		Replay: ReplaySettings{Strict: false},
		Cascade: CascadeSettings{
			Strategies: []string{"keystroke", "field-set", "clipboard"},
		},
	}
}

// Load resolves paths under the user's home directory and reads settings.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(home)
}

// LoadFrom is Load with an explicit home directory, used by tests.
func LoadFrom(home string) (*Config, error) {
	engineDir := filepath.Join(home, ".autoscribe")
	recordingsDir := filepath.Join(engineDir, "recordings")
	logDir := filepath.Join(engineDir, "logs")

	// Ensure directories exist
	for _, dir := range []string{engineDir, recordingsDir, logDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		HomeDir:       home,
		EngineDir:     engineDir,
		RecordingsDir: recordingsDir,
		DatabasePath:  filepath.Join(engineDir, "scripts.db"),
		LogDir:        logDir,
		SettingsPath:  filepath.Join(engineDir, "settings.yaml"),
		Settings:      DefaultSettings(),
	}

	if err := cfg.loadSettings(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadSettings() error {
	data, err := os.ReadFile(c.SettingsPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	overrides := c.Settings
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	if len(overrides.Cascade.Strategies) == 0 {
		overrides.Cascade.Strategies = DefaultSettings().Cascade.Strategies
	}
	c.Settings = overrides
	return nil
}
