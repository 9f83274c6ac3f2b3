// Package config provides optional on-disk configuration for ccli using
// TOML, layered over compiled-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the settings an embedding program may want a user to
// customise before calling ccli.New: the prompt text, history capacity,
// and command-chain delimiter. They only supply alternate defaults
// before construction; none change core operation semantics.
type Config struct {
	Prompt     string `toml:"prompt"`
	HistoryMax int    `toml:"historyMax"`
	ChainDelim string `toml:"chainDelimiter"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Prompt:     "> ",
		HistoryMax: 256,
		ChainDelim: "",
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ccli"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads configuration, layering any user config on top of Default.
// It returns the default config if no user config exists.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	userCfg, err := loadFromTOML(path)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}

	return merge(cfg, userCfg), nil
}

func loadFromTOML(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}
	return &cfg, nil
}

// merge layers user config on top of defaults; only non-zero fields in
// user override the default.
func merge(defaults, user *Config) *Config {
	result := *defaults
	if user.Prompt != "" {
		result.Prompt = user.Prompt
	}
	if user.HistoryMax != 0 {
		result.HistoryMax = user.HistoryMax
	}
	if user.ChainDelim != "" {
		result.ChainDelim = user.ChainDelim
	}
	return result.clone()
}

func (c Config) clone() *Config {
	return &c
}

// DefaultTOML returns the default configuration rendered as TOML, for
// generating a starter user config file.
func DefaultTOML() string {
	return `# ccli configuration
# Save to ~/.config/ccli/config.toml and customize.
# Only include settings you want to change from defaults.

prompt = "> "
historyMax = 256
chainDelimiter = ""    # e.g. ";" to enable command chaining
`
}
