package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const appName = "countdown-fireworks"

// Load reads the config file at path. An empty path falls back to
// $XDG_CONFIG_HOME/countdown-fireworks/config.toml; a missing file yields
// Default() with environment overrides applied.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultPath()
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			applyEnvOverrides(cfg)
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader decodes TOML on top of Default().
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := envInt("COUNTDOWN_MINUTES"); ok {
		cfg.Timer.Minutes = v
	}
	if v, ok := envInt("COUNTDOWN_SECONDS"); ok {
		cfg.Timer.Seconds = v
	}
	if v := os.Getenv("COUNTDOWN_FRONTEND"); v != "" {
		cfg.Frontend = strings.ToLower(v)
	}
	if v := os.Getenv("COUNTDOWN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("COUNTDOWN_MUTE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Audio.Mute = b
		}
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func defaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName, "config.toml")
}
