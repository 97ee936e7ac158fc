// Package config loads the optional TOML configuration file from the
// tally home directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the name of the configuration file inside the home directory.
const FileName = "config.toml"

// HomeEnv overrides the home directory.
const HomeEnv = "TALLY_HOME"

// ErrConfigExists is returned by Init when the file is already there.
var ErrConfigExists = errors.New("config file already exists")

// Config is the effective configuration.
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
	Reminder ReminderConfig `toml:"reminder"`
	Defaults DefaultsConfig `toml:"defaults"`

	// Warnings lists unknown keys found while loading.
	Warnings []string `toml:"-"`
}

// StorageConfig holds settings from the [storage] section.
type StorageConfig struct {
	Path string `toml:"path" comment:"SQLite database file; relative paths are resolved against the tally home"`
}

// LogConfig holds settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level" comment:"debug, info, warn or error"`
}

// ReminderConfig holds settings from the [reminder] section.
type ReminderConfig struct {
	Enabled              bool `toml:"enabled"`
	InactivityMinutes    int  `toml:"inactivity_minutes"`
	CheckIntervalSeconds int  `toml:"check_interval_seconds"`
}

// DefaultsConfig holds settings from the [defaults] section.
type DefaultsConfig struct {
	ExpectedMinutes int `toml:"expected_minutes"`
	Difficulty      int `toml:"difficulty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Path: "tally.db"},
		Log:     LogConfig{Level: "info"},
		Reminder: ReminderConfig{
			Enabled:              true,
			InactivityMinutes:    10,
			CheckIntervalSeconds: 60,
		},
		Defaults: DefaultsConfig{
			ExpectedMinutes: 30,
			Difficulty:      3,
		},
	}
}

// Home returns the tally home directory: $TALLY_HOME, or ~/.tally.
func Home() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".tally"), nil
}

// Path returns the config file location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads dir/config.toml over the defaults. A missing file is not an
// error. Unknown keys are reported in Config.Warnings.
func Load(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(dir))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if !errors.As(err, &strict) {
			return nil, fmt.Errorf("parse %s: %w", Path(dir), err)
		}
		for _, e := range strict.Errors {
			cfg.Warnings = append(cfg.Warnings, "unknown key: "+strings.Join(e.Key(), "."))
		}
	}

	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults replaces out-of-range values with the defaults.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Reminder.InactivityMinutes <= 0 {
		c.Reminder.InactivityMinutes = def.Reminder.InactivityMinutes
	}
	if c.Reminder.CheckIntervalSeconds <= 0 {
		c.Reminder.CheckIntervalSeconds = def.Reminder.CheckIntervalSeconds
	}
	if c.Defaults.ExpectedMinutes <= 0 {
		c.Defaults.ExpectedMinutes = def.Defaults.ExpectedMinutes
	}
	if c.Defaults.Difficulty < 1 || c.Defaults.Difficulty > 5 {
		c.Defaults.Difficulty = def.Defaults.Difficulty
	}
}

// DBPath resolves the database location against dir.
func (c *Config) DBPath(dir string) string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(dir, c.Storage.Path)
}

// InactivityThreshold is how long nothing may run before the reminder shows.
func (c *Config) InactivityThreshold() time.Duration {
	return time.Duration(c.Reminder.InactivityMinutes) * time.Minute
}

// CheckInterval is the inactivity monitor tick.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Reminder.CheckIntervalSeconds) * time.Second
}

// Encode renders c as TOML.
func (c *Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Init writes the default configuration to dir and returns its path.
func Init(dir string) (string, error) {
	path := Path(dir)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	body, err := Default().Encode()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte("# tally configuration\n\n"+body), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
