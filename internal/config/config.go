// Package config handles schedule file loading and parsing.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmarchant/reveille/internal/schedule"
)

// DefaultVolume is the playback volume used when the schedule file does
// not set one (0-100).
const DefaultVolume = 100

// CallSpec is one named call in the schedule file.
type CallSpec struct {
	Time      schedule.TimeOfDay `yaml:"time"`
	AudioFile string             `yaml:"audio_file"`
}

// Config represents the parsed schedule file.
type Config struct {
	// Timezone is an IANA zone name like "America/Chicago".
	// Empty means the process's local time.
	Timezone string `yaml:"timezone"`

	// Volume is the playback volume, 0-100.
	Volume int `yaml:"volume"`

	// APIToken enables the HTTP control API when set; requests must
	// carry it in the X-API-Token header.
	APIToken string `yaml:"api_token"`

	Weekdays map[string]CallSpec `yaml:"weekdays"`
	Weekends map[string]CallSpec `yaml:"weekends"`
}

// DefaultConfig returns a Config with default values and no calls.
func DefaultConfig() *Config {
	return &Config{
		Volume: DefaultVolume,
	}
}

// ConfigPath returns the default path to the schedule file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "reveille", "schedule.yaml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "reveille")
}

// StatePath returns the default path to the run-state JSON file.
func StatePath() string {
	return filepath.Join(DataPath(), "state.json")
}

// Load reads and validates the schedule file at path.
// If path is empty, uses the default config path.
// A missing or malformed file is an error: without a schedule there is
// nothing to run.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}

	cfg := DefaultConfig()

	// Strict decoding so typos in the schedule file surface at startup
	// instead of silently dropping calls.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schedule file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks invariants the YAML decoder cannot express.
// Audio paths are deliberately not stat'ed here; existence is checked
// lazily at dispatch time.
func (c *Config) Validate() error {
	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("volume %d out of range 0-100", c.Volume)
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
		}
	}
	for group, calls := range map[string]map[string]CallSpec{"weekdays": c.Weekdays, "weekends": c.Weekends} {
		for name, call := range calls {
			if call.AudioFile == "" {
				return fmt.Errorf("%s call %q has no audio_file", group, name)
			}
		}
	}
	return nil
}

// Location resolves the configured timezone, defaulting to local time.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Schedule converts the parsed call maps into a sorted schedule.
func (c *Config) Schedule() *schedule.Schedule {
	return schedule.New(entries(c.Weekdays), entries(c.Weekends))
}

func entries(calls map[string]CallSpec) []schedule.Entry {
	out := make([]schedule.Entry, 0, len(calls))
	for name, call := range calls {
		out = append(out, schedule.Entry{
			Name:      name,
			At:        call.Time,
			AudioPath: call.AudioFile,
		})
	}
	return out
}
