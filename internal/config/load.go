package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfig names an environment variable that points at a config file. It
// is consulted after the -config flag and before the standard locations.
const EnvConfig = "POSEKIT_CONFIG"

// Load builds the configuration from defaults, then the first config file
// found, then command-line flags.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)
	return cfg, cfg.Validate()
}

// findConfigFile returns the first existing candidate, or "" when there is
// none. A path named by EnvConfig is returned even if missing so the error
// surfaces on load.
func findConfigFile() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	for _, p := range []string{"posekit.yaml", filepath.Join(ConfigDir(), "config.yaml")} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ConfigDir returns the per-user posekit config directory: XDG_CONFIG_HOME
// or ~/.config on Linux, Application Support on macOS, AppData on Windows.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "posekit")
}

// loadFromFile merges a YAML file over cfg. Unknown keys are rejected so a
// typo does not silently keep a default.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return cfg.Validate()
}

// Validate rejects settings the engine cannot use.
func (c *Config) Validate() error {
	if c.Pose.WeightTolerance < 0 {
		return fmt.Errorf("pose.weight_tolerance must not be negative, got %g", c.Pose.WeightTolerance)
	}
	if c.Pose.Frame < 0 {
		return fmt.Errorf("pose.frame must not be negative, got %d", c.Pose.Frame)
	}
	if c.Pose.UndoDepth < 0 {
		return fmt.Errorf("pose.undo_depth must not be negative, got %d", c.Pose.UndoDepth)
	}
	return nil
}
