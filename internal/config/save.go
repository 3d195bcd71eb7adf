package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the config to the user's config directory.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(ConfigDir(), "config.yaml"))
}

// SaveTo writes the config to a specific path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// SaveRequested writes cfg when --write-config or --save-config was given and
// returns where it went. An empty path means nothing was requested.
func SaveRequested(cfg *Config) (string, error) {
	switch {
	case *flagWriteConfig != "":
		return *flagWriteConfig, cfg.SaveTo(*flagWriteConfig)
	case *flagSaveConfig:
		return filepath.Join(ConfigDir(), "config.yaml"), cfg.Save()
	}
	return "", nil
}
