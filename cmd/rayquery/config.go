package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds rayquery settings loaded from a YAML file. Flags override
// anything the file sets.
type Config struct {
	// DSN names the database to connect to.
	DSN string `yaml:"dsn"`

	// BatchSize caps rows per fetch; zero lets the engine choose.
	BatchSize int `yaml:"batch_size"`

	// Library is the librayforce path for runtime-loaded builds. It is
	// exported as RAYFORCE_LIBRARY before the first connection opens.
	Library string `yaml:"library"`
}

func defaultConfig() Config {
	return Config{DSN: "mem://default"}
}

// loadConfig reads the config file at path, or the default location
// (~/.config/rayquery/config.yaml) when path is empty. A missing default
// file is not an error; a missing explicit file is.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".config", "rayquery", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.BatchSize < 0 {
		return cfg, fmt.Errorf("config %s: batch_size must not be negative", path)
	}
	return cfg, nil
}
