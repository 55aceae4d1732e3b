// Package config loads the registry settings.
package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the registry-level settings. Database connectivity stays on
// env vars in the database package.
type Config struct {
	// BaseURL is the public base URL embedded in landing pages.
	BaseURL string `yaml:"base_url"`
	// PIDServiceURL is the endpoint of the external handle service.
	PIDServiceURL string `yaml:"pid_service_url"`
	// VocabRoot is the instrument-type root concept for vocabulary sync.
	VocabRoot string `yaml:"vocab_root"`
}

func getEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key)
	if !ex {
		return defVal
	}
	return val
}

// Load reads the YAML settings file named by CONFIG_PATH when present and
// fills the remaining fields from env vars with sensible defaults.
func Load() (Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = getEnvDefault("INSTRUMENTDB_BASE_URL", "http://localhost:8000")
	}
	if cfg.PIDServiceURL == "" {
		cfg.PIDServiceURL = getEnvDefault("PID_SERVICE_URL", "http://localhost:8593/pid")
	}
	if cfg.VocabRoot == "" {
		cfg.VocabRoot = getEnvDefault("VOCAB_ROOT",
			"https://vocabulary.actris.nilu.no/actris_vocab/instrumenttype")
	}
	return cfg, nil
}
