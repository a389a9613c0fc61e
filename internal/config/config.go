// Package config assembles service configuration from environment
// variables with an optional YAML file overlay for the data-driven
// pieces (site list, thresholds).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"call-recon-go/internal/recon"
)

// Config holds service configuration derived from environment variables.
type Config struct {
	HTTPPort       string
	ReportPath     string
	RecordingsPath string
	DBPath         string
	Recon          recon.Config
}

type fileConfig struct {
	MinPhoneKeyLen *int     `yaml:"min_phone_key_len"`
	MaxDeltaSec    *int     `yaml:"max_delta_sec"`
	Sites          []string `yaml:"sites"`
	FallbackSite   string   `yaml:"fallback_site"`
}

// Load reads configuration from the environment, overlays the optional
// CONFIG_PATH YAML file onto the engine thresholds, and validates.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       getEnv("PORT", "8080"),
		ReportPath:     getEnv("REPORT_PATH", "report.xlsx"),
		RecordingsPath: getEnv("RECORDINGS_PATH", "recordings.zip"),
		DBPath:         os.Getenv("DB_PATH"),
		Recon:          recon.DefaultConfig(),
	}

	if v := os.Getenv("MIN_PHONE_KEY_LEN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("MIN_PHONE_KEY_LEN: %w", err)
		}
		cfg.Recon.MinPhoneKeyLen = n
	}
	if v := os.Getenv("MAX_DELTA_SEC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("MAX_DELTA_SEC: %w", err)
		}
		cfg.Recon.MaxDeltaSec = n
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Recon.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid engine config: %w", err)
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if fc.MinPhoneKeyLen != nil {
		cfg.Recon.MinPhoneKeyLen = *fc.MinPhoneKeyLen
	}
	if fc.MaxDeltaSec != nil {
		cfg.Recon.MaxDeltaSec = *fc.MaxDeltaSec
	}
	if len(fc.Sites) > 0 {
		cfg.Recon.Sites = fc.Sites
	}
	if fc.FallbackSite != "" {
		cfg.Recon.FallbackSite = fc.FallbackSite
	}
	return nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
