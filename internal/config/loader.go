package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "messd.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "MESSD_PORT")
	setString(&cfg.Server.CORSOrigin, "MESSD_CORS_ORIGIN")
	setString(&cfg.Store.Path, "MESSD_STATE_PATH")
	setString(&cfg.NATS.URL, "NATS_URL")
	setInt64(&cfg.Cache.MaxCostBytes, "MESSD_CACHE_MAX_COST_BYTES")
	setString(&cfg.Logging.Level, "MESSD_LOG_LEVEL")
	setString(&cfg.Logging.Service, "MESSD_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "MESSD_LOG_ASYNC")
	setInt64(&cfg.Billing.BreakfastCost, "MESSD_BREAKFAST_COST")
	setInt64(&cfg.Billing.DinnerCost, "MESSD_DINNER_COST")
	setString(&cfg.Tracing.Endpoint, "MESSD_OTLP_ENDPOINT")
}

// validate rejects configurations the service cannot start with.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server port is required")
	}
	if cfg.Store.Path == "" {
		return errors.New("store path is required")
	}
	if cfg.Cache.MaxCostBytes <= 0 {
		return errors.New("cache max_cost_bytes must be positive")
	}
	if cfg.Billing.BreakfastCost <= 0 || cfg.Billing.DinnerCost <= 0 {
		return errors.New("meal costs must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
