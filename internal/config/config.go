// Package config provides hierarchical configuration loading for messd.
// Precedence: defaults < YAML file < environment variables.
package config

// Config holds all runtime configuration for the messd service.
type Config struct {
	Server  Server  `yaml:"server"`
	Store   Store   `yaml:"store"`
	NATS    NATS    `yaml:"nats"`
	Cache   Cache   `yaml:"cache"`
	Logging Logging `yaml:"logging"`
	Billing Billing `yaml:"billing"`
	Tracing Tracing `yaml:"tracing"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Store holds the state document location.
type Store struct {
	Path string `yaml:"path"`
}

// NATS holds the optional JetStream side-channel configuration. An empty URL
// disables the publisher.
type NATS struct {
	URL string `yaml:"url"`
}

// Cache holds the in-process read cache configuration.
type Cache struct {
	MaxCostBytes int64 `yaml:"max_cost_bytes"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Billing holds the fixed meal tariff in the deployment's currency unit.
type Billing struct {
	BreakfastCost int64 `yaml:"breakfast_cost"`
	DinnerCost    int64 `yaml:"dinner_cost"`
}

// Tracing holds OpenTelemetry exporter configuration. An empty endpoint
// disables tracing.
type Tracing struct {
	Endpoint string `yaml:"endpoint"`
}

// Defaults returns a Config with sensible default values for local use.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "http://localhost:3000",
		},
		Store: Store{
			Path: "messd-state.json",
		},
		Cache: Cache{
			MaxCostBytes: 8 << 20, // 8 MiB of cached derivations
		},
		Logging: Logging{
			Level:   "info",
			Service: "messd",
		},
		Billing: Billing{
			BreakfastCost: 50,
			DinnerCost:    80,
		},
	}
}
