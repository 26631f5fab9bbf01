// Package config provides unified configuration loading for the Competitive Engine.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the Competitive Engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Backend       BackendConfig       `yaml:"backend"`
	Engine        EngineConfig        `yaml:"engine"`
	Cache         CacheConfig         `yaml:"cache"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings for the API surface.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// BackendConfig holds settings for the analysis backend API.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	// SessionCookie is forwarded on every request; session management
	// itself lives outside this module.
	SessionCookie string        `yaml:"session_cookie"`
	Timeout       time.Duration `yaml:"timeout"`
}

// EngineConfig holds reconciliation engine settings.
type EngineConfig struct {
	// PollAttempts bounds the enrichment retry loop after submission.
	PollAttempts int `yaml:"poll_attempts"`
	// PollBackoff is the fixed wait between enrichment polls.
	PollBackoff time.Duration `yaml:"poll_backoff"`
	// MinScore and MinMentions are forwarded to the analyze endpoint.
	MinScore    float64 `yaml:"min_score"`
	MinMentions int     `yaml:"min_mentions"`
	// SeedFallback enables the bundled dataset on an empty first load.
	SeedFallback bool `yaml:"seed_fallback"`
}

// CacheConfig holds local cache store settings.
type CacheConfig struct {
	Driver     string       `yaml:"driver"` // memory, file, redis or sqlite
	MaxEntries int          `yaml:"max_entries"`
	File       FileConfig   `yaml:"file"`
	Redis      RedisConfig  `yaml:"redis"`
	SQLite     SQLiteConfig `yaml:"sqlite"`
}

// FileConfig holds file-store settings.
type FileConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Key      string `yaml:"key"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 30 * time.Second,
		},
		Engine: EngineConfig{
			PollAttempts: 3,
			PollBackoff:  1500 * time.Millisecond,
			MinScore:     0.3,
			MinMentions:  2,
			SeedFallback: true,
		},
		Cache: CacheConfig{
			Driver:     "file",
			MaxEntries: 10,
			File: FileConfig{
				Path: "/tmp/competitive-engine/analyses.json",
			},
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
				Key:      "competitive:analyses",
			},
			SQLite: SQLiteConfig{
				Path: "/tmp/competitive-engine/analyses.db",
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:    "debug",
			LogFormat:   "json",
			ServiceName: "competitive-engine",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base_url is required")
	}

	switch c.Cache.Driver {
	case "memory", "file", "redis", "sqlite":
	default:
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache max_entries must be at least 1")
	}

	if c.Engine.PollAttempts < 0 {
		return fmt.Errorf("engine poll_attempts must not be negative")
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}

	if v := os.Getenv("BACKEND_SESSION_COOKIE"); v != "" {
		cfg.Backend.SessionCookie = v
	}

	if v := os.Getenv("CACHE_DRIVER"); v != "" {
		cfg.Cache.Driver = v
	}

	if v := os.Getenv("CACHE_FILE_PATH"); v != "" {
		cfg.Cache.File.Path = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = trimScheme(v, "redis://")
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLite.Path = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

func trimScheme(v, scheme string) string {
	if len(v) >= len(scheme) && v[:len(scheme)] == scheme {
		return v[len(scheme):]
	}
	return v
}
