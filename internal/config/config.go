// Package config loads the server configuration. Sources are layered:
// built-in defaults, then an optional YAML file, then CBIOPORTAL_*
// environment variables, then CLI flags applied by the caller.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
	API     API     `yaml:"api"`
}

// Server holds transport and upstream settings.
type Server struct {
	BaseURL       string  `yaml:"base_url"`
	ClientTimeout float64 `yaml:"client_timeout"` // seconds
	Transport     string  `yaml:"transport"`
	Port          int     `yaml:"port"`
}

// Timeout returns the client timeout as a duration.
func (s Server) Timeout() time.Duration {
	return time.Duration(s.ClientTimeout * float64(time.Second))
}

// Logging holds log output settings.
type Logging struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
	File   string `yaml:"file"`
}

// API groups upstream request policies. Rate limiting, retries and
// caching are configuration placeholders for now; the values are
// parsed and validated but not yet acted on.
type API struct {
	RateLimit RateLimit `yaml:"rate_limit"`
	Retry     Retry     `yaml:"retry"`
	Cache     Cache     `yaml:"cache"`
}

type RateLimit struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type Retry struct {
	Enabled       bool    `yaml:"enabled"`
	MaxAttempts   int     `yaml:"max_attempts"`
	BackoffFactor float64 `yaml:"backoff_factor"`
}

type Cache struct {
	Enabled    bool `yaml:"enabled"`
	TTLSeconds int  `yaml:"ttl_seconds"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			BaseURL:       "https://www.cbioportal.org/api",
			ClientTimeout: 480,
			Transport:     "stdio",
			Port:          8000,
		},
		Logging: Logging{
			Level:  "info",
			Pretty: false,
		},
		API: API{
			RateLimit: RateLimit{Enabled: false, RequestsPerSecond: 10},
			Retry:     Retry{Enabled: true, MaxAttempts: 3, BackoffFactor: 1.0},
			Cache:     Cache{Enabled: false, TTLSeconds: 300},
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file
// at path, and the environment, in that order. An empty path skips the
// file layer.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from CBIOPORTAL_* environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("CBIOPORTAL_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("CBIOPORTAL_CLIENT_TIMEOUT"); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CBIOPORTAL_CLIENT_TIMEOUT: %w", err)
		}
		c.Server.ClientTimeout = secs
	}
	if v := os.Getenv("CBIOPORTAL_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
	if v := os.Getenv("CBIOPORTAL_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CBIOPORTAL_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("CBIOPORTAL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CBIOPORTAL_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("CBIOPORTAL_RATE_LIMIT_ENABLED"); v != "" {
		c.API.RateLimit.Enabled = envBool(v)
	}
	if v := os.Getenv("CBIOPORTAL_RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CBIOPORTAL_RATE_LIMIT_RPS: %w", err)
		}
		c.API.RateLimit.RequestsPerSecond = rps
	}
	if v := os.Getenv("CBIOPORTAL_RETRY_ENABLED"); v != "" {
		c.API.Retry.Enabled = envBool(v)
	}
	if v := os.Getenv("CBIOPORTAL_RETRY_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CBIOPORTAL_RETRY_MAX_ATTEMPTS: %w", err)
		}
		c.API.Retry.MaxAttempts = n
	}
	if v := os.Getenv("CBIOPORTAL_CACHE_ENABLED"); v != "" {
		c.API.Cache.Enabled = envBool(v)
	}
	if v := os.Getenv("CBIOPORTAL_CACHE_TTL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CBIOPORTAL_CACHE_TTL: %w", err)
		}
		c.API.Cache.TTLSeconds = n
	}
	return nil
}

func envBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// Validate checks the configuration for values the server cannot run
// with.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url must not be empty")
	}
	if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		return fmt.Errorf("server.base_url must start with http:// or https://")
	}
	if c.Server.ClientTimeout <= 0 {
		return fmt.Errorf("server.client_timeout must be positive")
	}
	if c.Server.Transport != "stdio" {
		return fmt.Errorf("server.transport must be stdio, got %q", c.Server.Transport)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	if c.API.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("api.rate_limit.requests_per_second must be positive")
	}
	if c.API.Retry.MaxAttempts < 1 {
		return fmt.Errorf("api.retry.max_attempts must be at least 1")
	}
	return nil
}

// WriteExample writes a commented example configuration file to path.
func WriteExample(path string) error {
	cfg := Default()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal example config: %w", err)
	}
	header := []byte("# cBioPortal MCP server configuration.\n# All values can also be set via CBIOPORTAL_* environment variables.\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
