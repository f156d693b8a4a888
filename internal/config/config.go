package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dyluth/commviz/pkg/artifact"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file looked up in the working directory.
const DefaultFileName = "commviz.yml"

// SupportedVersion is the only configuration version this build understands.
const SupportedVersion = "1.0"

// Session backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Environment variables that override file values.
const (
	EnvRoot     = "COMMVIZ_ROOT"
	EnvAddr     = "COMMVIZ_ADDR"
	EnvRedisURL = "COMMVIZ_REDIS_URL"
	EnvLogLevel = "COMMVIZ_LOG_LEVEL"
)

// Config represents the top-level commviz.yml configuration
type Config struct {
	Version  string         `yaml:"version"`
	Root     string         `yaml:"root"`
	Views    ViewsConfig    `yaml:"views,omitempty"`
	Server   ServerConfig   `yaml:"server"`
	Sessions SessionsConfig `yaml:"sessions"`
	Logging  LoggingConfig  `yaml:"logging"`
	Watch    WatchConfig    `yaml:"watch"`
}

// ViewsConfig overrides the location of individual view subtrees.
// Empty entries default to <root>/<name>.
type ViewsConfig struct {
	Platforms    string `yaml:"platforms,omitempty"`
	Polarization string `yaml:"polarization,omitempty"`
	Cohesion     string `yaml:"cohesion,omitempty"`
	Individual   string `yaml:"individual,omitempty"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// SessionsConfig selects where per-session selections are kept
type SessionsConfig struct {
	Backend   string `yaml:"backend"`             // "memory" or "redis"
	RedisURL  string `yaml:"redis_url,omitempty"` // Required when backend is redis
	Namespace string `yaml:"namespace"`
	TTL       string `yaml:"ttl"` // Idle expiry, "0" disables it
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// WatchConfig configures the store watcher
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version: SupportedVersion,
		Root:    artifact.DefaultRoot,
		Server: ServerConfig{
			Addr:         ":8501",
			ReadTimeout:  "10s",
			WriteTimeout: "30s",
		},
		Sessions: SessionsConfig{
			Backend:   BackendMemory,
			Namespace: "default",
			TTL:       "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Watch: WatchConfig{
			Debounce: "250ms",
		},
	}
}

// Load reads commviz.yml from path, applies environment overrides and validates the result.
// A missing file is not an error: defaults are used instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if root := os.Getenv(EnvRoot); root != "" {
		c.Root = root
	}
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if redisURL := os.Getenv(EnvRedisURL); redisURL != "" {
		c.Sessions.RedisURL = redisURL
		c.Sessions.Backend = BackendRedis
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
}

// Validate performs strict validation on the configuration
func (c *Config) Validate() error {
	if c.Version != SupportedVersion {
		return fmt.Errorf("unsupported version: %s (expected: %s)", c.Version, SupportedVersion)
	}

	if c.Root == "" {
		return fmt.Errorf("root is required")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if err := validateDuration("server.read_timeout", c.Server.ReadTimeout, false); err != nil {
		return err
	}
	if err := validateDuration("server.write_timeout", c.Server.WriteTimeout, false); err != nil {
		return err
	}

	switch c.Sessions.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Sessions.RedisURL == "" {
			return fmt.Errorf("sessions.redis_url is required when backend is '%s' (or set %s)", BackendRedis, EnvRedisURL)
		}
		u, err := url.Parse(c.Sessions.RedisURL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			return fmt.Errorf("sessions.redis_url must be a redis:// or rediss:// URL, got '%s'", c.Sessions.RedisURL)
		}
	default:
		return fmt.Errorf("invalid sessions.backend: %s (must be '%s' or '%s')", c.Sessions.Backend, BackendMemory, BackendRedis)
	}

	if c.Sessions.Namespace == "" || strings.ContainsAny(c.Sessions.Namespace, ": \t\n") {
		return fmt.Errorf("invalid sessions.namespace '%s': must be non-empty without ':' or whitespace", c.Sessions.Namespace)
	}
	if err := validateDuration("sessions.ttl", c.Sessions.TTL, true); err != nil {
		return err
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s (must be 'debug', 'info', 'warn', or 'error')", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid logging.format: %s (must be 'json' or 'console')", c.Logging.Format)
	}

	if err := validateDuration("watch.debounce", c.Watch.Debounce, true); err != nil {
		return err
	}

	return nil
}

func validateDuration(field, value string, allowZero bool) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s '%s': %w", field, value, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return fmt.Errorf("invalid %s '%s': must be positive", field, value)
	}
	return nil
}

// OverrideRoot points every view at root, discarding per-view locations.
func (c *Config) OverrideRoot(root string) {
	c.Root = root
	c.Views = ViewsConfig{}
}

// Layout builds the artifact layout, applying per-view overrides.
func (c *Config) Layout() artifact.Layout {
	layout := artifact.DefaultLayout(c.Root)
	if c.Views.Platforms != "" {
		layout.Platforms = c.Views.Platforms
	}
	if c.Views.Polarization != "" {
		layout.Polarization = c.Views.Polarization
	}
	if c.Views.Cohesion != "" {
		layout.Cohesion = c.Views.Cohesion
	}
	if c.Views.Individual != "" {
		layout.Individual = c.Views.Individual
	}
	return layout
}

// ReadTimeout returns server.read_timeout as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 10*time.Second)
}

// WriteTimeout returns server.write_timeout as a duration.
func (c *Config) WriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 30*time.Second)
}

// SessionTTL returns sessions.ttl as a duration. Zero means sessions never expire.
func (c *Config) SessionTTL() time.Duration {
	return parseDuration(c.Sessions.TTL, 24*time.Hour)
}

// Debounce returns watch.debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return parseDuration(c.Watch.Debounce, 250*time.Millisecond)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
