package blogposts

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a blog posts service.
type Config struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:8080")
	Description string `yaml:"description"` // Feed description

	Addr  string `yaml:"addr"`  // Listen address (default ":8080")
	Store string `yaml:"store"` // "memory" (default) or "sqlite"

	SkipSeed       bool   `yaml:"skip_seed"`       // Start with an empty store
	LogLevel       string `yaml:"log_level"`       // debug, info, warn, error, off (default "info")
	BodyLimit      string `yaml:"body_limit"`      // Max request body (default "1M")
	WriteLimit     int    `yaml:"write_limit"`     // Writes per IP per minute (default 0, off)
	TrustProxy     bool   `yaml:"trust_proxy"`     // Take the client IP from X-Forwarded-For
	DisableMetrics bool   `yaml:"disable_metrics"` // Turn off /metrics
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:8080"
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Store == "" {
		c.Store = DriverMemory
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.BodyLimit == "" {
		c.BodyLimit = "1M"
	}
}

// LoadConfig reads the YAML file at path (skipped when path is empty) and
// then applies BLOG_* environment overrides.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Name = EnvOr("BLOG_SITE_NAME", c.Name)
	c.URL = EnvOr("BLOG_SITE_URL", c.URL)
	c.Description = EnvOr("BLOG_SITE_DESCRIPTION", c.Description)
	c.Addr = EnvOr("BLOG_ADDR", c.Addr)
	c.Store = EnvOr("BLOG_STORE", c.Store)
	c.LogLevel = EnvOr("BLOG_LOG_LEVEL", c.LogLevel)
	c.BodyLimit = EnvOr("BLOG_BODY_LIMIT", c.BodyLimit)
	if v := os.Getenv("BLOG_SKIP_SEED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BLOG_SKIP_SEED: %w", err)
		}
		c.SkipSeed = b
	}
	if v := os.Getenv("BLOG_TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BLOG_TRUST_PROXY: %w", err)
		}
		c.TrustProxy = b
	}
	if v := os.Getenv("BLOG_WRITE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BLOG_WRITE_LIMIT: %w", err)
		}
		c.WriteLimit = n
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional App behavior.
type Option func(*App)

// WithStore makes the App serve s instead of building a store from Config.Store.
func WithStore(s PostStore) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
