package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIBase is the hosted recognition backend used when nothing else is configured
const DefaultAPIBase = "https://ocr-backend-deploy.onrender.com"

type Config struct {
	// Backend
	APIBase     string
	HTTPTimeout time.Duration

	// Server
	Port        string
	SessionIdle time.Duration
}

// fileConfig mirrors the optional YAML config file
type fileConfig struct {
	APIBase     string `yaml:"api_base"`
	Port        string `yaml:"port"`
	HTTPTimeout string `yaml:"http_timeout"`
	SessionIdle string `yaml:"session_idle"`
}

// Load reads the optional YAML file at path, then lets environment variables override it.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{
		APIBase:     DefaultAPIBase,
		Port:        "8888",
		SessionIdle: 2 * time.Hour,
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.APIBase = getEnv("OCR_API_BASE", cfg.APIBase)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.HTTPTimeout = getDurationEnv("OCR_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.SessionIdle = getDurationEnv("OCR_SESSION_IDLE", cfg.SessionIdle)

	cfg.APIBase = NormalizeBase(cfg.APIBase)
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.APIBase != "" {
		c.APIBase = fc.APIBase
	}
	if fc.Port != "" {
		c.Port = fc.Port
	}
	if fc.HTTPTimeout != "" {
		d, err := time.ParseDuration(fc.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("invalid http_timeout %q: %w", fc.HTTPTimeout, err)
		}
		c.HTTPTimeout = d
	}
	if fc.SessionIdle != "" {
		d, err := time.ParseDuration(fc.SessionIdle)
		if err != nil {
			return fmt.Errorf("invalid session_idle %q: %w", fc.SessionIdle, err)
		}
		c.SessionIdle = d
	}
	return nil
}

// NormalizeBase trims whitespace and a single trailing slash so paths can be appended directly
func NormalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return DefaultAPIBase
	}
	return strings.TrimSuffix(base, "/")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
