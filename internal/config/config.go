// Package config provides configuration loading for reflectd.
//
// Configuration precedence (highest to lowest):
//
//	1. Environment variables (REFLECTD_SERVER_PORT, ...)
//	2. YAML config file
//	3. Hardcoded defaults
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces reflectd environment variables.
const envPrefix = "REFLECTD_"

// defaultYAML is the base configuration every load starts from.
const defaultYAML = `
database:
  path: reflectd.db
server:
  host: 127.0.0.1
  port: 8787
summarizer:
  enabled: false
  model: gpt-4o-mini
  timeout: 45s
  requests_per_minute: 30
harness:
  enabled: false
`

// Config is the root configuration.
type Config struct {
	Database   DatabaseConfig   `koanf:"database"`
	Server     ServerConfig     `koanf:"server"`
	Summarizer SummarizerConfig `koanf:"summarizer"`
	Harness    HarnessConfig    `koanf:"harness"`
	Drift      DriftConfig      `koanf:"drift"`
}

// DatabaseConfig locates the reflection store.
type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" is accepted for
	// ephemeral runs.
	Path string `koanf:"path"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Addr returns host:port for the listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SummarizerConfig configures the external narrative collaborator.
type SummarizerConfig struct {
	// Enabled gates summarization entirely. When false, summary requests
	// are marked unavailable and synthesis fails SYNTHESIS_UNAVAILABLE.
	Enabled bool `koanf:"enabled"`

	Model   string `koanf:"model"`
	Token   Secret `koanf:"token"`
	BaseURL string `koanf:"base_url"`

	// Timeout bounds each summarize call.
	Timeout Duration `koanf:"timeout"`

	RequestsPerMinute int `koanf:"requests_per_minute"`
}

// HarnessConfig configures the background validation loop.
type HarnessConfig struct {
	// Enabled starts the harness alongside the server.
	Enabled bool `koanf:"enabled"`

	// Plan is an optional path to a YAML harness plan. Empty means the
	// stock defaults.
	Plan string `koanf:"plan"`
}

// DriftConfig locates the optional drift policy document.
type DriftConfig struct {
	// Policy is an optional path to a CUE drift-policy file overriding
	// the default clamp/warn/stop bounds.
	Policy string `koanf:"policy"`
}

// Load builds the configuration from defaults, an optional YAML file, and
// REFLECTD_-prefixed environment variables, in increasing precedence.
// An empty configPath skips the file layer.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaultYAML)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
	}

	// REFLECTD_SERVER_PORT -> server.port
	// REFLECTD_SUMMARIZER_BASE_URL -> summarizer.base_url
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envTransform maps REFLECTD_SECTION_FIELD_NAME to section.field_name.
// Only the first underscore becomes a separator; the rest belong to the
// field name.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(s, "_", 2)
	return strings.Join(parts, ".")
}

func (c *Config) validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Summarizer.Enabled && c.Summarizer.Token.Value() == "" {
		return fmt.Errorf("summarizer.token required when summarizer is enabled")
	}
	return nil
}
