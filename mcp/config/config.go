package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mcp-http-test/mcp/types"
)

const (
	DefaultListen          = "127.0.0.1:8765"
	DefaultPath            = "/mcp"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultMaxConnections  = 256
	DefaultShutdownTimeout = 5 * time.Second

	// HealthPath is reserved for the health endpoint.
	HealthPath = "/healthz"
)

// Config is the top-level server configuration file.
type Config struct {
	Listen          string   `yaml:"listen"`
	Path            string   `yaml:"path"`
	MaxBodyBytes    int64    `yaml:"max_body_bytes"`
	MaxConnections  int      `yaml:"max_connections"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	Server          Server   `yaml:"server"`
}

// Server holds the identity reported by get_server_info.
type Server struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Duration is a time.Duration written as "5s" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:          DefaultListen,
		Path:            DefaultPath,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		MaxConnections:  DefaultMaxConnections,
		ShutdownTimeout: Duration(DefaultShutdownTimeout),
		Server: Server{
			Name:    types.DefaultServerName,
			Version: types.DefaultServerVersion,
		},
	}
}

// Load reads a YAML config file. Fields left out of the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks that a Config has all required fields and valid values.
func Validate(cfg *Config) error {
	if cfg.Listen == "" {
		return fmt.Errorf("missing required field: listen")
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		return fmt.Errorf("path must start with \"/\", got %q", cfg.Path)
	}
	if strings.ContainsAny(cfg.Path, "{} \t\r\n") {
		return fmt.Errorf("path %q must not contain braces or whitespace", cfg.Path)
	}
	if cfg.Path == HealthPath {
		return fmt.Errorf("path %q is reserved for the health endpoint", HealthPath)
	}
	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", cfg.MaxBodyBytes)
	}
	if cfg.MaxConnections <= 0 {
		return fmt.Errorf("max_connections must be positive, got %d", cfg.MaxConnections)
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	if cfg.Server.Name == "" {
		return fmt.Errorf("missing required field: server.name")
	}
	return nil
}
