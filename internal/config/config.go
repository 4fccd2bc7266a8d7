package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the extrato.yaml server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	BodyLimitMB  int      `yaml:"body_limit_mb"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Environment string `yaml:"environment"` // production, development or local
	Level       string `yaml:"level,omitempty"`
}

// Default returns a Config suitable for local use.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8000",
			BodyLimitMB:  32,
			AllowOrigins: []string{"http://localhost:5173", "http://localhost:4173"},
		},
		Log: LogConfig{
			Environment: "production",
		},
	}
}

// Load reads an extrato.yaml file from disk on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from EXTRATO_* environment variables.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("EXTRATO_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup("EXTRATO_ENV"); ok {
		c.Log.Environment = v
	}
	if v, ok := lookup("EXTRATO_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("EXTRATO_ALLOW_ORIGINS"); ok {
		c.Server.AllowOrigins = splitList(v)
	}
	if v, ok := lookup("EXTRATO_BODY_LIMIT_MB"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("EXTRATO_BODY_LIMIT_MB: %w", err)
		}
		c.Server.BodyLimitMB = n
	}
	return nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.BodyLimitMB <= 0 {
		errs = append(errs, fmt.Errorf("server.body_limit_mb must be positive, got %d", c.Server.BodyLimitMB))
	}
	return errors.Join(errs...)
}

// BodyLimitBytes returns the upload limit in bytes.
func (c *Config) BodyLimitBytes() int {
	return c.Server.BodyLimitMB * 1024 * 1024
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
