package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the terminal server configuration.
type Config struct {
	OrderSourceURL string `yaml:"order_source_url"`
	JWTSecret      string `yaml:"jwt_secret"`
	PollSeconds    int    `yaml:"poll_interval_seconds"`
	TickSeconds    int    `yaml:"tick_interval_seconds"`

	Server struct {
		Port        int `yaml:"port"`
		MetricsPort int `yaml:"metrics_port"`
	} `yaml:"server"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		OrderSourceURL: "http://localhost:8090",
		JWTSecret:      "change-me",
		PollSeconds:    5,
		TickSeconds:    1,
	}
	cfg.Server.Port = 8080
	cfg.Server.MetricsPort = 9090
	return cfg
}

// Load reads a yaml configuration file, filling unset fields with defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.PollSeconds <= 0 {
		cfg.PollSeconds = 5
	}
	if cfg.TickSeconds <= 0 {
		cfg.TickSeconds = 1
	}
	return cfg, nil
}

// PollInterval returns the order poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// TickInterval returns the display clock interval as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickSeconds) * time.Second
}
