// Package config provides configuration management for the Gridwarden server.
//
// Config file locations (priority order):
//  1. $GRIDWARDEN_CONFIG
//  2. ./gridwarden.yaml
//  3. ~/.config/gridwarden/config.yaml
//  4. /etc/gridwarden/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:      1,
		Listen:       ":3000",
		Requirements: "./requirements.yaml",
		Database:     DatabaseConfig{Path: "./gridwarden.db"},
		Probe: ProbeConfig{
			SSHUser:       "root",
			SSHPort:       22,
			PortRange:     "22,4444,8091,27015",
			MaxConcurrent: 4,
		},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Listen == "" {
		c.Listen = ":3000"
	}
	if c.Requirements == "" {
		c.Requirements = "./requirements.yaml"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./gridwarden.db"
	}
	if c.Probe.SSHUser == "" {
		c.Probe.SSHUser = "root"
	}
	if c.Probe.SSHPort == 0 {
		c.Probe.SSHPort = 22
	}
	if c.Probe.PortRange == "" {
		c.Probe.PortRange = "22,4444,8091,27015"
	}
	if c.Probe.MaxConcurrent == 0 {
		c.Probe.MaxConcurrent = 4
	}
}

// ProbeTimeout returns the configured probe timeout, defaulting to 30s
func (c *Config) ProbeTimeout() time.Duration {
	if c.Probe.Timeout != nil {
		return c.Probe.Timeout.Duration()
	}
	return 30 * time.Second
}
