package config

import (
	"time"
)

// Config is the root server configuration structure
type Config struct {
	Version      int            `yaml:"version"`
	Listen       string         `yaml:"listen"`
	Requirements string         `yaml:"requirements"` // path to the role requirement table
	Database     DatabaseConfig `yaml:"database"`
	Probe        ProbeConfig    `yaml:"probe"`
}

// DatabaseConfig holds admission report storage settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ProbeConfig controls independent telemetry measurement of nodes.
// Probing is opt-in: with Enabled false the server only validates
// self-reported telemetry.
type ProbeConfig struct {
	Enabled       bool      `yaml:"enabled"`
	SSHUser       string    `yaml:"ssh_user,omitempty"`
	SSHKeyPath    string    `yaml:"ssh_key_path,omitempty"`
	SSHPort       int       `yaml:"ssh_port,omitempty"`
	Timeout       *Duration `yaml:"timeout,omitempty"`
	PortRange     string    `yaml:"port_range,omitempty"`
	MaxConcurrent int       `yaml:"max_concurrent,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
