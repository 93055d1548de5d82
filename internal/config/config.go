package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultBufferSize is the scratch buffer used for every read and receive.
	DefaultBufferSize = 1024

	// MaxBufferSize is the largest payload a single UDP datagram can carry.
	MaxBufferSize = 65535

	DefaultMetricsAddress = "127.0.0.1:9100"
)

// Config represents the complete toolkit configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Echo    EchoConfig    `yaml:"echo"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// EchoConfig contains parameters shared by the echo servers and the UDP client
type EchoConfig struct {
	BufferSize int `yaml:"buffer_size"`

	// UDPFullBufferReply makes the UDP server send back its whole scratch buffer
	// instead of only the received bytes.
	UDPFullBufferReply bool `yaml:"udp_full_buffer_reply"`
}

// MetricsConfig contains the Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "debug",
			Format: "text",
			Output: "stderr",
		},
		Echo: EchoConfig{
			BufferSize:         DefaultBufferSize,
			UDPFullBufferReply: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: DefaultMetricsAddress,
		},
	}
}

// Load reads and parses the configuration file. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs validation of every section
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Echo.Validate(); err != nil {
		return fmt.Errorf("echo config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	// Anything other than stdout/stderr is treated as a file path.
	if l.Output == "" {
		return fmt.Errorf("output cannot be empty")
	}

	return nil
}

// Validate validates echo configuration
func (e *EchoConfig) Validate() error {
	if e.BufferSize < 1 || e.BufferSize > MaxBufferSize {
		return fmt.Errorf("buffer_size must be between 1 and %d bytes, got %d", MaxBufferSize, e.BufferSize)
	}

	return nil
}

// Validate validates metrics configuration
func (m *MetricsConfig) Validate() error {
	if m.Enabled && m.Address == "" {
		return fmt.Errorf("address cannot be empty when metrics are enabled")
	}

	return nil
}
