package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/srg/anovamon/monitor"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML files can use "30s" notation
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Config holds the daemon configuration
type Config struct {
	Name     string `yaml:"name" default:"Anova"`
	Address  string `yaml:"address"`
	LogLevel string `yaml:"log_level" default:"info"`

	ConnectTimeout Duration `yaml:"connect_timeout"`
	CommandTimeout Duration `yaml:"command_timeout"`
	PollingCycle   Duration `yaml:"polling_cycle"`
}

// Default returns the default configuration values
func Default() *Config {
	c := &Config{}
	defaults.SetDefaults(c)
	c.ConnectTimeout = Duration(monitor.DefaultConnectTimeout)
	c.CommandTimeout = Duration(monitor.DefaultCommandTimeout)
	c.PollingCycle = Duration(monitor.DefaultPollingCycle)
	return c
}

// Load reads a YAML configuration file on top of the defaults
func Load(path string) (*Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return c, nil
}

// Validate checks required fields
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("device address is required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", c.LogLevel)
	}
	return nil
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}

// MonitorOptions maps the configured timings onto worker options
func (c *Config) MonitorOptions() *monitor.Options {
	return &monitor.Options{
		ConnectTimeout: time.Duration(c.ConnectTimeout),
		CommandTimeout: time.Duration(c.CommandTimeout),
		PollingCycle:   time.Duration(c.PollingCycle),
	}
}
