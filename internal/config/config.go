// Package config provides configuration management for Tyche.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/tyche/internal/fileutil"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Home      string          `yaml:"home"`
	Generator GeneratorConfig `yaml:"generator"`
	Entropy   EntropyConfig   `yaml:"entropy"`
	Security  SecurityConfig  `yaml:"security"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GeneratorConfig defines defaults for draw commands.
type GeneratorConfig struct {
	Hash     string `yaml:"hash"`
	Encoding string `yaml:"encoding"`
	Count    int    `yaml:"count"`
}

// EntropyConfig defines how the secure generator reads entropy.
// A zero RateLimit reads from the OS source without throttling.
type EntropyConfig struct {
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
	TimeoutMS int     `yaml:"timeout_ms"`
}

// SecurityConfig defines security settings.
type SecurityConfig struct {
	MemoryLock       bool `yaml:"memory_lock"`
	ScryptWorkFactor int  `yaml:"scrypt_work_factor"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// Load reads configuration from the specified file. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, tycheerr.WithCause(
			tycheerr.WithDetails(tycheerr.ErrConfigInvalid, map[string]string{"path": path}),
			err,
		)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// GetSecurity returns the security configuration.
func (c *Config) GetSecurity() SecurityConfig {
	return c.Security
}

// EntropyTimeout returns the rate limiter wait bound. Zero means unbounded.
func (c *Config) EntropyTimeout() time.Duration {
	return time.Duration(c.Entropy.TimeoutMS) * time.Millisecond
}

// DefaultHome returns the default tyche home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tyche"
	}
	return filepath.Join(home, ".tyche")
}
