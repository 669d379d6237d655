package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvHome         = "TYCHE_HOME"
	EnvHash         = "TYCHE_HASH"
	EnvEncoding     = "TYCHE_ENCODING"
	EnvOutputFormat = "TYCHE_OUTPUT_FORMAT"
	EnvVerbose      = "TYCHE_VERBOSE"
	EnvLogLevel     = "TYCHE_LOG_LEVEL"
	EnvEntropyRate  = "TYCHE_ENTROPY_RATE"
	EnvNoColor      = "NO_COLOR"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvHash); v != "" {
		cfg.Generator.Hash = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvEncoding); v != "" {
		cfg.Generator.Encoding = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}

	// TYCHE_ENTROPY_RATE throttles the secure generator, in bytes per second
	if v := os.Getenv(EnvEntropyRate); v != "" {
		if rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && rate >= 0 {
			cfg.Entropy.RateLimit = rate
		}
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
