package config

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.tyche",
		Generator: GeneratorConfig{
			Hash:     "sha256",
			Encoding: "hex",
			Count:    1,
		},
		Entropy: EntropyConfig{
			RateLimit: 0,
			Burst:     64,
			TimeoutMS: 2000,
		},
		Security: SecurityConfig{
			MemoryLock:       true,
			ScryptWorkFactor: 18,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level:  "error",
			File:   "~/.tyche/tyche.log",
			Format: "text",
		},
	}
}
