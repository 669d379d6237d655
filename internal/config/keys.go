package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mrz1836/tyche/internal/codec"
	"github.com/mrz1836/tyche/internal/drbg"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// Valid values for enumerated settings.
var (
	validFormats   = []string{"text", "json", "auto"}
	validColors    = []string{"auto", "always", "never"}
	validLogLevels = []string{"off", "error", "debug"}
	validLogFmts   = []string{"text", "json"}
)

// maxKeyTypoDistance bounds "did you mean" suggestions for config paths.
const maxKeyTypoDistance = 3

type accessor struct {
	get func(c *Config) string
	set func(c *Config, value string) error
}

//nolint:gochecknoglobals // Static lookup table
var accessors = map[string]accessor{
	"home": {
		get: func(c *Config) string { return c.Home },
		set: func(c *Config, v string) error { c.Home = v; return nil },
	},
	"generator.hash": {
		get: func(c *Config) string { return c.Generator.Hash },
		set: func(c *Config, v string) error {
			if err := drbg.CheckHash(v); err != nil {
				return err
			}
			c.Generator.Hash = strings.ToLower(v)
			return nil
		},
	},
	"generator.encoding": {
		get: func(c *Config) string { return c.Generator.Encoding },
		set: func(c *Config, v string) error {
			e, err := codec.ParseEncoding(v)
			if err != nil {
				return err
			}
			c.Generator.Encoding = string(e)
			return nil
		},
	},
	"generator.count": {
		get: func(c *Config) string { return strconv.Itoa(c.Generator.Count) },
		set: func(c *Config, v string) error {
			n, err := parsePositiveInt("generator.count", v)
			if err != nil {
				return err
			}
			c.Generator.Count = n
			return nil
		},
	},
	"entropy.rate_limit": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Entropy.RateLimit, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			rate, err := strconv.ParseFloat(v, 64)
			if err != nil || rate < 0 {
				return invalidValue("entropy.rate_limit", v, "a non-negative number of bytes per second")
			}
			c.Entropy.RateLimit = rate
			return nil
		},
	},
	"entropy.burst": {
		get: func(c *Config) string { return strconv.Itoa(c.Entropy.Burst) },
		set: func(c *Config, v string) error {
			n, err := parsePositiveInt("entropy.burst", v)
			if err != nil {
				return err
			}
			c.Entropy.Burst = n
			return nil
		},
	},
	"entropy.timeout_ms": {
		get: func(c *Config) string { return strconv.Itoa(c.Entropy.TimeoutMS) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return invalidValue("entropy.timeout_ms", v, "a non-negative number of milliseconds")
			}
			c.Entropy.TimeoutMS = n
			return nil
		},
	},
	"security.memory_lock": {
		get: func(c *Config) string { return strconv.FormatBool(c.Security.MemoryLock) },
		set: func(c *Config, v string) error { c.Security.MemoryLock = parseBool(v); return nil },
	},
	"security.scrypt_work_factor": {
		get: func(c *Config) string { return strconv.Itoa(c.Security.ScryptWorkFactor) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 10 || n > 18 {
				return invalidValue("security.scrypt_work_factor", v, "an integer from 10 to 18")
			}
			c.Security.ScryptWorkFactor = n
			return nil
		},
	},
	"output.default_format": {
		get: func(c *Config) string { return c.Output.DefaultFormat },
		set: func(c *Config, v string) error {
			return setEnum(&c.Output.DefaultFormat, "output.default_format", v, validFormats)
		},
	},
	"output.color": {
		get: func(c *Config) string { return c.Output.Color },
		set: func(c *Config, v string) error {
			return setEnum(&c.Output.Color, "output.color", v, validColors)
		},
	},
	"output.verbose": {
		get: func(c *Config) string { return strconv.FormatBool(c.Output.Verbose) },
		set: func(c *Config, v string) error { c.Output.Verbose = parseBool(v); return nil },
	},
	"logging.level": {
		get: func(c *Config) string { return c.Logging.Level },
		set: func(c *Config, v string) error {
			return setEnum(&c.Logging.Level, "logging.level", v, validLogLevels)
		},
	},
	"logging.format": {
		get: func(c *Config) string { return c.Logging.Format },
		set: func(c *Config, v string) error {
			return setEnum(&c.Logging.Format, "logging.format", v, validLogFmts)
		},
	},
	"logging.file": {
		get: func(c *Config) string { return c.Logging.File },
		set: func(c *Config, v string) error { c.Logging.File = v; return nil },
	},
}

// Keys returns every settable config path, sorted.
func Keys() []string {
	keys := make([]string, 0, len(accessors))
	for k := range accessors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value at a dot-separated config path.
func Get(c *Config, path string) (string, error) {
	a, err := lookup(path)
	if err != nil {
		return "", err
	}
	return a.get(c), nil
}

// Set validates value and stores it at a dot-separated config path.
func Set(c *Config, path, value string) error {
	a, err := lookup(path)
	if err != nil {
		return err
	}
	return a.set(c, strings.TrimSpace(value))
}

// Validate checks every setting, returning the first problem found.
func Validate(c *Config) error {
	for _, path := range Keys() {
		a := accessors[path]
		probe := *c
		if err := a.set(&probe, a.get(c)); err != nil {
			return tycheerr.WithCause(
				tycheerr.WithDetails(tycheerr.ErrConfigInvalid, map[string]string{"key": path}),
				err,
			)
		}
	}
	return nil
}

func lookup(path string) (accessor, error) {
	key := strings.ToLower(strings.TrimSpace(path))
	if a, ok := accessors[key]; ok {
		return a, nil
	}

	err := tycheerr.WithDetails(tycheerr.ErrUnknownConfigKey, map[string]string{"key": path})
	if s := suggestKey(key); s != "" {
		return accessor{}, tycheerr.WithSuggestion(err, fmt.Sprintf("did you mean '%s'?", s))
	}
	return accessor{}, tycheerr.WithSuggestion(err, "run 'tyche config show' to list keys")
}

func suggestKey(input string) string {
	best := ""
	bestDist := maxKeyTypoDistance + 1
	for _, k := range Keys() {
		if d := levenshtein.ComputeDistance(input, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

func setEnum(dst *string, key, value string, valid []string) error {
	v := strings.ToLower(value)
	for _, ok := range valid {
		if v == ok {
			*dst = v
			return nil
		}
	}
	return invalidValue(key, value, strings.Join(valid, ", "))
}

func parsePositiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, invalidValue(key, value, "a positive integer")
	}
	return n, nil
}

func invalidValue(key, value, valid string) error {
	return tycheerr.WithDetails(tycheerr.ErrInvalidFormat, map[string]string{
		"key":   key,
		"value": value,
		"valid": valid,
	})
}
