package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tyche/internal/config"
	"github.com/mrz1836/tyche/internal/drbg"
	"github.com/mrz1836/tyche/internal/entropy"
	"github.com/mrz1836/tyche/internal/metrics"
	"github.com/mrz1836/tyche/internal/output"
	"github.com/mrz1836/tyche/internal/secure"
)

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Log     LogWriter
	Fmt     FormatProvider
	Metrics *metrics.Metrics

	// Entropy feeds the secure generator. Nil means the OS source.
	Entropy entropy.Source

	// Now is the clock used by time-seeded commands. Nil means time.Now.
	Now func() time.Time
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(cfg *config.Config, log LogWriter, fmtr FormatProvider) *CommandContext {
	return &CommandContext{
		Cfg: cfg,
		Log: log,
		Fmt: fmtr,
	}
}

// WithMetrics sets the metrics collector.
func (c *CommandContext) WithMetrics(m *metrics.Metrics) *CommandContext {
	c.Metrics = m
	return c
}

// WithEntropy sets the entropy source for the secure generator.
func (c *CommandContext) WithEntropy(src entropy.Source) *CommandContext {
	c.Entropy = src
	return c
}

// WithClock sets the clock used by time-seeded commands.
func (c *CommandContext) WithClock(now func() time.Time) *CommandContext {
	c.Now = now
	return c
}

type cmdContextKey struct{}

// SetCmdContext attaches cc to cmd.
func SetCmdContext(cmd *cobra.Command, cc *CommandContext) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cmdContextKey{}, cc))
}

// GetCmdContext returns the CommandContext attached to cmd, falling back to
// defaults when none was attached.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	if ctx := cmd.Context(); ctx != nil {
		if cc, ok := ctx.Value(cmdContextKey{}).(*CommandContext); ok {
			return cc
		}
	}
	return NewCommandContext(config.Defaults(), config.NullLogger(), output.NewFormatter(output.FormatText, os.Stdout))
}

// isJSON reports whether results should be written as JSON.
func (c *CommandContext) isJSON() bool {
	return c.Fmt != nil && c.Fmt.Format() == output.FormatJSON
}

func (c *CommandContext) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *CommandContext) notifier(w io.Writer) *output.Notifier {
	return output.NewNotifier(w, output.UseColor(w, c.Cfg.Output.Color))
}

// hashName returns the flag value when set, else the configured hash.
func (c *CommandContext) hashName(flag string) string {
	if flag != "" {
		return flag
	}
	return c.Cfg.Generator.Hash
}

// drbgOptions builds generator options from config and the chosen hash.
func (c *CommandContext) drbgOptions(hash string) []drbg.Option {
	opts := []drbg.Option{
		drbg.WithHash(c.hashName(hash)),
		drbg.WithMemoryLock(c.Cfg.Security.MemoryLock),
	}
	if c.Metrics != nil {
		opts = append(opts, drbg.WithMetrics(c.Metrics))
	}
	return opts
}

// entropySource wraps the base source with the configured rate limit and
// instruments the result, so rate limit timeouts count as read errors.
func (c *CommandContext) entropySource() entropy.Source {
	src := c.Entropy
	if src == nil {
		src = entropy.OS()
	}

	if rate := c.Cfg.Entropy.RateLimit; rate > 0 {
		src = entropy.RateLimited(src, rate, c.Cfg.Entropy.Burst, c.Cfg.EntropyTimeout())
	}
	return entropy.Instrumented(src, c.Metrics)
}

// newSecure builds a secure generator over the configured entropy source.
func (c *CommandContext) newSecure() *secure.Generator {
	var opts []secure.Option
	if c.Metrics != nil {
		opts = append(opts, secure.WithMetrics(c.Metrics))
	}
	return secure.New(c.entropySource(), opts...)
}
