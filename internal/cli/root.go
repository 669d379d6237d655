// Package cli implements the tyche command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tyche/internal/config"
	"github.com/mrz1836/tyche/internal/metrics"
	"github.com/mrz1836/tyche/internal/output"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// Command group IDs for the root help listing.
const (
	groupGenerators = "generators"
	groupSeeds      = "seeds"
	groupConfig     = "config"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tyche",
	Short: "Deterministic and secure random number generators",
	Long: `Tyche contrasts two kinds of random number generator.

The deterministic generator derives every output from its seed with
HMAC(state, counter). The same seed always replays the same sequence, which
makes it useful for simulations and tests and useless for secrets. Seeding it
from the clock shows how quickly such output can be predicted.

The secure generator reads every byte from the operating system's entropy
source and keeps no seed at all. Use it for keys, tokens and seeds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		reportMetrics(cmd)
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	enrichHelp()

	err := rootCmd.Execute()
	if err != nil {
		if logger != nil {
			logger.ErrorAttrs("command failed",
				slog.String("code", tycheerr.Code(err)),
				slog.String("error", err.Error()),
			)
		}

		format := output.FormatText
		if formatter != nil {
			format = formatter.Format()
		}
		_ = output.FormatError(os.Stderr, err, format)

		// PersistentPostRun does not run when RunE fails
		cleanup()
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return tycheerr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, and formatter, then
// attaches them to cmd as its CommandContext.
func initGlobals(cmd *cobra.Command) error {
	// Determine home directory
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	// Load or create config
	var err error
	cfg, err = config.Load(config.Path(home))
	if err != nil {
		if !os.IsNotExist(err) && !isConfigCommand(cmd) {
			return err
		}
		// Use defaults if config doesn't exist
		cfg = config.Defaults()
		cfg.Home = home
	}

	// Apply environment variable overrides
	config.ApplyEnvironment(cfg)

	// Override with command-line flags
	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	// Broken settings must stay repairable through `tyche config`
	if !isConfigCommand(cmd) {
		if err := config.Validate(cfg); err != nil {
			return tycheerr.WithSuggestion(err, "fix it with 'tyche config set' or 'tyche config init --force'")
		}
	}

	// Initialize logger
	newLogger := config.NewLogger
	if cfg.Logging.Format == "json" {
		newLogger = config.NewStructuredLogger
	}
	logger, err = newLogger(config.ParseLogLevel(cfg.Logging.Level), cfg.Logging.File)
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}

	// Initialize formatter
	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	formatter = output.NewFormatter(output.DetectFormat(os.Stdout, explicitFormat), os.Stdout)

	logger.DebugAttrs("command start",
		slog.String("command", cmd.CommandPath()),
		slog.String("home", cfg.Home),
		slog.String("format", string(formatter.Format())),
	)

	SetCmdContext(cmd, NewCommandContext(cfg, logger, formatter).WithMetrics(metrics.Global))
	return nil
}

// isConfigCommand reports whether cmd is `tyche config` or one of its children.
func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return true
		}
	}
	return false
}

// reportMetrics logs the draw counters and, in verbose mode, shows them on stderr.
func reportMetrics(cmd *cobra.Command) {
	cc := GetCmdContext(cmd)
	if cc.Metrics == nil {
		return
	}

	snap := cc.Metrics.Snapshot()
	cc.Log.DebugAttrs("command metrics",
		slog.Int64("deterministic_draws", snap.DeterministicDraws),
		slog.Int64("secure_draws", snap.SecureDraws),
		slog.Int64("rejections", snap.Rejections),
		slog.Int64("entropy_reads", snap.EntropyReadsTotal),
		slog.Int64("entropy_errors", snap.EntropyReadErrors),
		slog.Int64("entropy_bytes", snap.EntropyBytesTotal),
	)

	if !cc.Cfg.IsVerbose() {
		return
	}
	n := cc.notifier(cmd.ErrOrStderr())
	n.Infof("draws: %d deterministic, %d secure, %d rejected (%.2f%%)",
		snap.DeterministicDraws, snap.SecureDraws, snap.Rejections, cc.Metrics.RejectionRate())
	if snap.EntropyReadsTotal > 0 {
		n.Infof("entropy: %d reads, %d bytes, %d errors, %.3fms avg",
			snap.EntropyReadsTotal, snap.EntropyBytesTotal, snap.EntropyReadErrors, cc.Metrics.EntropyLatencyAvgMs())
	}
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "tyche data directory (default: ~/.tyche)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupGenerators, Title: "Generators:"},
		&cobra.Group{ID: groupSeeds, Title: "Seeds:"},
		&cobra.Group{ID: groupConfig, Title: "Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID(groupConfig)
}
