package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tyche/internal/config"
	"github.com/mrz1836/tyche/internal/output"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage configuration",
	GroupID: groupConfig,
	Long: `View and modify tyche configuration settings.

Settings live in config.yaml under the tyche home directory (--home or
TYCHE_HOME, default ~/.tyche). Environment variables override the file.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file in the tyche home directory.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.`,
	Example: `  tyche config init
  tyche config init --force
  tyche --home /tmp/tyche config init`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display every configuration key with its effective value.

Values include environment overrides, so they may differ from the file.`,
	Example: `  tyche config show
  tyche config show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its key.

Keys use dot notation, as listed by 'tyche config show'.`,
	Example: `  tyche config get generator.hash
  tyche config get entropy.rate_limit
  tyche config get logging.level`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeConfigKeys,
	RunE:              runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its key.

The value is validated before the configuration file is rewritten, so an
invalid value leaves the file untouched.`,
	Example: `  tyche config set generator.hash blake2b-256
  tyche config set entropy.rate_limit 256
  tyche config set output.default_format json`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeConfigKeys,
	RunE:              runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func completeConfigKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return config.Keys(), cobra.ShellCompDirectiveNoFileComp
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	configPath := config.Path(cc.Cfg.Home)

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return tycheerr.WithSuggestion(
			tycheerr.WithDetails(tycheerr.ErrInvalidInput, map[string]string{"path": configPath}),
			"configuration already exists; use --force to overwrite",
		)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cc.Cfg.Home

	if err := config.Save(defaultCfg, configPath); err != nil {
		return tycheerr.Wrap(err, "writing config file")
	}
	cc.Log.Debug("wrote default config to %s", configPath)

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - generator.hash: Mixing hash for the deterministic generator")
	outln(w, "  - entropy.rate_limit: Bytes per second from the entropy source (0 = unlimited)")
	outln(w, "  - output.default_format: Output format (text/json/auto)")
	outln(w, "  - logging.level: Log level (off/error/debug)")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	w := cmd.OutOrStdout()

	values := make(map[string]string, len(config.Keys()))
	table := output.NewTable("KEY", "VALUE")
	for _, key := range config.Keys() {
		v, err := config.Get(cc.Cfg, key)
		if err != nil {
			return err
		}
		values[key] = v
		if v == "" {
			v = "(not set)"
		}
		table.AddRow(key, v)
	}

	if cc.isJSON() {
		return output.WriteJSON(w, values)
	}
	return table.Render(w)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	value, err := config.Get(cc.Cfg, args[0])
	if err != nil {
		return err
	}

	if cc.isJSON() {
		return output.WriteJSON(cmd.OutOrStdout(), map[string]string{args[0]: value})
	}
	outln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	key, value := args[0], args[1]

	// Edit the file, not the effective config, so env overrides are not persisted
	configPath := config.Path(cc.Cfg.Home)
	fileCfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		fileCfg = config.Defaults()
		fileCfg.Home = cc.Cfg.Home
	}

	if err := config.Set(fileCfg, key, value); err != nil {
		return err
	}

	if err := config.Save(fileCfg, configPath); err != nil {
		return tycheerr.Wrap(err, "saving config")
	}

	// Keep the in-memory config consistent for the rest of this run
	_ = config.Set(cc.Cfg, key, value)
	cc.Log.Debug("config %s set to %q", key, value)

	out(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}
