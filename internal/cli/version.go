package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

const devVersionString = "dev"

// BuildInfo holds the values stamped into the binary at link time.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

//nolint:gochecknoglobals // Set once from main before Execute
var buildInfo BuildInfo

// SetBuildInfo records the link-time version values shown by `tyche version`.
func SetBuildInfo(version, commit, date string) {
	buildInfo = BuildInfo{Version: version, Commit: commit, Date: date}
	rootCmd.Version = FormatVersion(buildInfo)
}

// FormatVersion renders b as "v1.2.3 (commit: abc1234, built: 2026-01-02)".
// Missing values render as "dev" and "unknown".
func FormatVersion(b BuildInfo) string {
	v := b.Version
	switch {
	case v == "" || v == devVersionString:
		v = devVersionString
	case !strings.HasPrefix(v, "v"):
		v = "v" + v
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, orUnknown(b.Commit), orUnknown(b.Date))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// versionCmd prints build information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print version information",
	GroupID: groupConfig,
	Long:    `Print the tyche version, the commit it was built from and the Go toolchain.`,
	Example: `  tyche version
  tyche version -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cc := GetCmdContext(cmd)
		info := buildInfo
		info.Go = runtime.Version()
		return writeResult(cmd.OutOrStdout(), cc, info, []string{
			"tyche " + FormatVersion(info),
			"go " + info.Go,
		})
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
}
