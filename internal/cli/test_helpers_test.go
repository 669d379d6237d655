package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mrz1836/tyche/internal/config"
	"github.com/mrz1836/tyche/internal/entropy"
	"github.com/mrz1836/tyche/internal/metrics"
	"github.com/mrz1836/tyche/internal/output"
)

const (
	testPassphrase = "correct horse battery"
	testWorkFactor = 10
)

// testClock is the fixed time used by time-seeded command tests.
//
//nolint:gochecknoglobals // Shared test fixture
var testClock = time.Unix(1700000000, 0)

// newTestContext returns a context rooted in a temp home with fast seed
// files, no mlock and the given output format.
func newTestContext(t *testing.T, format output.Format) *CommandContext {
	t.Helper()

	c := config.Defaults()
	c.Home = t.TempDir()
	c.Logging.File = ""
	c.Security.MemoryLock = false
	c.Security.ScryptWorkFactor = testWorkFactor

	return NewCommandContext(c, config.NullLogger(), output.NewFormatter(format, &bytes.Buffer{})).
		WithMetrics(&metrics.Metrics{}).
		WithClock(func() time.Time { return testClock })
}

// countingEntropy returns a source yielding 0, 1, 2, ... and a pointer to the
// number of bytes handed out.
func countingEntropy() (entropy.Source, *int) {
	var served int
	return entropy.Func(func(n int) ([]byte, error) {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte(served)
			served++
		}
		return b, nil
	}), &served
}

// runCommand runs cmd's RunE with cc attached, returning stdout and stderr.
func runCommand(t *testing.T, cmd *cobra.Command, cc *CommandContext, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
	})

	SetCmdContext(cmd, cc)
	err := cmd.RunE(cmd, args)
	return stdout.String(), stderr.String(), err
}

// setFlags sets flag values on cmd and restores every flag of cmd to its
// default on cleanup.
func setFlags(t *testing.T, cmd *cobra.Command, kv map[string]string) {
	t.Helper()
	t.Cleanup(func() { resetFlags(cmd) })
	for k, v := range kv {
		if err := cmd.Flags().Set(k, v); err != nil {
			t.Fatalf("setting --%s=%s: %v", k, v, err)
		}
	}
}

// resetFlags restores every flag on cmd to its default and clears Changed.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

// withMockPrompts replaces prompt functions for testing and restores on cleanup.
func withMockPrompts(t *testing.T, passphrase string) {
	t.Helper()
	origPW := promptPasswordFn
	origNew := promptNewPassphraseFn
	t.Cleanup(func() {
		promptPasswordFn = origPW
		promptNewPassphraseFn = origNew
	})
	promptPasswordFn = func(_ string) ([]byte, error) {
		return []byte(passphrase), nil
	}
	promptNewPassphraseFn = func() ([]byte, error) {
		return []byte(passphrase), nil
	}
}
