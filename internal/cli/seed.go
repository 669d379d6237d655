package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tyche/internal/codec"
	"github.com/mrz1836/tyche/internal/fileutil"
	"github.com/mrz1836/tyche/internal/securemem"
	"github.com/mrz1836/tyche/internal/seedfile"
	"github.com/mrz1836/tyche/internal/shamir"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// seedCmd is the parent command for encrypted seed files.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var seedCmd = &cobra.Command{
	Use:     "seed",
	Short:   "Create and read encrypted seed files",
	GroupID: groupSeeds,
	Long: `Manage seed files for the deterministic generator.

A seed file holds secure random bytes encrypted with age under a passphrase.
Pass it to any det command with --seed-file to replay the same sequence.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var seedNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a secure seed and save it encrypted",
	Long: `Draw --bytes bytes from the secure generator and save them to --out,
encrypted with a passphrase you are prompted for twice.

The file is written atomically with 0600 permissions.`,
	Example: `  tyche seed new
  tyche seed new --out ~/sim/seed.age --bytes 64`,
	Args: cobra.NoArgs,
	RunE: runSeedNew,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var seedShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Decrypt a seed file and print the seed",
	Long: `Decrypt --in with a prompted passphrase and print the seed.

Anyone who sees the output can reproduce every value derived from it.`,
	Example: `  tyche seed show
  tyche seed show --in ~/sim/seed.age --encoding mnemonic -o json`,
	Args: cobra.NoArgs,
	RunE: runSeedShow,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var seedSplitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a seed file into Shamir shares",
	Long: `Decrypt --in and split the seed into --shares text shares, any --threshold
of which recover it with 'tyche seed combine'.

The random polynomial coefficients come from the secure generator. Fewer than
--threshold shares reveal nothing about the seed.`,
	Example: `  tyche seed split --shares 5 --threshold 3
  tyche seed split --in ~/sim/seed.age --shares 3 --threshold 2 -o json`,
	Args: cobra.NoArgs,
	RunE: runSeedSplit,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var seedCombineCmd = &cobra.Command{
	Use:   "combine <share>...",
	Short: "Rebuild a seed file from Shamir shares",
	Long: `Recover a seed from shares printed by 'tyche seed split' and save it to
--out, encrypted under a new passphrase.

Extra shares beyond the threshold are ignored.`,
	Example: `  tyche seed combine tyche-v1-3-1-9f... tyche-v1-3-4-02... tyche-v1-3-5-c7...
  tyche seed combine --out restored.age --force "$SHARE_A" "$SHARE_B"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSeedCombine,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	seedOut       string
	seedIn        string
	seedBytes     int
	seedEncoding  string
	seedForce     bool
	seedShares    int
	seedThreshold int
)

const (
	defaultSeedBytes = 32
	defaultSeedFile  = "seed.age"
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.AddCommand(seedNewCmd, seedShowCmd, seedSplitCmd, seedCombineCmd)

	seedNewCmd.Flags().StringVar(&seedOut, "out", "", "seed file to write (default: <home>/seed.age)")
	seedNewCmd.Flags().IntVar(&seedBytes, "bytes", defaultSeedBytes, "seed length in bytes")
	seedNewCmd.Flags().BoolVar(&seedForce, "force", false, "overwrite an existing seed file")

	seedShowCmd.Flags().StringVar(&seedIn, "in", "", "seed file to read (default: <home>/seed.age)")
	seedShowCmd.Flags().StringVarP(&seedEncoding, "encoding", "e", "", "output encoding: hex, base64, mnemonic")

	seedSplitCmd.Flags().StringVar(&seedIn, "in", "", "seed file to read (default: <home>/seed.age)")
	seedSplitCmd.Flags().IntVar(&seedShares, "shares", 0, "number of shares to create (required)")
	seedSplitCmd.Flags().IntVar(&seedThreshold, "threshold", 0, "shares needed to recover the seed (required)")
	_ = seedSplitCmd.MarkFlagRequired("shares")
	_ = seedSplitCmd.MarkFlagRequired("threshold")

	seedCombineCmd.Flags().StringVar(&seedOut, "out", "", "seed file to write (default: <home>/seed.age)")
	seedCombineCmd.Flags().BoolVar(&seedForce, "force", false, "overwrite an existing seed file")
}

// seedPath returns flag, or the default seed file under the home directory.
func seedPath(cc *CommandContext, flag string) string {
	if flag != "" {
		return flag
	}
	return filepath.Join(cc.Cfg.Home, defaultSeedFile)
}

func fileExists(path string) bool {
	expanded, err := fileutil.ExpandHome(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(expanded)
	return err == nil
}

func runSeedNew(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	path := seedPath(cc, seedOut)

	if seedBytes < 1 {
		return tycheerr.WithSuggestion(
			tycheerr.WithDetails(tycheerr.ErrInvalidLength, map[string]string{"bytes": strconv.Itoa(seedBytes)}),
			"pass --bytes 16 or more",
		)
	}
	if err := checkOverwrite(path); err != nil {
		return err
	}

	seed, err := cc.newSecure().Next(seedBytes)
	if err != nil {
		return entropyFailure(cc, err)
	}
	defer securemem.Zero(seed)

	return saveSeed(cmd, cc, path, seed)
}

func checkOverwrite(path string) error {
	if fileExists(path) && !seedForce {
		return tycheerr.WithSuggestion(
			tycheerr.WithDetails(tycheerr.ErrInvalidInput, map[string]string{"path": path}),
			"seed file already exists; use --force to overwrite",
		)
	}
	return nil
}

// saveSeed prompts for a new passphrase and writes seed to path.
func saveSeed(cmd *cobra.Command, cc *CommandContext, path string, seed []byte) error {
	passphrase, err := promptNewPassphraseFn()
	if err != nil {
		return err
	}
	defer securemem.Zero(passphrase)

	err = seedfile.Save(path, seed, string(passphrase),
		seedfile.WithWorkFactor(cc.Cfg.Security.ScryptWorkFactor),
		seedfile.WithMemoryLock(cc.Cfg.Security.MemoryLock),
	)
	if err != nil {
		return err
	}

	cc.Log.DebugAttrs("seed file written",
		slog.String("path", path),
		slog.Int("bytes", len(seed)),
	)

	if cc.isJSON() {
		return writeResult(cmd.OutOrStdout(), cc, map[string]any{"path": path, "bytes": len(seed)}, nil)
	}
	cc.notifier(cmd.OutOrStdout()).Successf("Wrote %d-byte seed to %s", len(seed), path)
	return nil
}

// seedShowResult is the JSON shape of seed show.
type seedShowResult struct {
	Path     string `json:"path"`
	Created  string `json:"created"`
	Bytes    int    `json:"bytes"`
	Encoding string `json:"encoding"`
	Seed     string `json:"seed"`
}

func runSeedShow(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	path := seedPath(cc, seedIn)

	enc, err := cc.encoding(seedEncoding)
	if err != nil {
		return err
	}

	buf, info, err := loadSeed(cc, path)
	if err != nil {
		return err
	}
	defer buf.Destroy()

	encoded, err := codec.Encode(enc, buf.Bytes())
	if err != nil {
		return err
	}

	res := seedShowResult{
		Path:     path,
		Created:  info.Created.UTC().Format(time.RFC3339),
		Bytes:    info.Bytes,
		Encoding: string(enc),
		Seed:     encoded,
	}
	return writeResult(cmd.OutOrStdout(), cc, res, []string{encoded})
}

// loadSeed prompts for the passphrase of path and decrypts it.
func loadSeed(cc *CommandContext, path string) (*securemem.Buffer, seedfile.Info, error) {
	passphrase, err := promptPasswordFn("Seed file passphrase: ")
	if err != nil {
		return nil, seedfile.Info{}, err
	}
	defer securemem.Zero(passphrase)

	return seedfile.Load(path, string(passphrase),
		seedfile.WithMemoryLock(cc.Cfg.Security.MemoryLock))
}

// splitResult is the JSON shape of seed split.
type splitResult struct {
	Threshold int      `json:"threshold"`
	Shares    []string `json:"shares"`
}

func runSeedSplit(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	buf, _, err := loadSeed(cc, seedPath(cc, seedIn))
	if err != nil {
		return err
	}
	defer buf.Destroy()

	shares, err := shamir.Split(buf.Bytes(), seedShares, seedThreshold, cc.newSecure())
	if err != nil {
		return entropyFailure(cc, err)
	}

	res := splitResult{Threshold: seedThreshold, Shares: make([]string, len(shares))}
	for i, s := range shares {
		res.Shares[i] = s.String()
		securemem.Zero(s.Value)
	}

	cc.Log.DebugAttrs("seed split",
		slog.Int("shares", seedShares),
		slog.Int("threshold", seedThreshold),
	)
	if !cc.isJSON() {
		cc.notifier(cmd.ErrOrStderr()).Warnf("store each share separately; any %d of them recover the seed", seedThreshold)
	}
	return writeResult(cmd.OutOrStdout(), cc, res, res.Shares)
}

func runSeedCombine(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	path := seedPath(cc, seedOut)

	if err := checkOverwrite(path); err != nil {
		return err
	}

	seed, err := shamir.CombineText(args)
	if err != nil {
		return err
	}
	defer securemem.Zero(seed)

	return saveSeed(cmd, cc, path, seed)
}
