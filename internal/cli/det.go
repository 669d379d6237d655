package cli

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tyche/internal/codec"
	"github.com/mrz1836/tyche/internal/drbg"
	"github.com/mrz1836/tyche/internal/output"
	"github.com/mrz1836/tyche/internal/securemem"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// insecureTimeWarning is shown whenever a generator is seeded from the clock.
const insecureTimeWarning = "seeded from wall-clock time: anyone who can guess when this ran can reproduce every value"

// detCmd is the parent command for the deterministic generator.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var detCmd = &cobra.Command{
	Use:     "det",
	Short:   "Deterministic HMAC generator (reproducible, never secret)",
	GroupID: groupGenerators,
	Long: `Draw from the deterministic generator.

Each draw replaces the state with HMAC(state, counter) and returns the new
state, so a seed fully determines the sequence. Pick the mixing hash with
--hash or generator.hash in the config.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var detNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the next raw outputs for a seed",
	Long: `Print the next --count raw outputs of a generator built from the seed.

Each output is one full state block: 32 bytes for 256-bit hashes, 64 for sha512.`,
	Example: `  tyche det next --seed "experiment-7" --count 3
  tyche det next --seed-hex 00ff10 --hash blake2b-256 --encoding base64
  tyche det next --seed-file ~/.tyche/seed.age -o json`,
	RunE: runDetNext,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var detRangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Print integers in [low, high) for a seed",
	Long: `Print --count integers drawn uniformly from [low, high).

Values are rejection sampled from the generator output, so no value is
favoured over another.`,
	Example: `  tyche det range --seed "dice" --low 1 --high 7 --count 10
  tyche det range --seed-mnemonic "legal winner thank year wave sausage worth useful legal winner thank yellow" --high 100`,
	RunE: runDetRange,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var detTimeCmd = &cobra.Command{
	Use:   "time",
	Short: "Seed from the clock to show how predictable that is (INSECURE)",
	Long: `Build a generator from the current Unix second, or --at, and draw from it.

The seed has at most a few million plausible values per month, so the output
can be replayed by anyone who tries each second. Pair with 'tyche det crack'.
With --high the command prints integers, otherwise raw outputs.`,
	Example: `  tyche det time
  tyche det time --at 1700000000 --count 2
  tyche det time --low 1 --high 7 --count 5`,
	RunE: runDetTime,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var detCrackCmd = &cobra.Command{
	Use:   "crack <first-output-hex>",
	Short: "Recover the second a time-seeded generator was created",
	Long: `Search the seconds around --around (default now) for the time seed whose
first output matches the given hex block.

Finding it means every later output of that generator is known.`,
	Example: `  tyche det crack "$(tyche det time --at 1700000000 -o text)" --around 1700000100
  tyche det crack 9f86d081884c7d65... --window 24h --hash sha512`,
	Args: cobra.ExactArgs(1),
	RunE: runDetCrack,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var detHashesCmd = &cobra.Command{
	Use:     "hashes",
	Short:   "List the supported mixing hashes",
	Long:    `List every hash the deterministic generator can mix with, and its state size.`,
	Example: `  tyche det hashes`,
	Args:    cobra.NoArgs,
	RunE:    runDetHashes,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	detCount    int
	detHash     string
	detEncoding string
	detLow      int64
	detHigh     int64
	detAt       int64
	detAround   int64
	detWindow   time.Duration

	detNextSeed  seedFlags
	detRangeSeed seedFlags
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(detCmd)
	detCmd.AddCommand(detNextCmd, detRangeCmd, detTimeCmd, detCrackCmd, detHashesCmd)

	for _, c := range []*cobra.Command{detNextCmd, detRangeCmd, detTimeCmd, detCrackCmd} {
		c.Flags().StringVar(&detHash, "hash", "", "mixing hash (default from config: sha256)")
	}
	for _, c := range []*cobra.Command{detNextCmd, detRangeCmd, detTimeCmd} {
		c.Flags().IntVarP(&detCount, "count", "c", 0, "number of values (default from config)")
	}
	for _, c := range []*cobra.Command{detNextCmd, detTimeCmd} {
		c.Flags().StringVarP(&detEncoding, "encoding", "e", "", "output encoding: hex, base64, mnemonic")
	}

	detNextSeed.register(detNextCmd)
	detRangeSeed.register(detRangeCmd)

	detRangeCmd.Flags().Int64Var(&detLow, "low", 0, "inclusive lower bound")
	detRangeCmd.Flags().Int64Var(&detHigh, "high", 0, "exclusive upper bound (required)")
	_ = detRangeCmd.MarkFlagRequired("high")

	detTimeCmd.Flags().Int64Var(&detAt, "at", 0, "Unix seconds to seed from (default: now)")
	detTimeCmd.Flags().Int64Var(&detLow, "low", 0, "inclusive lower bound")
	detTimeCmd.Flags().Int64Var(&detHigh, "high", 0, "exclusive upper bound; prints integers when set")

	detCrackCmd.Flags().Int64Var(&detAround, "around", 0, "Unix seconds to center the search on (default: now)")
	detCrackCmd.Flags().DurationVar(&detWindow, "window", time.Hour, "how far either side of --around to search")
}

// bytesResult is the JSON shape of raw-output commands.
type bytesResult struct {
	Generator string   `json:"generator"`
	Hash      string   `json:"hash,omitempty"`
	Encoding  string   `json:"encoding"`
	Insecure  bool     `json:"insecure,omitempty"`
	SeedTime  int64    `json:"seed_time,omitempty"`
	Counter   uint64   `json:"counter,omitempty"`
	Values    []string `json:"values"`
}

// intResult is the JSON shape of integer commands.
type intResult struct {
	Generator string  `json:"generator"`
	Hash      string  `json:"hash,omitempty"`
	Insecure  bool    `json:"insecure,omitempty"`
	SeedTime  int64   `json:"seed_time,omitempty"`
	Low       int64   `json:"low"`
	High      int64   `json:"high"`
	Counter   uint64  `json:"counter,omitempty"`
	Values    []int64 `json:"values"`
}

func (c *CommandContext) count(flag int) int {
	if flag > 0 {
		return flag
	}
	return c.Cfg.Generator.Count
}

func (c *CommandContext) encoding(flag string) (codec.Encoding, error) {
	if flag != "" {
		return codec.ParseEncoding(flag)
	}
	return codec.ParseEncoding(c.Cfg.Generator.Encoding)
}

func runDetNext(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	seed, err := detNextSeed.resolve(cc)
	if err != nil {
		return err
	}
	defer securemem.Zero(seed)

	g, err := drbg.New(seed, cc.drbgOptions(detHash)...)
	if err != nil {
		return err
	}
	defer g.Destroy()

	cc.Log.DebugAttrs("deterministic generator ready",
		slog.String("hash", g.Hash()),
		slog.Int("seed_bytes", len(seed)),
	)

	return writeBlocks(cmd, cc, g, bytesResult{Generator: "deterministic", Hash: g.Hash()})
}

// writeBlocks draws count state blocks from g and writes them.
func writeBlocks(cmd *cobra.Command, cc *CommandContext, g *drbg.Generator, res bytesResult) error {
	enc, err := cc.encoding(detEncoding)
	if err != nil {
		return err
	}
	res.Encoding = string(enc)

	for range cc.count(detCount) {
		block, err := g.Next()
		if err != nil {
			return err
		}
		s, err := codec.Encode(enc, block)
		securemem.Zero(block)
		if err != nil {
			return err
		}
		res.Values = append(res.Values, s)
	}
	res.Counter = g.Counter()

	return writeResult(cmd.OutOrStdout(), cc, res, res.Values)
}

func runDetRange(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	seed, err := detRangeSeed.resolve(cc)
	if err != nil {
		return err
	}
	defer securemem.Zero(seed)

	g, err := drbg.New(seed, cc.drbgOptions(detHash)...)
	if err != nil {
		return err
	}
	defer g.Destroy()

	return writeInts(cmd, cc, g, intResult{Generator: "deterministic", Hash: g.Hash()})
}

// writeInts draws count integers in [detLow, detHigh) from g and writes them.
func writeInts(cmd *cobra.Command, cc *CommandContext, g *drbg.Generator, res intResult) error {
	res.Low, res.High = detLow, detHigh

	lines := make([]string, 0, cc.count(detCount))
	for range cc.count(detCount) {
		v, err := g.NextInRange(detLow, detHigh)
		if err != nil {
			return rangeError(err, detLow, detHigh)
		}
		res.Values = append(res.Values, v)
		lines = append(lines, strconv.FormatInt(v, 10))
	}
	res.Counter = g.Counter()

	return writeResult(cmd.OutOrStdout(), cc, res, lines)
}

// rangeError attaches the offending bounds to ErrInvalidRange.
func rangeError(err error, low, high int64) error {
	if !tycheerr.Is(err, tycheerr.ErrInvalidRange) {
		return err
	}
	err = tycheerr.WithDetails(err, map[string]string{
		"low":  strconv.FormatInt(low, 10),
		"high": strconv.FormatInt(high, 10),
	})
	return tycheerr.WithSuggestion(err, "pass a --high greater than --low")
}

func runDetTime(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	at := cc.now()
	if cmd.Flags().Changed("at") {
		at = time.Unix(detAt, 0)
	}

	g, err := drbg.NewFromTime(at, cc.drbgOptions(detHash)...)
	if err != nil {
		return err
	}
	defer g.Destroy()

	cc.notifier(cmd.ErrOrStderr()).Warn(insecureTimeWarning)
	cc.Log.DebugAttrs("insecure time-seeded generator",
		slog.Int64("unix", at.Unix()),
		slog.String("hash", g.Hash()),
	)

	if cmd.Flags().Changed("high") {
		return writeInts(cmd, cc, g, intResult{
			Generator: "deterministic",
			Hash:      g.Hash(),
			Insecure:  g.Insecure(),
			SeedTime:  at.Unix(),
		})
	}
	return writeBlocks(cmd, cc, g, bytesResult{
		Generator: "deterministic",
		Hash:      g.Hash(),
		Insecure:  g.Insecure(),
		SeedTime:  at.Unix(),
	})
}

// crackResult is the JSON shape of det crack.
type crackResult struct {
	SeedTime int64  `json:"seed_time"`
	UTC      string `json:"utc"`
	Hash     string `json:"hash"`
}

func runDetCrack(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	first, err := codec.Decode(codec.Hex, args[0])
	if err != nil {
		return tycheerr.WithSuggestion(err, "pass the first output of 'tyche det time' in hex")
	}

	around := cc.now()
	if cmd.Flags().Changed("around") {
		around = time.Unix(detAround, 0)
	}

	hash := cc.hashName(detHash)
	found, err := drbg.RecoverTime(first, around, detWindow, drbg.WithHash(hash))
	if err != nil {
		if tycheerr.Is(err, tycheerr.ErrNotFound) {
			return tycheerr.WithSuggestion(err, "widen --window, move --around, or check --hash")
		}
		return err
	}

	cc.Log.DebugAttrs("time seed recovered", slog.Int64("unix", found.Unix()))

	res := crackResult{SeedTime: found.Unix(), UTC: found.UTC().Format(time.RFC3339), Hash: hash}
	return writeResult(cmd.OutOrStdout(), cc, res, []string{
		"seed time: " + strconv.FormatInt(res.SeedTime, 10) + " (" + res.UTC + ")",
	})
}

// hashInfo is one row of det hashes.
type hashInfo struct {
	Name      string `json:"name"`
	StateSize int    `json:"state_bytes"`
	Default   bool   `json:"default"`
}

func runDetHashes(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	names := drbg.Hashes()
	infos := make([]hashInfo, 0, len(names))
	table := output.NewTable("HASH", "STATE BYTES", "DEFAULT")
	table.AlignRight(1)

	for _, name := range names {
		size, err := drbg.DigestSize(name)
		if err != nil {
			return err
		}
		info := hashInfo{Name: name, StateSize: size, Default: name == cc.Cfg.Generator.Hash}
		infos = append(infos, info)

		mark := ""
		if info.Default {
			mark = "*"
		}
		table.AddRow(name, strconv.Itoa(size), mark)
	}

	if cc.isJSON() {
		return output.WriteJSON(cmd.OutOrStdout(), infos)
	}
	return table.Render(cmd.OutOrStdout())
}
