package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/tyche/internal/codec"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// seedFlags holds the mutually exclusive ways to supply a deterministic seed.
type seedFlags struct {
	text     string
	hex      string
	mnemonic string
	file     string
}

// register adds the seed flags to cmd. Exactly one must be given.
func (s *seedFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.text, "seed", "", "seed as a literal string")
	cmd.Flags().StringVar(&s.hex, "seed-hex", "", "seed as hex bytes")
	cmd.Flags().StringVar(&s.mnemonic, "seed-mnemonic", "", "seed as a BIP39 mnemonic phrase")
	cmd.Flags().StringVar(&s.file, "seed-file", "", "seed from an encrypted seed file")

	cmd.MarkFlagsMutuallyExclusive("seed", "seed-hex", "seed-mnemonic", "seed-file")
	cmd.MarkFlagsOneRequired("seed", "seed-hex", "seed-mnemonic", "seed-file")
}

// resolve returns the seed bytes. The caller must zero them after use.
// An empty --seed is indistinguishable from no seed and fails with
// ErrInvalidSeed.
func (s *seedFlags) resolve(cc *CommandContext) ([]byte, error) {
	switch {
	case s.file != "":
		return s.fromFile(cc)
	case s.hex != "":
		b, err := codec.Decode(codec.Hex, s.hex)
		if err != nil {
			return nil, tycheerr.Wrap(err, "--seed-hex")
		}
		return b, nil
	case s.mnemonic != "":
		return codec.DecodeMnemonic(s.mnemonic)
	case s.text != "":
		return []byte(s.text), nil
	default:
		return nil, tycheerr.WithSuggestion(
			tycheerr.ErrInvalidSeed,
			"pass one of --seed, --seed-hex, --seed-mnemonic or --seed-file",
		)
	}
}

func (s *seedFlags) fromFile(cc *CommandContext) ([]byte, error) {
	buf, _, err := loadSeed(cc, s.file)
	if err != nil {
		return nil, err
	}
	defer buf.Destroy()

	return buf.Copy(), nil
}
