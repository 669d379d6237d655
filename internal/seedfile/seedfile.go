// Package seedfile stores generator seeds in passphrase-encrypted files.
//
// A seed file is an age scrypt envelope around a small YAML document that
// records the seed in hex alongside its length and creation time. Only the
// seed is ever persisted; generator state and counters are not.
package seedfile

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"filippo.io/age"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/tyche/internal/fileutil"
	"github.com/mrz1836/tyche/internal/securemem"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// FormatVersion is the payload version written by Save.
const FormatVersion = 1

// FilePermissions is the mode used for seed files.
const FilePermissions = 0o600

// payload is the plaintext document inside the age envelope.
type payload struct {
	Version int       `yaml:"version"`
	Created time.Time `yaml:"created"`
	Bytes   int       `yaml:"bytes"`
	Seed    string    `yaml:"seed"`
}

// Info describes a loaded seed file without exposing the seed.
type Info struct {
	Version int
	Created time.Time
	Bytes   int
}

// Option configures Save.
type Option func(*options)

type options struct {
	workFactor int
	lock       bool
	now        func() time.Time
}

// WithWorkFactor sets the scrypt log2 work factor, clamped to
// [MinWorkFactor, DefaultWorkFactor]. Load refuses anything above the default.
func WithWorkFactor(logN int) Option {
	return func(o *options) {
		o.workFactor = max(MinWorkFactor, min(logN, DefaultWorkFactor))
	}
}

// WithMemoryLock controls whether the loaded seed is mlocked.
func WithMemoryLock(lock bool) Option {
	return func(o *options) {
		o.lock = lock
	}
}

func buildOptions(opts []Option) options {
	o := options{
		workFactor: DefaultWorkFactor,
		lock:       true,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Save encrypts seed under passphrase and writes it atomically to path.
func Save(path string, seed []byte, passphrase string, opts ...Option) error {
	if len(seed) == 0 {
		return tycheerr.ErrInvalidSeed
	}
	if passphrase == "" {
		return tycheerr.WithSuggestion(
			tycheerr.Wrap(tycheerr.ErrInvalidInput, "passphrase must not be empty"),
			"enter a passphrase to protect the seed file",
		)
	}

	o := buildOptions(opts)

	doc := payload{
		Version: FormatVersion,
		Created: o.now().UTC().Truncate(time.Second),
		Bytes:   len(seed),
		Seed:    hex.EncodeToString(seed),
	}

	plaintext, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encoding seed payload: %w", err)
	}
	defer securemem.Zero(plaintext)

	ciphertext, err := encrypt(plaintext, passphrase, o.workFactor)
	if err != nil {
		return err
	}

	if err := fileutil.WriteAtomic(path, ciphertext, FilePermissions); err != nil {
		return fmt.Errorf("writing seed file: %w", err)
	}
	return nil
}

// Load decrypts the seed file at path. The caller owns the returned buffer
// and must Destroy it.
func Load(path, passphrase string, opts ...Option) (*securemem.Buffer, Info, error) {
	o := buildOptions(opts)

	expanded, err := fileutil.ExpandHome(path)
	if err != nil {
		return nil, Info{}, err
	}

	ciphertext, err := os.ReadFile(expanded) //nolint:gosec // G304: Path supplied by the user on purpose
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Info{}, tycheerr.WithDetails(tycheerr.ErrSeedFileNotFound, map[string]string{"path": path})
		}
		return nil, Info{}, fmt.Errorf("reading seed file: %w", err)
	}

	plaintext, err := decrypt(ciphertext, passphrase)
	if err != nil {
		return nil, Info{}, decryptError(err)
	}
	defer securemem.Zero(plaintext)

	var doc payload
	if err := yaml.Unmarshal(plaintext, &doc); err != nil {
		return nil, Info{}, tycheerr.WithCause(tycheerr.ErrInvalidFormat, err)
	}

	if doc.Version != FormatVersion {
		return nil, Info{}, tycheerr.WithDetails(tycheerr.ErrInvalidFormat, map[string]string{
			"version": strconv.Itoa(doc.Version),
		})
	}

	seed, err := hex.DecodeString(doc.Seed)
	if err != nil {
		return nil, Info{}, tycheerr.WithCause(tycheerr.ErrInvalidFormat, err)
	}
	defer securemem.Zero(seed)

	if len(seed) == 0 || len(seed) != doc.Bytes {
		return nil, Info{}, tycheerr.WithDetails(tycheerr.ErrInvalidFormat, map[string]string{
			"declared": strconv.Itoa(doc.Bytes),
			"actual":   strconv.Itoa(len(seed)),
		})
	}

	var memOpts []securemem.Option
	if !o.lock {
		memOpts = append(memOpts, securemem.WithoutLock())
	}

	info := Info{Version: doc.Version, Created: doc.Created, Bytes: doc.Bytes}
	return securemem.FromSlice(seed, memOpts...), info, nil
}

// decryptError maps age failures onto coded errors. A wrong passphrase and
// a damaged envelope are indistinguishable to the caller.
func decryptError(err error) error {
	var noMatch *age.NoIdentityMatchError
	if errors.As(err, &noMatch) || errors.Is(err, age.ErrIncorrectIdentity) {
		return tycheerr.ErrDecryptionFailed
	}
	return tycheerr.WithCause(tycheerr.ErrDecryptionFailed, err)
}
