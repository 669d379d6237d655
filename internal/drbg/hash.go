package drbg

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// DefaultHash is the mixing hash used when no option selects another.
const DefaultHash = "sha256"

// maxHashTypoDistance bounds how far a misspelled hash name may be from a
// known one before no suggestion is offered.
const maxHashTypoDistance = 3

//nolint:gochecknoglobals // Immutable registry of supported HMAC hashes
var hashes = map[string]func() hash.Hash{
	"sha256":      sha256.New,
	"sha512":      sha512.New,
	"sha3-256":    sha3.New256,
	"keccak256":   sha3.NewLegacyKeccak256,
	"blake2b-256": newBlake2b256,
}

func newBlake2b256() hash.Hash {
	// Unkeyed construction cannot fail
	h, _ := blake2b.New256(nil)
	return h
}

// Hashes returns the supported mixing hash names, sorted.
func Hashes() []string {
	names := make([]string, 0, len(hashes))
	for name := range hashes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupHash resolves a hash name, case-insensitively.
func lookupHash(name string) (func() hash.Hash, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if fn, ok := hashes[name]; ok {
		return fn, nil
	}

	err := tycheerr.WithDetails(tycheerr.ErrUnknownHash, map[string]string{"hash": name})
	if s := SuggestHash(name); s != "" {
		return nil, tycheerr.WithSuggestion(err, "did you mean '"+s+"'?")
	}
	return nil, tycheerr.WithSuggestion(err, "supported: "+strings.Join(Hashes(), ", "))
}

// SuggestHash returns the closest supported hash name, or "" if none is close.
func SuggestHash(input string) string {
	input = strings.ToLower(input)
	minDist := math.MaxInt
	var suggestion string

	for _, name := range Hashes() {
		dist := levenshtein.ComputeDistance(input, name)
		if dist < minDist {
			minDist = dist
			suggestion = name
		}
	}

	if minDist <= maxHashTypoDistance {
		return suggestion
	}
	return ""
}

// CheckHash reports whether name selects a supported mixing hash.
func CheckHash(name string) error {
	_, err := lookupHash(name)
	return err
}

// DigestSize returns the output size in bytes of the named hash, which is
// also the state size of a generator using it.
func DigestSize(name string) (int, error) {
	fn, err := lookupHash(name)
	if err != nil {
		return 0, err
	}
	return fn().Size(), nil
}
