// Package codec renders generator output as text and parses seeds back.
package codec

import (
	"encoding/base64"
	"encoding/hex"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// Encoding names a text representation of raw bytes.
type Encoding string

// Supported encodings.
const (
	Hex      Encoding = "hex"
	Base64   Encoding = "base64"
	Mnemonic Encoding = "mnemonic"
)

// Encodings lists every supported encoding.
//
//nolint:gochecknoglobals // Immutable list of supported encodings
var Encodings = []Encoding{Hex, Base64, Mnemonic}

// maxNameTypoDistance bounds how far a misspelled encoding name may be from
// a known one before no suggestion is offered.
const maxNameTypoDistance = 2

// ParseEncoding resolves an encoding name, case-insensitively. Unknown names
// fail with ErrUnknownEncoding and a suggestion when one is close.
func ParseEncoding(s string) (Encoding, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range Encodings {
		if string(e) == s {
			return e, nil
		}
	}

	err := tycheerr.WithDetails(tycheerr.ErrUnknownEncoding, map[string]string{"encoding": s})
	if suggestion := suggestEncoding(s); suggestion != "" {
		return "", tycheerr.WithSuggestion(err, "did you mean '"+suggestion+"'?")
	}
	return "", tycheerr.WithSuggestion(err, "supported: hex, base64, mnemonic")
}

func suggestEncoding(s string) string {
	minDist := math.MaxInt
	var suggestion string
	for _, e := range Encodings {
		if dist := levenshtein.ComputeDistance(s, string(e)); dist < minDist {
			minDist = dist
			suggestion = string(e)
		}
	}
	if minDist <= maxNameTypoDistance {
		return suggestion
	}
	return ""
}

// Encode renders b in the given encoding.
func Encode(e Encoding, b []byte) (string, error) {
	switch e {
	case Hex:
		return hex.EncodeToString(b), nil
	case Base64:
		return base64.StdEncoding.EncodeToString(b), nil
	case Mnemonic:
		return EncodeMnemonic(b)
	default:
		return "", tycheerr.WithDetails(tycheerr.ErrUnknownEncoding, map[string]string{"encoding": string(e)})
	}
}

// Decode parses s in the given encoding.
func Decode(e Encoding, s string) ([]byte, error) {
	switch e {
	case Hex:
		b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
		if err != nil {
			return nil, tycheerr.WithCause(tycheerr.ErrInvalidFormat, err)
		}
		return b, nil
	case Base64:
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, tycheerr.WithCause(tycheerr.ErrInvalidFormat, err)
		}
		return b, nil
	case Mnemonic:
		return DecodeMnemonic(s)
	default:
		return nil, tycheerr.WithDetails(tycheerr.ErrUnknownEncoding, map[string]string{"encoding": string(e)})
	}
}
