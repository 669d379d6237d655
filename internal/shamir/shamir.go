// Package shamir splits a seed into shares with Shamir's Secret Sharing over
// GF(2^8). Any threshold-sized subset of the shares recovers the seed; fewer
// reveal nothing about it.
//
// Shares are text of the form "tyche-v1-<threshold>-<index>-<hex>".
package shamir

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/mrz1836/tyche/internal/rng"
	"github.com/mrz1836/tyche/internal/securemem"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

const (
	sharePrefix  = "tyche"
	shareVersion = "v1"

	// MinThreshold is the smallest useful threshold.
	MinThreshold = 2

	// MaxShares is the number of non-zero x coordinates in GF(2^8).
	MaxShares = 255
)

// Share is one point on every byte's polynomial.
type Share struct {
	Threshold int
	Index     byte
	Value     []byte
}

// String renders s in the text share format.
func (s Share) String() string {
	return fmt.Sprintf("%s-%s-%d-%d-%s", sharePrefix, shareVersion, s.Threshold, s.Index, hex.EncodeToString(s.Value))
}

// Split divides secret into n shares, any k of which recover it. The random
// polynomial coefficients are drawn from src, which must be unpredictable:
// a deterministic source makes the shares reproducible by anyone holding its
// seed.
func Split(secret []byte, n, k int, src rng.RandomSource) ([]Share, error) {
	if err := checkParams(len(secret), n, k); err != nil {
		return nil, err
	}

	// One polynomial per secret byte, constant term first
	random, err := src.Bytes(len(secret) * (k - 1))
	if err != nil {
		return nil, err
	}
	defer securemem.Zero(random)

	coeffs := make([]byte, k)
	defer securemem.Zero(coeffs)

	shares := make([]Share, n)
	for i := range shares {
		shares[i] = Share{Threshold: k, Index: byte(i + 1), Value: make([]byte, len(secret))}
	}

	for b, secretByte := range secret {
		coeffs[0] = secretByte
		copy(coeffs[1:], random[b*(k-1):(b+1)*(k-1)])
		for i := range shares {
			shares[i].Value[b] = eval(coeffs, shares[i].Index)
		}
	}

	return shares, nil
}

func checkParams(secretLen, n, k int) error {
	details := map[string]string{"shares": strconv.Itoa(n), "threshold": strconv.Itoa(k)}
	switch {
	case secretLen == 0:
		return tycheerr.ErrInvalidSeed
	case k < MinThreshold:
		return tycheerr.WithSuggestion(tycheerr.WithDetails(tycheerr.ErrInvalidInput, details),
			"threshold must be at least 2")
	case n < k:
		return tycheerr.WithSuggestion(tycheerr.WithDetails(tycheerr.ErrInvalidInput, details),
			"shares must be at least the threshold")
	case n > MaxShares:
		return tycheerr.WithSuggestion(tycheerr.WithDetails(tycheerr.ErrInvalidInput, details),
			"at most 255 shares are possible")
	}
	return nil
}

// Parse reads a share from its text form.
func Parse(text string) (Share, error) {
	text = strings.TrimSpace(text)
	invalid := func(reason string) error {
		return tycheerr.WithSuggestion(
			tycheerr.WithDetails(tycheerr.ErrInvalidShare, map[string]string{"share": abbreviate(text)}),
			reason,
		)
	}

	parts := strings.Split(text, "-")
	if len(parts) != 5 {
		return Share{}, invalid("expected tyche-v1-<threshold>-<index>-<hex>")
	}
	if parts[0] != sharePrefix || parts[1] != shareVersion {
		return Share{}, invalid("unsupported share version " + parts[0] + "-" + parts[1])
	}

	k, err := strconv.Atoi(parts[2])
	if err != nil || k < MinThreshold || k > MaxShares {
		return Share{}, invalid("threshold must be from 2 to 255")
	}
	idx, err := strconv.Atoi(parts[3])
	if err != nil || idx < 1 || idx > MaxShares {
		return Share{}, invalid("index must be from 1 to 255")
	}
	value, err := hex.DecodeString(parts[4])
	if err != nil || len(value) == 0 {
		return Share{}, invalid("share value must be non-empty hex")
	}

	return Share{Threshold: k, Index: byte(idx), Value: value}, nil
}

// Combine recovers the secret from shares. Shares repeating an index are
// ignored; mixing thresholds or lengths is an error.
func Combine(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, tycheerr.ErrNotEnoughShares
	}

	k, size := shares[0].Threshold, len(shares[0].Value)
	seen := make(map[byte]bool, len(shares))
	points := make([]Share, 0, k)
	for _, s := range shares {
		if s.Threshold != k || len(s.Value) != size {
			return nil, tycheerr.WithSuggestion(tycheerr.ErrInvalidShare, "shares come from different splits")
		}
		if s.Index == 0 || seen[s.Index] {
			continue
		}
		seen[s.Index] = true
		points = append(points, s)
		if len(points) == k {
			break
		}
	}

	if len(points) < k {
		return nil, tycheerr.WithDetails(tycheerr.ErrNotEnoughShares, map[string]string{
			"have": strconv.Itoa(len(points)),
			"need": strconv.Itoa(k),
		})
	}

	// Lagrange basis at x = 0 depends only on the indices
	basis := make([]byte, len(points))
	for i, pi := range points {
		w := byte(1)
		for j, pj := range points {
			if i != j {
				w = mul(w, div(pj.Index, add(pj.Index, pi.Index)))
			}
		}
		basis[i] = w
	}

	secret := make([]byte, size)
	for b := range secret {
		var v byte
		for i, p := range points {
			v = add(v, mul(p.Value[b], basis[i]))
		}
		secret[b] = v
	}
	return secret, nil
}

// CombineText parses and combines text shares.
func CombineText(texts []string) ([]byte, error) {
	shares := make([]Share, 0, len(texts))
	for _, t := range texts {
		s, err := Parse(t)
		if err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return Combine(shares)
}

func abbreviate(s string) string {
	const keep = 24
	if len(s) <= keep {
		return s
	}
	return s[:keep] + "..."
}
