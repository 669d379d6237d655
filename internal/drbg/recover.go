package drbg

import (
	"crypto/hmac"
	"time"

	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// MaxRecoverWindow bounds how far either side of a guess RecoverTime searches.
const MaxRecoverWindow = 7 * 24 * time.Hour

// RecoverTime finds the second whose time seed makes a generator produce
// first as its first output. It tries around, then one second either side,
// then two, and so on out to window. opts must select the same hash the
// original generator used.
//
// A match means every later output of that generator is known too.
func RecoverTime(first []byte, around time.Time, window time.Duration, opts ...Option) (time.Time, error) {
	if len(first) == 0 {
		return time.Time{}, tycheerr.WithDetails(tycheerr.ErrInvalidInput, map[string]string{"output": "empty"})
	}
	if window < 0 || window > MaxRecoverWindow {
		return time.Time{}, tycheerr.WithDetails(tycheerr.ErrInvalidInput, map[string]string{
			"window": window.String(),
			"max":    MaxRecoverWindow.String(),
		})
	}

	// Candidates are thrown away immediately; locking each one buys nothing.
	opts = append(opts[:len(opts):len(opts)], WithMemoryLock(false))

	center := around.Truncate(time.Second)
	steps := int64(window / time.Second)

	for i := int64(0); i <= steps; i++ {
		for _, offset := range offsets(i) {
			at := center.Add(time.Duration(offset) * time.Second)
			ok, err := producesFirst(at, first, opts)
			if err != nil {
				return time.Time{}, err
			}
			if ok {
				return at, nil
			}
		}
	}

	return time.Time{}, tycheerr.WithDetails(tycheerr.ErrNotFound, map[string]string{
		"around": center.UTC().Format(time.RFC3339),
		"window": window.String(),
	})
}

func offsets(i int64) []int64 {
	if i == 0 {
		return []int64{0}
	}
	return []int64{-i, i}
}

func producesFirst(at time.Time, first []byte, opts []Option) (bool, error) {
	g, err := NewFromTime(at, opts...)
	if err != nil {
		return false, err
	}
	defer g.Destroy()

	out, err := g.Next()
	if err != nil {
		return false, err
	}
	return hmac.Equal(out, first), nil
}
