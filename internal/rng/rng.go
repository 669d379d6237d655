// Package rng defines the capability shared by every generator in tyche and
// the unbiased sampling used to turn raw bytes into integers.
package rng

import (
	"fmt"
	"io"
	"math/bits"
	"sync"

	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// RandomSource produces raw bytes and integers in a half-open range.
// Implementations are not safe for concurrent use unless wrapped with Locked.
type RandomSource interface {
	// Bytes returns exactly n bytes.
	Bytes(n int) ([]byte, error)

	// IntRange returns a uniformly distributed value in [low, high).
	IntRange(low, high int64) (int64, error)
}

// DrawFunc returns n fresh bytes from some generator.
type DrawFunc func(n int) ([]byte, error)

// Below returns a uniformly distributed value in [0, bound) together with the
// number of candidates it had to reject. Each attempt draws the fewest bytes
// that cover bound-1, masks the excess high bits, and redraws when the
// candidate is >= bound, so no value is favoured by a modulo reduction.
func Below(draw DrawFunc, bound uint64) (uint64, int, error) {
	if bound == 0 {
		return 0, 0, tycheerr.ErrInvalidBound
	}
	if bound == 1 {
		return 0, 0, nil
	}

	width := bits.Len64(bound - 1)
	n := (width + 7) / 8
	mask := uint64(1)<<width - 1

	for rejected := 0; ; rejected++ {
		b, err := draw(n)
		if err != nil {
			return 0, rejected, err
		}
		if len(b) < n {
			return 0, rejected, fmt.Errorf("draw returned %d of %d bytes: %w", len(b), n, io.ErrShortBuffer)
		}

		var v uint64
		for _, c := range b[:n] {
			v = v<<8 | uint64(c)
		}
		v &= mask

		if v < bound {
			return v, rejected, nil
		}
	}
}

// Span returns the number of values in [low, high). It fails with
// ErrInvalidRange when low >= high.
func Span(low, high int64) (uint64, error) {
	if low >= high {
		return 0, tycheerr.WithDetails(tycheerr.ErrInvalidRange, map[string]string{
			"low":  fmt.Sprint(low),
			"high": fmt.Sprint(high),
		})
	}
	return uint64(high) - uint64(low), nil
}

// Offset returns low + v, where v is known to lie within Span(low, high).
func Offset(low int64, v uint64) int64 {
	return int64(uint64(low) + v)
}

// Locked serializes every call to src behind a mutex.
func Locked(src RandomSource) RandomSource {
	return &locked{src: src}
}

type locked struct {
	mu  sync.Mutex
	src RandomSource
}

func (l *locked) Bytes(n int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Bytes(n)
}

func (l *locked) IntRange(low, high int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntRange(low, high)
}

// Reader adapts src to io.Reader. Every Read fills p completely or fails.
func Reader(src RandomSource) io.Reader {
	return reader{src: src}
}

type reader struct {
	src RandomSource
}

func (r reader) Read(p []byte) (int, error) {
	b, err := r.src.Bytes(len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, b), nil
}
