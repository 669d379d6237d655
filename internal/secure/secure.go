// Package secure implements the generator that never holds a seed: every
// request is served straight from an entropy.Source.
package secure

import (
	"strconv"

	"github.com/mrz1836/tyche/internal/entropy"
	"github.com/mrz1836/tyche/internal/metrics"
	"github.com/mrz1836/tyche/internal/rng"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// Generator draws from an injected entropy source on every call. It keeps no
// state derived from earlier output, so there is nothing to predict and
// nothing to leak. Not safe for concurrent use unless the source is; wrap it
// with rng.Locked when sharing.
type Generator struct {
	src     entropy.Source
	metrics *metrics.Metrics
}

var _ rng.RandomSource = (*Generator)(nil)

// Option configures a Generator.
type Option func(*Generator)

// WithMetrics records each draw and each rejected sample into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// New returns a Generator reading from src. A nil src uses entropy.OS().
func New(src entropy.Source, opts ...Option) *Generator {
	if src == nil {
		src = entropy.OS()
	}
	g := &Generator{src: src}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns n bytes from the entropy source. It fails with
// ErrEntropyUnavailable rather than return fewer or placeholder bytes.
func (g *Generator) Next(n int) ([]byte, error) {
	if n < 0 {
		return nil, tycheerr.ErrInvalidLength
	}
	if g.src == nil {
		return nil, tycheerr.ErrNotInitialized
	}
	if n == 0 {
		return []byte{}, nil
	}

	b, err := g.src.Read(n)
	if err != nil {
		if !tycheerr.Is(err, tycheerr.ErrEntropyUnavailable) {
			err = tycheerr.WithCause(tycheerr.ErrEntropyUnavailable, err)
		}
		return nil, err
	}
	if len(b) != n {
		return nil, tycheerr.WithDetails(tycheerr.ErrEntropyUnavailable, map[string]string{
			"requested": strconv.Itoa(n),
			"received":  strconv.Itoa(len(b)),
		})
	}

	if g.metrics != nil {
		g.metrics.RecordSecureDraw()
	}
	return b, nil
}

// NextBelow returns a uniformly distributed value in [0, bound). It fails
// with ErrInvalidBound when bound <= 0.
func (g *Generator) NextBelow(bound int64) (int64, error) {
	if bound <= 0 {
		return 0, tycheerr.WithDetails(tycheerr.ErrInvalidBound, map[string]string{"bound": strconv.FormatInt(bound, 10)})
	}

	v, rejected, err := rng.Below(g.Next, uint64(bound))
	g.recordRejections(rejected)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// Bytes implements rng.RandomSource.
func (g *Generator) Bytes(n int) ([]byte, error) {
	return g.Next(n)
}

// IntRange implements rng.RandomSource. It fails with ErrInvalidRange when
// low >= high.
func (g *Generator) IntRange(low, high int64) (int64, error) {
	span, err := rng.Span(low, high)
	if err != nil {
		return 0, err
	}

	v, rejected, err := rng.Below(g.Next, span)
	g.recordRejections(rejected)
	if err != nil {
		return 0, err
	}
	return rng.Offset(low, v), nil
}

func (g *Generator) recordRejections(n int) {
	if g.metrics == nil {
		return
	}
	for i := 0; i < n; i++ {
		g.metrics.RecordRejection()
	}
}
