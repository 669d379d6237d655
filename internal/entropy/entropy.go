// Package entropy defines the source of unpredictable bytes consumed by the
// secure generator, and the adapters that produce one.
package entropy

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/mrz1836/tyche/internal/metrics"
	"github.com/mrz1836/tyche/internal/securemem"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// Reader is the operating system's cryptographically secure random source.
// It wraps crypto/rand.Reader for consistency and testability.
//
//nolint:gochecknoglobals // Package-level RNG is required for testability
var Reader io.Reader = rand.Reader

// Source supplies unpredictable bytes. Read returns exactly n bytes or fails
// with an error matching errors.ErrEntropyUnavailable.
type Source interface {
	Read(n int) ([]byte, error)
}

// Func adapts a plain function to Source.
type Func func(n int) ([]byte, error)

// Read calls f(n).
func (f Func) Read(n int) ([]byte, error) {
	return f(n)
}

type readerSource struct {
	r io.Reader
}

// OS returns the source backed by the package Reader. The Reader is looked up
// on every call, so tests that swap it affect existing sources.
func OS() Source {
	return readerSource{}
}

// FromReader returns a Source that fills requests from r with io.ReadFull.
func FromReader(r io.Reader) Source {
	return readerSource{r: r}
}

func (s readerSource) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, tycheerr.ErrInvalidLength
	}

	r := s.r
	if r == nil {
		r = Reader
	}
	if r == nil {
		return nil, tycheerr.ErrEntropyUnavailable
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		// A partial fill is never handed out
		securemem.Zero(b)
		return nil, tycheerr.WithCause(tycheerr.ErrEntropyUnavailable, err)
	}
	return b, nil
}

type instrumented struct {
	src Source
	m   *metrics.Metrics
}

// Instrumented records every read from src into m.
func Instrumented(src Source, m *metrics.Metrics) Source {
	if m == nil {
		return src
	}
	return instrumented{src: src, m: m}
}

func (s instrumented) Read(n int) ([]byte, error) {
	start := time.Now()
	b, err := s.src.Read(n)
	s.m.RecordEntropyRead(n, time.Since(start), err)
	return b, err
}
