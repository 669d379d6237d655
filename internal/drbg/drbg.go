// Package drbg implements a deterministic generator: every output is a pure
// function of the seed it was built from. Two generators given the same seed
// produce the same sequence forever, which is the property this package
// exists to demonstrate.
//
// A Generator is only as unpredictable as its seed. Seeds derived from the
// wall clock (see NewFromTime) can be brute forced in seconds and must never
// protect anything; such generators report Insecure() == true.
package drbg

import (
	"crypto/hmac"
	"encoding/binary"
	"hash"
	"strings"
	"time"

	"github.com/mrz1836/tyche/internal/metrics"
	"github.com/mrz1836/tyche/internal/rng"
	"github.com/mrz1836/tyche/internal/securemem"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// Generator derives each output as State = HMAC(State, Counter).
// The zero value is uninitialized and refuses to draw.
// A Generator is not safe for concurrent use; wrap it with rng.Locked.
type Generator struct {
	state    *securemem.Buffer
	counter  uint64
	newHash  func() hash.Hash
	hashName string
	lock     bool
	insecure bool
	metrics  *metrics.Metrics
}

var _ rng.RandomSource = (*Generator)(nil)

// Option configures a Generator.
type Option func(*options) error

type options struct {
	hashName string
	newHash  func() hash.Hash
	lock     bool
	metrics  *metrics.Metrics
}

// WithHash selects the HMAC hash by name. See Hashes for the supported set.
func WithHash(name string) Option {
	return func(o *options) error {
		fn, err := lookupHash(name)
		if err != nil {
			return err
		}
		o.hashName = strings.ToLower(strings.TrimSpace(name))
		o.newHash = fn
		return nil
	}
}

// WithMemoryLock controls whether the state is mlocked. Default true.
func WithMemoryLock(lock bool) Option {
	return func(o *options) error {
		o.lock = lock
		return nil
	}
}

// WithMetrics records each draw and each rejected sample into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// New builds a Generator whose state starts as a copy of seed with the
// counter at zero. An empty seed fails with ErrInvalidSeed.
//
// The seed is used exactly as given: its entropy is the generator's entropy.
func New(seed []byte, opts ...Option) (*Generator, error) {
	if len(seed) == 0 {
		return nil, tycheerr.ErrInvalidSeed
	}

	o := options{hashName: DefaultHash, newHash: hashes[DefaultHash], lock: true}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	var memOpts []securemem.Option
	if !o.lock {
		memOpts = append(memOpts, securemem.WithoutLock())
	}

	return &Generator{
		state:    securemem.FromSlice(seed, memOpts...),
		newHash:  o.newHash,
		hashName: o.hashName,
		lock:     o.lock,
		metrics:  o.metrics,
	}, nil
}

// NewFromTime seeds a Generator from t truncated to whole seconds.
//
// INSECURE: anyone who knows roughly when the generator was created can
// replay every output by trying each second in that window. The returned
// generator reports Insecure() == true.
func NewFromTime(t time.Time, opts ...Option) (*Generator, error) {
	seed := make([]byte, 8)
	binary.BigEndian.PutUint64(seed, uint64(t.Unix()))

	g, err := New(seed, opts...)
	if err != nil {
		return nil, err
	}
	g.insecure = true
	return g, nil
}

// Next advances the generator and returns a copy of the new state.
func (g *Generator) Next() ([]byte, error) {
	if g.state == nil || g.state.Len() == 0 {
		return nil, tycheerr.ErrNotInitialized
	}

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], g.counter)

	mac := hmac.New(g.newHash, g.state.Bytes())
	mac.Write(msg[:])
	next := mac.Sum(nil)
	g.counter++

	// The seed may be shorter or longer than a digest; the state takes the
	// digest size from the first draw on.
	if !g.state.Set(next) {
		old := g.state
		g.state = securemem.FromSlice(next, g.memOptions()...)
		old.Destroy()
	}

	if g.metrics != nil {
		g.metrics.RecordDeterministicDraw()
	}
	return next, nil
}

// NextInRange returns a value in [low, high) derived from Next output by
// rejection sampling. It fails with ErrInvalidRange when low >= high.
func (g *Generator) NextInRange(low, high int64) (int64, error) {
	span, err := rng.Span(low, high)
	if err != nil {
		return 0, err
	}

	v, rejected, err := rng.Below(g.draw, span)
	if err != nil {
		return 0, err
	}
	g.recordRejections(rejected)
	return rng.Offset(low, v), nil
}

// IntRange implements rng.RandomSource.
func (g *Generator) IntRange(low, high int64) (int64, error) {
	return g.NextInRange(low, high)
}

// Bytes returns n bytes made of successive Next outputs, the last one
// truncated. It implements rng.RandomSource.
func (g *Generator) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, tycheerr.ErrInvalidLength
	}
	if g.state == nil || g.state.Len() == 0 {
		return nil, tycheerr.ErrNotInitialized
	}

	out := make([]byte, 0, n)
	for len(out) < n {
		block, err := g.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, block[:min(len(block), n-len(out))]...)
	}
	return out, nil
}

// draw feeds rng.Below with the leading bytes of one Next output.
func (g *Generator) draw(n int) ([]byte, error) {
	block, err := g.Next()
	if err != nil {
		return nil, err
	}
	if n > len(block) {
		n = len(block)
	}
	return block[:n], nil
}

func (g *Generator) recordRejections(n int) {
	if g.metrics == nil {
		return
	}
	for i := 0; i < n; i++ {
		g.metrics.RecordRejection()
	}
}

func (g *Generator) memOptions() []securemem.Option {
	if !g.lock {
		return []securemem.Option{securemem.WithoutLock()}
	}
	return nil
}

// Counter returns the number of draws made so far.
func (g *Generator) Counter() uint64 {
	return g.counter
}

// State returns a copy of the current state, or nil when uninitialized.
// Anyone holding it can predict every future output.
func (g *Generator) State() []byte {
	if g.state == nil {
		return nil
	}
	return g.state.Copy()
}

// Hash returns the name of the mixing hash.
func (g *Generator) Hash() string {
	return g.hashName
}

// Insecure reports whether the generator was seeded from low-entropy input.
func (g *Generator) Insecure() bool {
	return g.insecure
}

// Ready reports whether the generator can draw.
func (g *Generator) Ready() bool {
	return g.state != nil && g.state.Len() > 0
}

// Destroy zeroes the state. The generator is uninitialized afterwards.
func (g *Generator) Destroy() {
	if g.state != nil {
		g.state.Destroy()
		g.state = nil
	}
	g.counter = 0
}
