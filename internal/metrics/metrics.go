// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds generator and entropy metrics using atomic counters.
type Metrics struct {
	// Entropy source metrics
	entropyReadsTotal  atomic.Int64
	entropyReadErrors  atomic.Int64
	entropyBytesTotal  atomic.Int64
	entropyLatencyNano atomic.Int64

	// Generator metrics
	deterministicDraws atomic.Int64
	secureDraws        atomic.Int64
	rejections         atomic.Int64
}

// Global is the process metrics instance the CLI reports from.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordEntropyRead records one read from an entropy source.
func (m *Metrics) RecordEntropyRead(n int, duration time.Duration, err error) {
	m.entropyReadsTotal.Add(1)
	m.entropyLatencyNano.Add(duration.Nanoseconds())

	if err != nil {
		m.entropyReadErrors.Add(1)
		return
	}
	m.entropyBytesTotal.Add(int64(n))
}

// RecordDeterministicDraw records one Next call on a deterministic generator.
func (m *Metrics) RecordDeterministicDraw() {
	m.deterministicDraws.Add(1)
}

// RecordSecureDraw records one Next call on a secure generator.
func (m *Metrics) RecordSecureDraw() {
	m.secureDraws.Add(1)
}

// RecordRejection records a sample discarded by rejection sampling.
func (m *Metrics) RecordRejection() {
	m.rejections.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	EntropyReadsTotal  int64 `json:"entropy_reads_total"`
	EntropyReadErrors  int64 `json:"entropy_read_errors"`
	EntropyBytesTotal  int64 `json:"entropy_bytes_total"`
	EntropyLatencyNano int64 `json:"entropy_latency_nanos"`
	DeterministicDraws int64 `json:"deterministic_draws"`
	SecureDraws        int64 `json:"secure_draws"`
	Rejections         int64 `json:"rejections"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		EntropyReadsTotal:  m.entropyReadsTotal.Load(),
		EntropyReadErrors:  m.entropyReadErrors.Load(),
		EntropyBytesTotal:  m.entropyBytesTotal.Load(),
		EntropyLatencyNano: m.entropyLatencyNano.Load(),
		DeterministicDraws: m.deterministicDraws.Load(),
		SecureDraws:        m.secureDraws.Load(),
		Rejections:         m.rejections.Load(),
	}
}

// EntropyLatencyAvgMs returns the average entropy read latency in milliseconds.
// Returns 0 if no reads have been made.
func (m *Metrics) EntropyLatencyAvgMs() float64 {
	reads := m.entropyReadsTotal.Load()
	if reads == 0 {
		return 0
	}
	return float64(m.entropyLatencyNano.Load()) / float64(reads) / 1e6
}

// RejectionRate returns rejected samples as a percentage (0-100) of all
// generator draws. Returns 0 if nothing was drawn.
func (m *Metrics) RejectionRate() float64 {
	draws := m.deterministicDraws.Load() + m.secureDraws.Load()
	if draws == 0 {
		return 0
	}
	return float64(m.rejections.Load()) / float64(draws) * 100
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.entropyReadsTotal.Store(0)
	m.entropyReadErrors.Store(0)
	m.entropyBytesTotal.Store(0)
	m.entropyLatencyNano.Store(0)
	m.deterministicDraws.Store(0)
	m.secureDraws.Store(0)
	m.rejections.Store(0)
}
