// Package securemem holds secret byte material (generator state, seeds) in
// memory that is locked against swapping where the OS allows it and is
// zeroed on Destroy.
package securemem

import (
	"runtime"
	"sync"
)

// Buffer is a fixed-size container for sensitive bytes.
type Buffer struct {
	data   []byte
	locked bool
	mu     sync.Mutex
}

// Option configures a Buffer.
type Option func(*config)

type config struct {
	lock bool
}

// WithoutLock skips mlock. Used when security.memory_lock is disabled or the
// process has no RLIMIT_MEMLOCK headroom.
func WithoutLock() Option {
	return func(c *config) {
		c.lock = false
	}
}

// New creates a zeroed Buffer of the given size.
// The memory is locked if the system supports it.
func New(size int, opts ...Option) *Buffer {
	c := config{lock: true}
	for _, opt := range opts {
		opt(&c)
	}

	b := &Buffer{data: make([]byte, size)}
	if c.lock {
		// Failure to lock is not fatal
		b.locked = mlock(b.data)
	}

	runtime.SetFinalizer(b, func(buf *Buffer) {
		buf.Destroy()
	})

	return b
}

// FromSlice copies data into a new Buffer. The caller still owns data and
// should Zero it if it was secret.
func FromSlice(data []byte, opts ...Option) *Buffer {
	b := New(len(data), opts...)
	copy(b.data, data)
	return b
}

// Bytes returns the underlying slice, or nil after Destroy.
// Writes through the returned slice modify the buffer.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

// Copy returns a copy of the contents that is safe to hand to callers.
func (b *Buffer) Copy() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Set overwrites the contents in place. src must be exactly Len bytes;
// it returns false otherwise or after Destroy.
func (b *Buffer) Set(src []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil || len(src) != len(b.data) {
		return false
	}
	copy(b.data, src)
	return true
}

// IsLocked reports whether the memory is mlocked.
func (b *Buffer) IsLocked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked
}

// Len returns the length of the data, 0 after Destroy.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Destroy zeros and unlocks the memory. Safe to call multiple times.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.data == nil {
		return
	}

	Zero(b.data)

	if b.locked {
		munlock(b.data)
		b.locked = false
	}

	b.data = nil
	runtime.SetFinalizer(b, nil)
}

// Zero overwrites p with zeros.
func Zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
