package rng_test

import (
	"errors"
	"io"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tyche/internal/rng"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

var errDrawFailed = errors.New("draw failed")

// scripted returns a DrawFunc that replays the given byte blocks in order and
// records the requested sizes.
func scripted(blocks [][]byte, sizes *[]int) rng.DrawFunc {
	i := 0
	return func(n int) ([]byte, error) {
		*sizes = append(*sizes, n)
		if i >= len(blocks) {
			return nil, errDrawFailed
		}
		b := blocks[i]
		i++
		return b, nil
	}
}

func TestBelow_Rejection(t *testing.T) {
	t.Parallel()

	// bound 6 -> 3 bits, one byte per attempt. 0xFF&7=7 and 0x06&7=6 are
	// rejected, 0x0D&7=5 is accepted.
	var sizes []int
	v, rejected, err := rng.Below(scripted([][]byte{{0xFF}, {0x06}, {0x0D}}, &sizes), 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)
	assert.Equal(t, 2, rejected)
	assert.Equal(t, []int{1, 1, 1}, sizes)
}

func TestBelow_ByteWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		bound uint64
		want  int
	}{
		{name: "two values", bound: 2, want: 1},
		{name: "one byte exact", bound: 256, want: 1},
		{name: "needs second byte", bound: 257, want: 2},
		{name: "three bytes", bound: 1 << 20, want: 3},
		{name: "full width", bound: math.MaxUint64, want: 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var sizes []int
			_, _, err := rng.Below(scripted([][]byte{make([]byte, tc.want)}, &sizes), tc.bound)
			require.NoError(t, err)
			assert.Equal(t, []int{tc.want}, sizes)
		})
	}
}

func TestBelow_BigEndian(t *testing.T) {
	t.Parallel()

	var sizes []int
	v, _, err := rng.Below(scripted([][]byte{{0x01, 0x02}}, &sizes), 1<<16)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102), v)
}

func TestBelow_Edges(t *testing.T) {
	t.Parallel()

	var sizes []int
	_, _, err := rng.Below(scripted(nil, &sizes), 0)
	require.ErrorIs(t, err, tycheerr.ErrInvalidBound)

	v, rejected, err := rng.Below(scripted(nil, &sizes), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)
	assert.Equal(t, 0, rejected)
	assert.Empty(t, sizes, "a single-value range needs no bytes")
}

func TestBelow_DrawErrors(t *testing.T) {
	t.Parallel()

	var sizes []int
	_, _, err := rng.Below(scripted(nil, &sizes), 10)
	require.ErrorIs(t, err, errDrawFailed)

	_, _, err = rng.Below(scripted([][]byte{{}}, &sizes), 1000)
	require.ErrorIs(t, err, io.ErrShortBuffer)
}

func TestSpan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		low, high int64
		want      uint64
		wantErr   bool
	}{
		{name: "dice", low: 1, high: 7, want: 6},
		{name: "negative", low: -10, high: -5, want: 5},
		{name: "straddles zero", low: -3, high: 3, want: 6},
		{name: "whole int64", low: math.MinInt64, high: math.MaxInt64, want: math.MaxUint64},
		{name: "equal", low: 5, high: 5, wantErr: true},
		{name: "inverted", low: 6, high: 5, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := rng.Span(tc.low, tc.high)
			if tc.wantErr {
				require.ErrorIs(t, err, tycheerr.ErrInvalidRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(-3), rng.Offset(-3, 0))
	assert.Equal(t, int64(2), rng.Offset(-3, 5))
	assert.Equal(t, int64(math.MaxInt64-1), rng.Offset(math.MinInt64, math.MaxUint64-1))
}

// counterSource is a RandomSource whose state is a plain int so the race
// detector flags unserialized access.
type counterSource struct {
	n int
}

func (c *counterSource) Bytes(n int) ([]byte, error) {
	c.n++
	return make([]byte, n), nil
}

func (c *counterSource) IntRange(low, _ int64) (int64, error) {
	c.n++
	return low, nil
}

func TestLocked(t *testing.T) {
	t.Parallel()

	src := &counterSource{}
	shared := rng.Locked(src)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = shared.Bytes(4)
				_, _ = shared.IntRange(0, 10)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2000, src.n)
}

func TestReader(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 12)
	for i := range buf {
		buf[i] = 0xEE
	}
	n, err := rng.Reader(&counterSource{}).Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, make([]byte, 12), buf)
}
