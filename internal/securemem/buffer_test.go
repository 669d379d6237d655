package securemem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tyche/internal/securemem"
)

func TestBuffer_New(t *testing.T) {
	t.Parallel()
	b := securemem.New(32)
	defer b.Destroy()

	assert.Len(t, b.Bytes(), 32)
	assert.Equal(t, make([]byte, 32), b.Bytes())
	assert.Equal(t, 32, b.Len())
}

func TestBuffer_FromSliceCopies(t *testing.T) {
	t.Parallel()
	original := []byte("fixed-seed")
	b := securemem.FromSlice(original)
	defer b.Destroy()

	assert.Equal(t, original, b.Bytes())

	original[0] = 'X'
	assert.Equal(t, byte('f'), b.Bytes()[0], "buffer must not alias the source slice")
}

func TestBuffer_Copy(t *testing.T) {
	t.Parallel()
	b := securemem.FromSlice([]byte{1, 2, 3})
	defer b.Destroy()

	c := b.Copy()
	c[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, b.Bytes())
}

func TestBuffer_Set(t *testing.T) {
	t.Parallel()
	b := securemem.New(4)
	defer b.Destroy()

	require.True(t, b.Set([]byte{4, 3, 2, 1}))
	assert.Equal(t, []byte{4, 3, 2, 1}, b.Bytes())

	assert.False(t, b.Set([]byte{1, 2}), "length mismatch must be refused")
	assert.Equal(t, []byte{4, 3, 2, 1}, b.Bytes())
}

func TestBuffer_Destroy(t *testing.T) {
	t.Parallel()
	b := securemem.FromSlice([]byte("state"))
	data := b.Bytes()

	b.Destroy()
	assert.Equal(t, make([]byte, 5), data, "destroy must zero the backing array")
	assert.Nil(t, b.Bytes())
	assert.Nil(t, b.Copy())
	assert.Equal(t, 0, b.Len())
	assert.False(t, b.Set([]byte{}))
	assert.False(t, b.IsLocked())

	// Second destroy is a no-op
	b.Destroy()
}

func TestBuffer_WithoutLock(t *testing.T) {
	t.Parallel()
	b := securemem.New(16, securemem.WithoutLock())
	defer b.Destroy()

	assert.False(t, b.IsLocked())
}

func TestBuffer_ZeroSize(t *testing.T) {
	t.Parallel()
	b := securemem.New(0)
	defer b.Destroy()

	assert.Empty(t, b.Bytes())
	assert.False(t, b.IsLocked(), "empty buffers are never locked")
}

func TestZero(t *testing.T) {
	t.Parallel()
	p := []byte("secret")
	securemem.Zero(p)
	assert.Equal(t, make([]byte, 6), p)
}
