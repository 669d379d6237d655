package drbg_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tyche/internal/drbg"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

func firstOutput(t *testing.T, at time.Time, opts ...drbg.Option) []byte {
	t.Helper()
	g, err := drbg.NewFromTime(at, opts...)
	require.NoError(t, err)
	defer g.Destroy()
	out, err := g.Next()
	require.NoError(t, err)
	return out
}

func TestRecoverTime(t *testing.T) {
	t.Parallel()

	seeded := time.Date(2024, 6, 1, 8, 0, 42, 0, time.UTC)
	first := firstOutput(t, seeded)

	tests := []struct {
		name   string
		around time.Time
	}{
		{"exact", seeded},
		{"guess early", seeded.Add(-17 * time.Second)},
		{"guess late", seeded.Add(29*time.Second + 400*time.Millisecond)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := drbg.RecoverTime(first, tt.around, time.Minute)
			require.NoError(t, err)
			assert.True(t, seeded.Equal(got), "got %s", got)
		})
	}
}

func TestRecoverTime_Hash(t *testing.T) {
	t.Parallel()

	seeded := time.Unix(1_700_000_000, 0)
	first := firstOutput(t, seeded, drbg.WithHash("sha512"))

	got, err := drbg.RecoverTime(first, seeded.Add(5*time.Second), 10*time.Second, drbg.WithHash("sha512"))
	require.NoError(t, err)
	assert.Equal(t, seeded.Unix(), got.Unix())

	// Wrong hash never matches
	_, err = drbg.RecoverTime(first, seeded, 10*time.Second)
	require.ErrorIs(t, err, tycheerr.ErrNotFound)
}

func TestRecoverTime_OutsideWindow(t *testing.T) {
	t.Parallel()

	seeded := time.Unix(1_700_000_000, 0)
	first := firstOutput(t, seeded)

	_, err := drbg.RecoverTime(first, seeded.Add(time.Hour), 30*time.Second)
	require.ErrorIs(t, err, tycheerr.ErrNotFound)
}

func TestRecoverTime_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := drbg.RecoverTime(nil, time.Now(), time.Second)
	require.ErrorIs(t, err, tycheerr.ErrInvalidInput)

	_, err = drbg.RecoverTime([]byte{1}, time.Now(), -time.Second)
	require.ErrorIs(t, err, tycheerr.ErrInvalidInput)

	_, err = drbg.RecoverTime([]byte{1}, time.Now(), drbg.MaxRecoverWindow+time.Second)
	require.ErrorIs(t, err, tycheerr.ErrInvalidInput)
}
