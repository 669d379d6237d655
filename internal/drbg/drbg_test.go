package drbg_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tyche/internal/drbg"
	"github.com/mrz1836/tyche/internal/metrics"
	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

func mustNew(t *testing.T, seed string, opts ...drbg.Option) *drbg.Generator {
	t.Helper()
	g, err := drbg.New([]byte(seed), opts...)
	require.NoError(t, err)
	t.Cleanup(g.Destroy)
	return g
}

func TestNew_EmptySeed(t *testing.T) {
	t.Parallel()

	for _, seed := range [][]byte{nil, {}} {
		g, err := drbg.New(seed)
		require.ErrorIs(t, err, tycheerr.ErrInvalidSeed)
		assert.Nil(t, g)
	}
}

func TestNext_SameSeedSameSequence(t *testing.T) {
	t.Parallel()

	a := mustNew(t, "fixed-seed")
	b := mustNew(t, "fixed-seed")

	for k := 0; k < 64; k++ {
		outA, err := a.Next()
		require.NoError(t, err)
		outB, err := b.Next()
		require.NoError(t, err)
		require.Equal(t, outA, outB, "draw %d diverged", k)
	}
}

func TestNext_FixedSeedScenario(t *testing.T) {
	t.Parallel()

	first := mustNew(t, "fixed-seed")
	second := mustNew(t, "fixed-seed")

	a1, err := first.Next()
	require.NoError(t, err)
	a2, err := first.Next()
	require.NoError(t, err)
	b1, err := second.Next()
	require.NoError(t, err)
	b2, err := second.Next()
	require.NoError(t, err)

	assert.Equal(t, a1, b1)
	assert.Equal(t, a2, b2)
	assert.NotEqual(t, a1, a2, "successive draws must advance the state")
}

func TestNext_Construction(t *testing.T) {
	t.Parallel()

	g := mustNew(t, "fixed-seed")

	state := []byte("fixed-seed")
	for counter := uint64(0); counter < 3; counter++ {
		var msg [8]byte
		binary.BigEndian.PutUint64(msg[:], counter)
		mac := hmac.New(sha256.New, state)
		mac.Write(msg[:])
		state = mac.Sum(nil)

		got, err := g.Next()
		require.NoError(t, err)
		require.Equal(t, hex.EncodeToString(state), hex.EncodeToString(got))
		assert.Equal(t, counter+1, g.Counter())
		assert.Equal(t, state, g.State())
	}
}

func TestNext_DistinctSeedsDoNotCollide(t *testing.T) {
	t.Parallel()

	seen := make(map[string]int, 2000)
	for i := 0; i < 2000; i++ {
		g := mustNew(t, fmt.Sprintf("seed-%d", i))
		out, err := g.Next()
		require.NoError(t, err)

		key := hex.EncodeToString(out)
		prev, dup := seen[key]
		require.False(t, dup, "seeds %d and %d collided", prev, i)
		seen[key] = i
	}
}

func TestNext_ReturnsCopy(t *testing.T) {
	t.Parallel()

	a := mustNew(t, "copy")
	b := mustNew(t, "copy")

	out, err := a.Next()
	require.NoError(t, err)
	for i := range out {
		out[i] = 0
	}

	_, err = a.Next()
	require.NoError(t, err)
	_, err = b.Next()
	require.NoError(t, err)
	assert.Equal(t, b.State(), a.State(), "mutating returned bytes must not leak into the state")
}

func TestNextInRange_Bounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		low, high int64
	}{
		{name: "dice", low: 1, high: 7},
		{name: "single value", low: 42, high: 43},
		{name: "negative", low: -100, high: -90},
		{name: "power of two", low: 0, high: 256},
		{name: "wide", low: -1 << 40, high: 1 << 40},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g := mustNew(t, "range-"+tc.name)
			for i := 0; i < 500; i++ {
				v, err := g.NextInRange(tc.low, tc.high)
				require.NoError(t, err)
				require.GreaterOrEqual(t, v, tc.low)
				require.Less(t, v, tc.high)
			}
		})
	}
}

func TestNextInRange_InvalidRange(t *testing.T) {
	t.Parallel()

	g := mustNew(t, "range")
	for _, r := range [][2]int64{{5, 5}, {7, 1}, {0, -1}} {
		_, err := g.NextInRange(r[0], r[1])
		require.ErrorIs(t, err, tycheerr.ErrInvalidRange)
	}
	assert.Equal(t, uint64(0), g.Counter(), "invalid ranges must not consume draws")
}

func TestNextInRange_Uniform(t *testing.T) {
	t.Parallel()

	const samples = 6000
	g := mustNew(t, "chi-squared")

	counts := make([]int, 6)
	for i := 0; i < samples; i++ {
		v, err := g.NextInRange(0, 6)
		require.NoError(t, err)
		counts[v]++
	}

	// Pearson's chi-squared, 5 degrees of freedom, 0.999 critical value.
	assert.Less(t, chiSquared(counts, samples), 20.515)
}

func TestNextInRange_Deterministic(t *testing.T) {
	t.Parallel()

	a := mustNew(t, "dice")
	b := mustNew(t, "dice")
	for i := 0; i < 100; i++ {
		va, err := a.NextInRange(1, 7)
		require.NoError(t, err)
		vb, err := b.NextInRange(1, 7)
		require.NoError(t, err)
		require.Equal(t, va, vb)
	}
}

func TestNextInRange_RecordsRejections(t *testing.T) {
	t.Parallel()

	m := &metrics.Metrics{}
	g := mustNew(t, "rejections", drbg.WithMetrics(m))

	// bound 5 uses 3 bits, so 3/8 of candidates are rejected on average.
	for i := 0; i < 400; i++ {
		_, err := g.NextInRange(0, 5)
		require.NoError(t, err)
	}

	snap := m.Snapshot()
	assert.Equal(t, int64(g.Counter()), snap.DeterministicDraws)
	assert.Equal(t, snap.DeterministicDraws-400, snap.Rejections)
	assert.Positive(t, snap.Rejections)
}

func TestBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		n    int
	}{
		{name: "zero", n: 0},
		{name: "partial block", n: 5},
		{name: "one block", n: 32},
		{name: "several blocks", n: 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g := mustNew(t, "bytes")
			ref := mustNew(t, "bytes")

			out, err := g.Bytes(tc.n)
			require.NoError(t, err)
			require.Len(t, out, tc.n)

			var want []byte
			for len(want) < tc.n {
				block, err := ref.Next()
				require.NoError(t, err)
				want = append(want, block...)
			}
			assert.Equal(t, want[:tc.n], out)
		})
	}
}

func TestBytes_Negative(t *testing.T) {
	t.Parallel()

	g := mustNew(t, "bytes")
	_, err := g.Bytes(-1)
	require.ErrorIs(t, err, tycheerr.ErrInvalidLength)
}

func TestWithHash(t *testing.T) {
	t.Parallel()

	sizes := map[string]int{
		"sha256":      32,
		"sha512":      64,
		"sha3-256":    32,
		"keccak256":   32,
		"blake2b-256": 32,
	}
	require.ElementsMatch(t, drbg.Hashes(), keys(sizes))

	outputs := make(map[string]string)
	for name, size := range sizes {
		g := mustNew(t, "hash", drbg.WithHash(name))
		assert.Equal(t, name, g.Hash())

		out, err := g.Next()
		require.NoError(t, err)
		assert.Len(t, out, size, name)

		other := mustNew(t, "hash", drbg.WithHash(name))
		again, err := other.Next()
		require.NoError(t, err)
		assert.Equal(t, out, again, "%s must be deterministic", name)

		outputs[hex.EncodeToString(out)] = name
	}
	assert.Len(t, outputs, len(sizes), "each hash must give a distinct stream")
}

func TestWithHash_CaseInsensitive(t *testing.T) {
	t.Parallel()

	g := mustNew(t, "hash", drbg.WithHash(" SHA512 "))
	assert.Equal(t, "sha512", g.Hash())
}

func TestWithHash_Unknown(t *testing.T) {
	t.Parallel()

	_, err := drbg.New([]byte("seed"), drbg.WithHash("sha265"))
	require.ErrorIs(t, err, tycheerr.ErrUnknownHash)

	var te *tycheerr.TycheError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "did you mean 'sha256'?", te.Suggestion)

	_, err = drbg.New([]byte("seed"), drbg.WithHash("whirlpool-xl"))
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Suggestion, "supported:")
}

func TestSuggestHash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "keccak256", drbg.SuggestHash("kecak256"))
	assert.Equal(t, "blake2b-256", drbg.SuggestHash("blake2b256"))
	assert.Empty(t, drbg.SuggestHash("completely-unrelated"))
}

func TestDigestSize(t *testing.T) {
	t.Parallel()

	sizes := map[string]int{
		"sha256":      32,
		"sha512":      64,
		"sha3-256":    32,
		"keccak256":   32,
		"blake2b-256": 32,
	}
	for name, want := range sizes {
		got, err := drbg.DigestSize(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
	assert.ElementsMatch(t, drbg.Hashes(), keys(sizes))

	_, err := drbg.DigestSize("md5")
	require.ErrorIs(t, err, tycheerr.ErrUnknownHash)
	require.ErrorIs(t, drbg.CheckHash("md5"), tycheerr.ErrUnknownHash)
	require.NoError(t, drbg.CheckHash("SHA512"))
}

func TestNewFromTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

	a, err := drbg.NewFromTime(at)
	require.NoError(t, err)
	defer a.Destroy()
	// Sub-second differences collapse into the same seed
	b, err := drbg.NewFromTime(at.Add(400 * time.Millisecond))
	require.NoError(t, err)
	defer b.Destroy()

	assert.True(t, a.Insecure())
	outA, err := a.Next()
	require.NoError(t, err)
	outB, err := b.Next()
	require.NoError(t, err)
	assert.Equal(t, outA, outB, "a wall-clock seed is reproducible by anyone who knows the second")

	// Brute force: scanning a one-minute window recovers the seed.
	var found bool
	for s := int64(-30); s <= 30 && !found; s++ {
		guess, err := drbg.NewFromTime(at.Add(time.Duration(s) * time.Second))
		require.NoError(t, err)
		out, err := guess.Next()
		require.NoError(t, err)
		found = hmac.Equal(out, outA)
		guess.Destroy()
	}
	assert.True(t, found)

	assert.False(t, mustNew(t, "not time based").Insecure())
}

func TestZeroValue(t *testing.T) {
	t.Parallel()

	var g drbg.Generator
	assert.False(t, g.Ready())
	assert.Nil(t, g.State())

	_, err := g.Next()
	require.ErrorIs(t, err, tycheerr.ErrNotInitialized)
	_, err = g.NextInRange(0, 10)
	require.ErrorIs(t, err, tycheerr.ErrNotInitialized)
	_, err = g.Bytes(4)
	require.ErrorIs(t, err, tycheerr.ErrNotInitialized)
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	g, err := drbg.New([]byte("destroy me"))
	require.NoError(t, err)
	assert.True(t, g.Ready())
	_, err = g.Next()
	require.NoError(t, err)

	g.Destroy()
	assert.False(t, g.Ready())
	assert.Equal(t, uint64(0), g.Counter())
	_, err = g.Next()
	require.ErrorIs(t, err, tycheerr.ErrNotInitialized)

	g.Destroy()
}

func TestWithMemoryLock(t *testing.T) {
	t.Parallel()

	locked := mustNew(t, "lock")
	unlocked := mustNew(t, "lock", drbg.WithMemoryLock(false))

	for i := 0; i < 3; i++ {
		a, err := locked.Next()
		require.NoError(t, err)
		b, err := unlocked.Next()
		require.NoError(t, err)
		assert.Equal(t, a, b, "memory locking must not change output")
	}
}

func chiSquared(counts []int, samples int) float64 {
	expected := float64(samples) / float64(len(counts))
	var chiSq float64
	for _, n := range counts {
		d := float64(n) - expected
		chiSq += d * d / expected
	}
	return chiSq
}

func keys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
