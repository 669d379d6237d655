package secure_test

import (
	"testing"

	"github.com/mrz1836/tyche/internal/entropy"
	"github.com/mrz1836/tyche/internal/secure"
)

func BenchmarkNext32(b *testing.B) {
	g := secure.New(entropy.OS())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = g.Next(32)
	}
}

func BenchmarkNext64(b *testing.B) {
	g := secure.New(entropy.OS())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = g.Next(64)
	}
}

func BenchmarkNextBelow(b *testing.B) {
	bounds := []struct {
		name  string
		bound int64
	}{
		{"die", 6},
		{"byte edge", 129},
		{"large", 1<<40 + 1},
	}

	for _, bb := range bounds {
		b.Run(bb.name, func(b *testing.B) {
			g := secure.New(entropy.OS())

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = g.NextBelow(bb.bound)
			}
		})
	}
}
