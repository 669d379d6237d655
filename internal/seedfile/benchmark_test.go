package seedfile

import (
	"path/filepath"
	"testing"
)

func BenchmarkSave(b *testing.B) {
	seed := make([]byte, 32)
	path := filepath.Join(b.TempDir(), "seed.age")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Save(path, seed, "testpassword123", fastOpts()...)
	}
}

func BenchmarkLoad(b *testing.B) {
	seed := make([]byte, 32)
	path := filepath.Join(b.TempDir(), "seed.age")
	if err := Save(path, seed, "testpassword123", fastOpts()...); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, _, err := Load(path, "testpassword123", fastOpts()...)
		if err != nil {
			b.Fatal(err)
		}
		buf.Destroy()
	}
}
