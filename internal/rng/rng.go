// Package rng implements pseudo-random byte generation. Production code
// always draws from the OS CSPRNG (crypto/rand, itself backed by
// /dev/urandom or CryptGenRandom depending on host, mirroring the original
// API's own platform dispatch for kdCryptoRandom); a Source interface lets
// tests substitute a seeded, reproducible generator.
package rng

import (
	"crypto/rand"
	mathrand "math/rand/v2"
)

// Source generates pseudo-random bytes.
type Source interface {
	Read(buf []byte) (int, error)
}

// CryptoSource draws from the host CSPRNG.
type CryptoSource struct{}

func (CryptoSource) Read(buf []byte) (int, error) { return rand.Read(buf) }

// Deterministic returns a Source seeded from seed, for tests that need
// reproducible sequences rather than real entropy.
func Deterministic(seed uint64) Source {
	return &deterministicSource{r: mathrand.New(mathrand.NewPCG(seed, seed))}
}

type deterministicSource struct {
	r *mathrand.Rand
}

func (d *deterministicSource) Read(buf []byte) (int, error) {
	for i := range buf {
		buf[i] = byte(d.r.IntN(256))
	}
	return len(buf), nil
}
