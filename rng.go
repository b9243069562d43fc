package kd

import "github.com/kdrt/kd/internal/rng"

var defaultRNG rng.Source = rng.CryptoSource{}

// CryptoRandom fills buf with cryptographically strong pseudo-random
// bytes, drawn from the host CSPRNG (§1 "pseudo-random byte generation").
// ErrOutOfMemory is returned if fewer than len(buf) bytes could be
// produced, matching the original API's short-read handling.
func CryptoRandom(buf []byte) Error {
	n, err := defaultRNG.Read(buf)
	if err != nil || n != len(buf) {
		return ErrOutOfMemory
	}
	return ErrNone
}
