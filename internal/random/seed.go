// Package random provides seed sources for the winning number generator.
//
// Draw seeds are opaque 64-byte values. Production code reads them from
// crypto/rand; tests inject fixed seeds so draws are reproducible.
package random

import (
	crand "crypto/rand"
	"fmt"
	"io"

	apperrors "github.com/louisbranch/lottery/internal/platform/errors"
)

// SeedSize is the number of bytes in a draw seed.
const SeedSize = 64

// Seed is the input to a single draw's random stream.
type Seed [SeedSize]byte

// Source hands out seeds.
type Source interface {
	NewSeed() (Seed, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() (Seed, error)

// NewSeed implements Source.
func (fn SourceFunc) NewSeed() (Seed, error) {
	return fn()
}

// CryptoSource reads seeds from crypto/rand.
type CryptoSource struct {
	// Reader overrides crypto/rand when set.
	Reader io.Reader
}

// NewSeed implements Source.
func (s CryptoSource) NewSeed() (Seed, error) {
	reader := s.Reader
	if reader == nil {
		reader = crand.Reader
	}
	var seed Seed
	if _, err := io.ReadFull(reader, seed[:]); err != nil {
		return Seed{}, fmt.Errorf("read random seed: %w", err)
	}
	return seed, nil
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (Seed, error) {
	return CryptoSource{}.NewSeed()
}

// SeedFromBytes copies b into a Seed. b must be exactly SeedSize bytes long.
func SeedFromBytes(b []byte) (Seed, error) {
	var seed Seed
	if len(b) != SeedSize {
		return seed, apperrors.WithMetadata(
			apperrors.CodeSeedInvalid,
			fmt.Sprintf("seed must be %d bytes, got %d", SeedSize, len(b)),
			map[string]string{"Got": fmt.Sprint(len(b))},
		)
	}
	copy(seed[:], b)
	return seed, nil
}

// Fixed returns a Source that always hands out seed.
func Fixed(seed Seed) Source {
	return SourceFunc(func() (Seed, error) { return seed, nil })
}
