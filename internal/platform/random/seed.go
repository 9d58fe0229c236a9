// Package random provides cryptographic seed generation for the dice roller.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	return SeedFrom(crand.Reader)
}

// SeedFrom reads a seed from r.
func SeedFrom(r io.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ResolveSeed returns explicit when set, otherwise a fresh random seed.
func ResolveSeed(explicit *int64) (int64, error) {
	if explicit != nil {
		return *explicit, nil
	}
	return NewSeed()
}
