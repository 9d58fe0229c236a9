package random

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestSeedFromReadsLittleEndian(t *testing.T) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 42)

	seed, err := SeedFrom(bytes.NewReader(buf[:]))
	if err != nil {
		t.Fatalf("seed from: %v", err)
	}
	if seed != 42 {
		t.Fatalf("seed = %d, want 42", seed)
	}
}

func TestSeedFromShortRead(t *testing.T) {
	if _, err := SeedFrom(bytes.NewReader([]byte{1, 2})); err == nil {
		t.Fatal("expected short read error")
	}
}

func TestResolveSeedPrefersExplicit(t *testing.T) {
	explicit := int64(7)
	seed, err := ResolveSeed(&explicit)
	if err != nil {
		t.Fatalf("resolve seed: %v", err)
	}
	if seed != 7 {
		t.Fatalf("seed = %d, want 7", seed)
	}
	if _, err := ResolveSeed(nil); err != nil {
		t.Fatalf("resolve random seed: %v", err)
	}
}
