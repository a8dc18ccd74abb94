package inthash

import (
	"testing"
)

// setup variables
var (
	testValues = []uint64{0, 1, 42, 12345, 0xDEADBEEF, ^uint64(0)}
	testSeeds  = []uint32{0, 1, 7, 42, 0xCAFE}
)

// check the mixer is pure and reproducible
func TestMixDeterminism(t *testing.T) {
	for _, v := range testValues {
		for _, s := range testSeeds {
			first := Mix(v, s)
			second := Mix(v, s)
			if first != second {
				t.Fatalf("Mix(%d, %d) not reproducible: %d vs %d", v, s, first, second)
			}
		}
	}
}

// check that changing the seed changes the output for a fixed value
func TestMixSeedSensitivity(t *testing.T) {
	v := uint64(12345)
	seen := make(map[uint32]uint32)
	for s := uint32(0); s < 1000; s++ {
		h := Mix(v, s)
		if prevSeed, ok := seen[h]; ok {
			t.Fatalf("seeds %d and %d collide for value %d (output %d)", prevSeed, s, v, h)
		}
		seen[h] = s
	}
}

// check that outputs across a sample of inputs are well distributed (no trivial correlation)
func TestMixDistribution(t *testing.T) {
	const samples = 10000
	seen := make(map[uint32]struct{}, samples)
	collisions := 0
	for i := uint64(0); i < samples; i++ {
		h := Mix(i, 42)
		if _, ok := seen[h]; ok {
			collisions++
		}
		seen[h] = struct{}{}
	}
	// a handful of collisions over 10k values in a 32 bit range would already be suspect
	if collisions > 3 {
		t.Fatalf("too many collisions for sequential inputs: %d", collisions)
	}

	// sequential inputs should not produce sequential outputs
	sequential := 0
	prev := Mix(0, 42)
	for i := uint64(1); i < 100; i++ {
		h := Mix(i, 42)
		if h == prev+1 {
			sequential++
		}
		prev = h
	}
	if sequential > 1 {
		t.Fatalf("outputs trivially correlated with inputs (%d sequential pairs)", sequential)
	}
}
