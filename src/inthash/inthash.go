// Package inthash contains a seedable integer mixing function, used to diversify the per-table hash seeds of the sketch
package inthash

// Mix is a Jenkins-style 96 bit mix: the value is split into two 32 bit halves, combined
// with the seed through a fixed sequence of subtract/xor/shift rounds, and the final 32
// bits are returned. The output is reproducible across runs and platforms for a given
// (value, seed) pair - it operates on logical integers, not raw memory
func Mix(value uint64, seed uint32) uint32 {
	a := uint32(value)
	b := uint32(value >> 32)
	c := seed

	a -= b
	a -= c
	a ^= c >> 13
	b -= c
	b -= a
	b ^= a << 8
	c -= a
	c -= b
	c ^= b >> 13
	a -= b
	a -= c
	a ^= c >> 12
	b -= c
	b -= a
	b ^= a << 16
	c -= a
	c -= b
	c ^= b >> 5
	a -= b
	a -= c
	a ^= c >> 3
	b -= c
	b -= a
	b ^= a << 10
	c -= a
	c -= b
	c ^= b >> 15

	return c
}
