// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

package bpcs

// Chunk is a fixed 8x8 binary tile: eight bytes, one per row, with
// column-0 at the most significant bit of each row byte (big-endian bit
// order, per the wire format).
type Chunk [8]byte

// checkerboard is the conjugation mask: alternating 0xAA/0x55 rows so that
// adjacent bits (horizontally and vertically) always differ.
var checkerboard = Chunk{0xAA, 0x55, 0xAA, 0x55, 0xAA, 0x55, 0xAA, 0x55}

// maxTransitions is the maximum possible bit-transition count in an 8x8
// chunk: 7 horizontal transitions per row across 8 rows, plus 7 vertical
// transitions per column across 8 columns.
const maxTransitions = 112

// popcount8 returns the number of set bits in b.
func popcount8(b byte) int {
	n := 0
	for b != 0 {
		n += int(b & 1)
		b >>= 1
	}
	return n
}

// Transitions returns the raw count of horizontal and vertical bit
// transitions in the chunk, in [0,112].
func (c Chunk) Transitions() int {
	total := 0
	for i := 0; i < 8; i++ {
		row := c[i]
		total += popcount8((row ^ (row << 1)) & 0xFE)
	}
	for i := 0; i < 7; i++ {
		total += popcount8(c[i] ^ c[i+1])
	}
	return total
}

// Complexity returns C(chunk), the normalized bit-transition count in
// [0,1]. C(all-zeros) = C(all-ones) = 0; C(checkerboard) = 1.
func (c Chunk) Complexity() float64 {
	return float64(c.Transitions()) / float64(maxTransitions)
}

// Conjugate returns the chunk XORed with the checkerboard mask. Conjugate
// is an involution: Conjugate(Conjugate(x)) == x, and its complexity is
// the complement: Complexity(Conjugate(x)) == 1 - Complexity(x).
func (c Chunk) Conjugate() Chunk {
	var out Chunk
	for i := range c {
		out[i] = c[i] ^ checkerboard[i]
	}
	return out
}

// ConjugateInPlace XORs the chunk with the checkerboard mask in place.
func (c *Chunk) ConjugateInPlace() {
	for i := range c {
		c[i] ^= checkerboard[i]
	}
}

// Bytes returns the chunk's 8 bytes as a slice.
func (c *Chunk) Bytes() []byte {
	return c[:]
}
