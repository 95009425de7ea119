// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

// Package stegano provides the data model shared by BPCS steganography
// implementations: a raw RGBA pixel buffer, the per-channel bit-plane caps,
// the statistics a hide/measure pass reports, and the Coder interface that
// ties hide, extract and measure together.
package stegano

// Image is a width x height grid of 32-bit RGBA pixels stored row-major,
// four bytes per pixel (R, G, B, A). Pix must have length 4*Width*Height;
// callers outside this module (image codecs) are responsible for producing
// a buffer satisfying that invariant.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// NewImage allocates an Image of the given dimensions with a zeroed pixel
// buffer.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, 4*width*height),
	}
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	cp := &Image{Width: img.Width, Height: img.Height}
	cp.Pix = make([]byte, len(img.Pix))
	copy(cp.Pix, img.Pix)
	return cp
}

// Caps holds the per-channel bit-plane caps (rmax, gmax, bmax, amax), each
// in [0,8]. cmax=k means the k least significant bits of that channel are
// eligible for concealment; the remaining 8-k most significant bits are
// never touched. DefaultCaps uses all eight bits of every channel.
type Caps struct {
	R, G, B, A int
}

// DefaultCaps returns the caps that make all 32 bit-planes available.
func DefaultCaps() Caps {
	return Caps{R: 8, G: 8, B: 8, A: 8}
}

// PlaneCount returns the number of bit-planes selected by the caps.
func (c Caps) PlaneCount() int {
	return c.R + c.G + c.B + c.A
}

// Valid reports whether every cap is within [0,8] and at least one
// bit-plane is selected.
func (c Caps) Valid() bool {
	for _, v := range []int{c.R, c.G, c.B, c.A} {
		if v < 0 || v > 8 {
			return false
		}
	}
	return c.PlaneCount() >= 1
}

// HideStats reports the outcome of a hide operation: the threshold chosen,
// how many cover chunks were overwritten (in total and per bit-plane), the
// size of the message that was requested to be hidden, and how many of its
// bytes actually made it into the stego image.
type HideStats struct {
	Threshold             float64
	ChunksUsed            int
	ChunksUsedPerBitPlane map[int]int
	MessageSize           int
	MessageBytesHidden    int
}

// Overflowed reports whether the cover image ran out of eligible chunks
// before the whole framed message could be written.
func (s HideStats) Overflowed() bool {
	return s.MessageBytesHidden < s.MessageSize
}

// MeasureStats reports the capacity of a cover image at a given complexity
// threshold: how many chunks clear the threshold (in total and per
// bit-plane) and the resulting payload-byte capacity after framing
// overhead is subtracted.
type MeasureStats struct {
	Threshold         float64
	ChunksAvailable   int
	ChunksPerBitPlane map[int]int
	CapacityBytes     int
}

// Coder is the interface a BPCS implementation exposes: Hide embeds a
// payload into a cover image in place, Extract recovers a payload from a
// stego image, and Measure reports the capacity of a cover image without
// modifying it.
type Coder interface {
	Hide(img *Image, payload []byte, caps Caps) (HideStats, error)
	Extract(img *Image) ([]byte, error)
	Measure(img *Image, threshold float64, caps Caps) (MeasureStats, error)
}
