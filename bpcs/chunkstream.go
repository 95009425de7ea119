// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

package bpcs

import (
	stegano "github.com/zanicar/bpcs-stegano"
)

// ChunkStream is an ordered sequence of chunks produced from an image
// under a specific bit-plane priority and seeded permutation. Chunkify and
// DeChunkify are exact inverses of each other: DeChunkify(Chunkify(img,
// priority), img2, priority) reproduces img bitwise over every 8-aligned
// tile and every plane in priority.
type ChunkStream []Chunk

// tileGrid returns the number of whole 8x8 tiles along width and height,
// and their product.
func tileGrid(width, height int) (cw, ch, n int) {
	cw = width / 8
	ch = height / 8
	return cw, ch, cw * ch
}

// tilePermutation returns the deterministic Fisher-Yates permutation of
// 0..n-1 for an image of the given dimensions, seeded per the wire-format
// constant width*1_000_003 + height.
func tilePermutation(width, height, n int) []int {
	seed := permutationSeed(width, height)
	gen := newMT19937_64(seed)
	return fisherYates(n, gen)
}

// pixelOffset returns the byte offset of pixel (x,y) within a row-major
// RGBA buffer of the given width.
func pixelOffset(width, x, y int) int {
	return (y*width + x) * 4
}

// Chunkify transforms the (already Gray-coded) pixel buffer of img into an
// ordered chunk stream: tile-major within each plane, plane-major across
// priority. Pixels in the partial right/bottom strip (columns >= 8*cw or
// rows >= 8*ch) are never read.
func Chunkify(img *stegano.Image, priority BitPlanePriority) ChunkStream {
	cw, _, n := tileGrid(img.Width, img.Height)
	perm := tilePermutation(img.Width, img.Height, n)

	stream := make(ChunkStream, 0, len(priority)*n)
	for _, plane := range priority {
		for _, tile := range perm {
			tileRow, tileCol := tile/cw, tile%cw
			var chunk Chunk
			for row := 0; row < 8; row++ {
				y := tileRow*8 + row
				for col := 0; col < 8; col++ {
					x := tileCol*8 + col
					off := pixelOffset(img.Width, x, y)
					bit := getBit(img.Pix[off:off+4], plane)
					setBit(chunk[:], row*8+col, bit)
				}
			}
			stream = append(stream, chunk)
		}
	}
	return stream
}

// CollectComplex walks stream in order and returns the first limit chunks
// whose complexity is >= 0.5. A negative limit collects every such chunk.
// This is the extractor's mirror of the lockstep write Hide performs: the
// chunks a hide pass overwrote are guaranteed complexity >= 0.5, and any
// naturally-complex cover chunk beyond the ones actually used necessarily
// comes later in stream order (see DESIGN.md).
func CollectComplex(stream ChunkStream, limit int) ChunkStream {
	out := make(ChunkStream, 0)
	for _, c := range stream {
		if c.Complexity() >= 0.5 {
			out = append(out, c)
			if limit >= 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

// DeChunkify writes stream back into img's pixel buffer, inverting
// Chunkify exactly: same priority, same dimensions, same permutation.
// stream must have length len(priority)*n for img's dimensions.
func DeChunkify(stream ChunkStream, img *stegano.Image, priority BitPlanePriority) {
	cw, _, n := tileGrid(img.Width, img.Height)
	perm := tilePermutation(img.Width, img.Height, n)

	idx := 0
	for _, plane := range priority {
		for _, tile := range perm {
			tileRow, tileCol := tile/cw, tile%cw
			chunk := stream[idx]
			idx++
			for row := 0; row < 8; row++ {
				y := tileRow*8 + row
				for col := 0; col < 8; col++ {
					x := tileCol*8 + col
					off := pixelOffset(img.Width, x, y)
					bit := getBit(chunk[:], row*8+col)
					setBit(img.Pix[off:off+4], plane, bit)
				}
			}
		}
	}
}
