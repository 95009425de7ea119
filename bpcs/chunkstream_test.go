// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

package bpcs

import (
	"math/rand"
	"testing"

	stegano "github.com/zanicar/bpcs-stegano"
)

func randomImage(t *testing.T, width, height int, seed int64) *stegano.Image {
	t.Helper()
	img := stegano.NewImage(width, height)
	r := rand.New(rand.NewSource(seed))
	r.Read(img.Pix)
	return img
}

func TestChunkifyDeChunkifyIdentity(t *testing.T) {
	img := randomImage(t, 32, 24, 1)
	original := img.Clone()

	priority := generateBitPlanePriority(stegano.DefaultCaps())
	stream := Chunkify(img, priority)

	out := stegano.NewImage(img.Width, img.Height)
	DeChunkify(stream, out, priority)

	for i := range out.Pix {
		if out.Pix[i] != original.Pix[i] {
			t.Fatalf("DeChunkify(Chunkify(img)) mismatch at byte %d: got %d want %d", i, out.Pix[i], original.Pix[i])
		}
	}
}

func TestChunkifyNonMultipleOf8Dimensions(t *testing.T) {
	img := randomImage(t, 103, 97, 2)
	priority := generateBitPlanePriority(stegano.DefaultCaps())
	cw, ch, n := tileGrid(img.Width, img.Height)
	if cw != 12 || ch != 12 || n != 144 {
		t.Fatalf("tileGrid(103,97) = (%d,%d,%d), want (12,12,144)", cw, ch, n)
	}
	stream := Chunkify(img, priority)
	if len(stream) != len(priority)*n {
		t.Fatalf("len(stream) = %d, want %d", len(stream), len(priority)*n)
	}
}

func TestDeChunkifyOnlyTouchesSelectedPlanes(t *testing.T) {
	img := randomImage(t, 16, 16, 3)
	original := img.Clone()

	caps := stegano.Caps{R: 2, G: 0, B: 0, A: 0}
	priority := generateBitPlanePriority(caps)
	stream := Chunkify(img, priority)
	for i := range stream {
		stream[i] = Chunk{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	}
	DeChunkify(stream, img, priority)

	for px := 0; px < len(img.Pix)/4; px++ {
		off := px * 4
		if img.Pix[off+1] != original.Pix[off+1] ||
			img.Pix[off+2] != original.Pix[off+2] ||
			img.Pix[off+3] != original.Pix[off+3] {
			t.Fatalf("pixel %d: channels outside caps were modified", px)
		}
		// Only the bottom 2 bits of R may have changed.
		if img.Pix[off]&0xFC != original.Pix[off]&0xFC {
			t.Fatalf("pixel %d: R bits beyond the cap were modified", px)
		}
	}
}

func TestCollectComplexRespectsLimit(t *testing.T) {
	img := randomImage(t, 64, 64, 4)
	priority := generateBitPlanePriority(stegano.DefaultCaps())
	stream := Chunkify(img, priority)

	all := CollectComplex(stream, -1)
	limited := CollectComplex(stream, 3)
	if len(limited) > 3 {
		t.Fatalf("CollectComplex(stream,3) returned %d chunks", len(limited))
	}
	if len(all) >= 3 {
		for i := 0; i < 3; i++ {
			if limited[i] != all[i] {
				t.Fatalf("CollectComplex(stream,3)[%d] != CollectComplex(stream,-1)[%d]", i, i)
			}
		}
	}
	for _, c := range all {
		if c.Complexity() < 0.5 {
			t.Fatalf("CollectComplex returned a chunk with complexity < 0.5")
		}
	}
}
