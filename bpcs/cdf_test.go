// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

package bpcs

import "testing"

func TestBuildCDFQueryMonotonic(t *testing.T) {
	stream := ChunkStream{
		{0, 0, 0, 0, 0, 0, 0, 0},                                 // complexity 0
		{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA},         // 0.5
		checkerboard,                                             // 1.0
		{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},         // 0
	}
	cdf := BuildCDF(stream)

	if got := cdf.Query(0); got != 4 {
		t.Fatalf("Query(0) = %d, want 4", got)
	}
	if got := cdf.Query(0.5); got != 2 {
		t.Fatalf("Query(0.5) = %d, want 2", got)
	}
	if got := cdf.Query(1.0); got != 1 {
		t.Fatalf("Query(1.0) = %d, want 1", got)
	}
	if got := cdf.Query(1.01); got != 0 {
		t.Fatalf("Query(1.01) = %d, want 0", got)
	}
}

func TestMaxThresholdToStoreNotFound(t *testing.T) {
	stream := ChunkStream{{0, 0, 0, 0, 0, 0, 0, 0}}
	cdf := BuildCDF(stream)
	if got := cdf.MaxThresholdToStore(2); got != cdfNotFound {
		t.Fatalf("MaxThresholdToStore(2) = %v, want sentinel %v", got, cdfNotFound)
	}
}

func TestCalculateMaxThresholdClampedTo0_5(t *testing.T) {
	stream := make(ChunkStream, 10)
	for i := range stream {
		stream[i] = checkerboard // every chunk has complexity 1.0
	}
	got := CalculateMaxThreshold(5, stream)
	if got != 0.5 {
		t.Fatalf("CalculateMaxThreshold with an all-maximal-complexity stream = %v, want 0.5 (the decidability clamp)", got)
	}
}

func TestCalculateMaxThresholdPicksLargestFeasible(t *testing.T) {
	stream := ChunkStream{
		{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}, // 0.5
		{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}, // 0.5
		{0, 0, 0, 0, 0, 0, 0, 0},                         // 0
	}
	got := CalculateMaxThreshold(2, stream)
	if got != 0.5 {
		t.Fatalf("CalculateMaxThreshold(2, ...) = %v, want 0.5", got)
	}
	got = CalculateMaxThreshold(3, stream)
	if got != 0 {
		t.Fatalf("CalculateMaxThreshold(3, ...) = %v, want 0 (only the zero chunk extends coverage to 3)", got)
	}
}
