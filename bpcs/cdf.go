// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

package bpcs

import "sort"

// cdfNotFound is the sentinel MaxThresholdToStore returns when n exceeds
// the total number of chunks the stream contains.
const cdfNotFound = -1.0

// thresholdGranularitySteps is the number of steps per unit complexity:
// candidate thresholds are walked at 1/thresholdGranularitySteps when
// searching for the maximum threshold that still stores n chunks.
const thresholdGranularitySteps = 512

// CDF is an inverse cumulative distribution table over chunk complexity:
// CDF(t) = the number of chunks whose complexity is >= t. Because a
// chunk's complexity is always transitions/112 for some integer
// transitions in [0,112], there are at most 113 distinct values, so exact
// floating-point equality is safe for the histogram keys.
type CDF struct {
	thresholds []float64 // ascending, only values actually present
	counts     []int     // counts[i] = number of chunks with complexity >= thresholds[i]
}

// BuildCDF constructs the histogram and inverse-cumulative table for the
// given chunk stream.
func BuildCDF(stream ChunkStream) *CDF {
	hist := make(map[float64]int)
	for _, c := range stream {
		hist[c.Complexity()]++
	}

	thresholds := make([]float64, 0, len(hist))
	for t := range hist {
		thresholds = append(thresholds, t)
	}
	sort.Float64s(thresholds)

	counts := make([]int, len(thresholds))
	running := 0
	for i := len(thresholds) - 1; i >= 0; i-- {
		running += hist[thresholds[i]]
		counts[i] = running
	}

	return &CDF{thresholds: thresholds, counts: counts}
}

// Query returns the number of chunks with complexity >= threshold: the
// count stored at the smallest recorded threshold that is itself >=
// threshold, or 0 if threshold exceeds every recorded value.
func (cdf *CDF) Query(threshold float64) int {
	idx := sort.Search(len(cdf.thresholds), func(i int) bool {
		return cdf.thresholds[i] >= threshold
	})
	if idx == len(cdf.thresholds) {
		return 0
	}
	return cdf.counts[idx]
}

// MaxThresholdToStore returns the largest threshold t, walked at 1/512
// granularity downward from 1.0, such that Query(t) >= n. It returns the
// sentinel cdfNotFound if n exceeds the total number of chunks recorded.
func (cdf *CDF) MaxThresholdToStore(n int) float64 {
	total := 0
	if len(cdf.counts) > 0 {
		total = cdf.counts[0]
	}
	if n > total {
		return cdfNotFound
	}
	for step := thresholdGranularitySteps; step >= 0; step-- {
		t := float64(step) / float64(thresholdGranularitySteps)
		if cdf.Query(t) >= n {
			return t
		}
	}
	return cdfNotFound
}

// clamp restricts v to [lo,hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CalculateMaxThreshold returns the complexity threshold to use when
// embedding m chunks into the given chunk stream: the largest threshold
// that still stores at least m chunks, clamped to [0.0, 0.5]. 0.5 is the
// BPCS decidability bound: chunks with complexity < 0.5 are, once
// conjugated, indistinguishable from the same chunk left un-conjugated.
func CalculateMaxThreshold(m int, stream ChunkStream) float64 {
	cdf := BuildCDF(stream)
	return clamp(cdf.MaxThresholdToStore(m), 0.0, 0.5)
}
