// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

package bpcs

import (
	stegano "github.com/zanicar/bpcs-stegano"
)

// BitPlanePriority is an ordered list of bit-plane indices in [0,32). Bit
// index 8*c+b identifies bit b (0=MSB, 7=LSB) of channel c (0=R, 1=G, 2=B,
// 3=A).
type BitPlanePriority []int

// capOf returns the cap for channel index c (0=R,1=G,2=B,3=A).
func capOf(caps stegano.Caps, c int) int {
	switch c {
	case 0:
		return caps.R
	case 1:
		return caps.G
	case 2:
		return caps.B
	default:
		return caps.A
	}
}

// generateBitPlanePriority builds the ordered bit-plane list for the given
// caps: LSB-first, one plane at a time, rotating R->G->B->A, including
// channel c's plane at step i only while i < cap(c). With all caps at 8
// this produces the canonical order {7,15,23,31, 6,14,22,30, ..., 0,8,16,24}.
func generateBitPlanePriority(caps stegano.Caps) BitPlanePriority {
	var priority BitPlanePriority
	for i := 0; i < 8; i++ {
		for c := 0; c < 4; c++ {
			if i < capOf(caps, c) {
				priority = append(priority, 8*c+(7-i))
			}
		}
	}
	return priority
}
