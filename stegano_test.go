// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

package stegano

import "testing"

func TestCapsValid(t *testing.T) {
	cases := []struct {
		name string
		caps Caps
		want bool
	}{
		{"default", DefaultCaps(), true},
		{"zero", Caps{}, false},
		{"single-plane", Caps{R: 1}, true},
		{"out-of-range-high", Caps{R: 9, G: 8, B: 8, A: 8}, false},
		{"out-of-range-low", Caps{R: -1, G: 8, B: 8, A: 8}, false},
	}
	for _, tc := range cases {
		if got := tc.caps.Valid(); got != tc.want {
			t.Errorf("%s: Valid() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCapsPlaneCount(t *testing.T) {
	if got := DefaultCaps().PlaneCount(); got != 32 {
		t.Errorf("DefaultCaps().PlaneCount() = %d, want 32", got)
	}
	caps := Caps{R: 7, G: 6, B: 5, A: 4}
	if got := caps.PlaneCount(); got != 22 {
		t.Errorf("PlaneCount() = %d, want 22", got)
	}
}

func TestHideStatsOverflowed(t *testing.T) {
	s := HideStats{MessageSize: 10, MessageBytesHidden: 10}
	if s.Overflowed() {
		t.Errorf("Overflowed() = true for a fully hidden message")
	}
	s.MessageBytesHidden = 9
	if !s.Overflowed() {
		t.Errorf("Overflowed() = false when fewer bytes were hidden than the message size")
	}
}

func TestImageCloneIsIndependent(t *testing.T) {
	img := NewImage(2, 2)
	img.Pix[0] = 0x42
	clone := img.Clone()
	clone.Pix[0] = 0x99
	if img.Pix[0] != 0x42 {
		t.Fatalf("mutating the clone affected the original")
	}
	if len(clone.Pix) != len(img.Pix) {
		t.Fatalf("clone has a different pixel buffer length")
	}
}
