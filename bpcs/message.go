// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

package bpcs

import (
	"encoding/binary"
	"errors"

	stegano "github.com/zanicar/bpcs-stegano"
)

// SIGNATURE marks a valid header chunk: it follows the conjugation byte in
// chunk 0 of the framed message.
var SIGNATURE = [3]byte{0x2F, 0x64, 0xA9}

// MAGIC14 is split across the two magic-signature chunks (the first 7
// bytes of each); their 8th byte packs the caps used at hide time.
var MAGIC14 = [14]byte{
	0x35, 0xDB, 0xAA, 0xD5, 0x0A, 0xB7, 0x4C,
	0x55, 0xB3, 0x52, 0xB5, 0xAA, 0x37, 0x55,
}

// headerOverheadBytes is the number of payload-capacity bytes the first
// group spends on signature, size and the two magic chunks, before any
// payload byte is written: 3 (signature) + 4 (size) + 16 (two magic
// chunks) = 23.
const headerOverheadBytes = 23

// groupPayloadBytes is the number of payload-capable bytes a single
// 8-chunk group carries: 64 raw bytes minus the one conjugation-map byte
// chunk 0 reserves.
const groupPayloadBytes = 63

var (
	// ErrInvalidSignature is returned when a header chunk's signature
	// bytes do not match SIGNATURE.
	ErrInvalidSignature = errors.New("bpcs: invalid signature")
	// ErrMagicNotFound is returned when the two magic chunks cannot be
	// located in the chunk stream.
	ErrMagicNotFound = errors.New("bpcs: magic chunks not found")
)

// payloadBytesInFlatRange returns how many payload bytes are represented
// within the first limit bytes of the flat (chunk-major) byte view of a
// framed message, replaying the same group-boundary skip logic
// FormatMessage and DeformatMessage use. It is used by the engine to
// compute how much of a message actually made it into the cover image
// when embedding stops short (overflow).
func payloadBytesInFlatRange(limit int) int {
	count := 0
	pos := 3 * 8
	for pos < limit {
		if pos%64 == 0 {
			pos++
			continue
		}
		count++
		pos++
	}
	return count
}

// chunkCountForPayload returns the total number of 8x8 chunks a payload of
// the given size requires once framed: ceil((headerOverheadBytes+size)/groupPayloadBytes)
// groups, 8 chunks per group.
func chunkCountForPayload(size int) int {
	formattedBytes := headerOverheadBytes + size
	groups := (formattedBytes + groupPayloadBytes - 1) / groupPayloadBytes
	if groups < 1 {
		groups = 1
	}
	return 8 * groups
}

// FormatMessage frames payload into a ChunkStream: a size header chunk
// (conjugation byte, SIGNATURE, big-endian size), two magic chunks (MAGIC14
// halves with caps packed into their last byte) and the payload bytes,
// reserving one conjugation-map byte per 8-chunk group. Every chunk in the
// returned stream has complexity >= 0.5 once conjugateGroup has run.
func FormatMessage(payload []byte, caps stegano.Caps) ChunkStream {
	totalChunks := chunkCountForPayload(len(payload))
	chunks := make(ChunkStream, totalChunks)

	chunks[0][1] = SIGNATURE[0]
	chunks[0][2] = SIGNATURE[1]
	chunks[0][3] = SIGNATURE[2]
	binary.BigEndian.PutUint32(chunks[0][4:8], uint32(len(payload)))

	copy(chunks[1][0:7], MAGIC14[0:7])
	chunks[1][7] = byte(caps.R<<4) | byte(caps.G)
	copy(chunks[2][0:7], MAGIC14[7:14])
	chunks[2][7] = byte(caps.B<<4) | byte(caps.A)

	pos := 3 * 8
	pi := 0
	for pi < len(payload) {
		if pos%64 == 0 {
			pos++
			continue
		}
		chunks[pos/8][pos%8] = payload[pi]
		pos++
		pi++
	}

	groups := totalChunks / 8
	for g := 0; g < groups; g++ {
		conjugateGroup(chunks[g*8 : g*8+8])
	}

	return chunks
}

// conjugateGroup applies the per-group conjugation map to an 8-chunk
// group in place: every chunk 1..7 with complexity < 0.5 is conjugated and
// its bit recorded in chunk 0's first byte (bits 1..7, bit 0 left zero);
// finally chunk 0 itself is conjugated if its own complexity (including
// the freshly written map byte) is below 0.5, and that decision is
// recorded in bit 0 (the MSB) by the conjugation itself.
func conjugateGroup(group []Chunk) {
	var mapByte byte
	for i := 1; i < 8; i++ {
		if group[i].Complexity() < 0.5 {
			group[i] = group[i].Conjugate()
			buf := [1]byte{mapByte}
			setBit(buf[:], i, 1)
			mapByte = buf[0]
		}
	}
	group[0][0] = mapByte
	if group[0].Complexity() < 0.5 {
		group[0] = group[0].Conjugate()
	}
}

// deconjugateGroup inverts conjugateGroup in place.
func deconjugateGroup(group []Chunk) {
	if getBit(group[0][:1], 0) == 1 {
		group[0] = group[0].Conjugate()
	}
	mapByte := group[0][0]
	for i := 1; i < 8; i++ {
		buf := [1]byte{mapByte}
		if getBit(buf[:], i) == 1 {
			group[i] = group[i].Conjugate()
		}
	}
}

// DeformatMessage reverses FormatMessage: it de-conjugates every group,
// verifies the signature, reads the declared payload size (clamped to
// what the chunk count can actually represent) and streams the payload
// bytes back out, skipping the bytes reserved for signature, size, magic
// chunks and per-group conjugation maps.
func DeformatMessage(fm ChunkStream) ([]byte, error) {
	if len(fm) < 8 {
		return nil, ErrInvalidSignature
	}
	groups := len(fm) / 8
	work := make(ChunkStream, groups*8)
	copy(work, fm[:groups*8])

	for g := 0; g < groups; g++ {
		deconjugateGroup(work[g*8 : g*8+8])
	}

	header := work[0]
	if header[1] != SIGNATURE[0] || header[2] != SIGNATURE[1] || header[3] != SIGNATURE[2] {
		return nil, ErrInvalidSignature
	}
	declaredSize := int(binary.BigEndian.Uint32(header[4:8]))

	maxPayload := groups*groupPayloadBytes - headerOverheadBytes
	if maxPayload < 0 {
		maxPayload = 0
	}
	actual := declaredSize
	if actual > maxPayload {
		actual = maxPayload
	}
	if actual < 0 {
		actual = 0
	}

	payload := make([]byte, 0, actual)
	pos := 3 * 8
	for len(payload) < actual {
		if pos%64 == 0 {
			pos++
			continue
		}
		payload = append(payload, work[pos/8][pos%8])
		pos++
	}
	return payload, nil
}

// parseMagicCaps reads the caps packed into a pair of decoded (already
// de-conjugated) magic chunks, verifying both against MAGIC14. It returns
// false if either chunk's first 7 bytes do not match.
func parseMagicCaps(magic0, magic1 Chunk) (stegano.Caps, bool) {
	for i := 0; i < 7; i++ {
		if magic0[i] != MAGIC14[i] || magic1[i] != MAGIC14[7+i] {
			return stegano.Caps{}, false
		}
	}
	caps := stegano.Caps{
		R: int(magic0[7] >> 4),
		G: int(magic0[7] & 0x0F),
		B: int(magic1[7] >> 4),
		A: int(magic1[7] & 0x0F),
	}
	return caps, true
}
