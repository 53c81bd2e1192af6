// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notification

import (
	"crypto/sha256"
)

// bloom filter shape
const (
	BloomBits   = 512
	BloomBytes  = BloomBits / 8
	bloomHashes = 15
	bloomIndex  = 9 // bits per index, 2^9 == BloomBits
)

// bit positions selected by a notification id
func bloomPositions(id []byte) []int {
	digest := sha256.Sum256(id)
	positions := make([]int, bloomHashes)
	for i := range positions {
		n := 0
		for b := 0; b < bloomIndex; b += 1 {
			bit := i*bloomIndex + b
			n = n<<1 | int(digest[bit/8]>>(7-uint(bit%8))&1)
		}
		positions[i] = n
	}
	return positions
}

func bloomAdd(filter []byte, id []byte) {
	for _, p := range bloomPositions(id) {
		filter[p/8] |= 0x80 >> uint(p%8)
	}
}

// MayContain - test a packet's filter for a notification id
//
// false positives are possible, false negatives are not
func MayContain(packet []byte, id []byte) bool {
	if len(packet) < BloomBytes {
		return false
	}
	for _, p := range bloomPositions(id) {
		if 0 == packet[p/8]&(0x80>>uint(p%8)) {
			return false
		}
	}
	return true
}
