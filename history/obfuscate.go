// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package history

import (
	"encoding/binary"

	"github.com/bitmark-inc/tokenledger/secret"
)

// IDBits - width of an external transaction id
const IDBits = 53

// Obfuscator - maps internal sequence numbers to external ids
//
// ids are safe as IEEE-754 doubles and reveal nothing about the
// position of the event in the account history
type Obfuscator struct {
	mask uint64
}

// NewObfuscator - bind the instance secret
func NewObfuscator(mask uint64) *Obfuscator {
	return &Obfuscator{
		mask: mask,
	}
}

// Transform - external id for an internal sequence number
func (o *Obfuscator) Transform(seq uint64) uint64 {
	first := secret.NewKeystream(beUint64(seq)).Uint64()

	s := secret.NewKeystream(beUint64(first ^ o.mask))
	_ = s.Uint64()
	second := s.Uint64()

	return second >> (64 - IDBits)
}

func beUint64(n uint64) []byte {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, n)
	return buffer
}
