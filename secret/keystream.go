// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package secret

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/chacha20"

	"github.com/bitmark-inc/tokenledger/fault"
)

// Keystream - deterministic ChaCha20 generator
type Keystream struct {
	cipher *chacha20.Cipher
}

// NewKeystream - generator keyed by SHA-256 of the seed
func NewKeystream(seed []byte) *Keystream {
	key := sha256.Sum256(seed)
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	fault.PanicIfError("secret.NewKeystream", err)
	return &Keystream{cipher: c}
}

// Read - fill the buffer with keystream bytes
func (s *Keystream) Read(buffer []byte) (int, error) {
	for i := range buffer {
		buffer[i] = 0
	}
	s.cipher.XORKeyStream(buffer, buffer)
	return len(buffer), nil
}

// Uint64 - next 8 keystream bytes as big endian
func (s *Keystream) Uint64() uint64 {
	var buffer [8]byte
	_, _ = s.Read(buffer[:])
	return binary.BigEndian.Uint64(buffer[:])
}
