// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package secret_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/secret"
)

var master = bytes.Repeat([]byte{0x5a}, secret.MasterLength)

func TestNew(t *testing.T) {
	_, err := secret.New([]byte{1, 2, 3})
	assert.Equal(t, fault.ErrInvalidSecret, err, "short secret accepted")

	k1, err := secret.New(master)
	require.Nil(t, err, "new error")
	k2, _ := secret.New(master)
	assert.Equal(t, k1.TrieKey(), k2.TrieKey(), "derivation not deterministic")
	assert.Equal(t, k1.ObfuscationSecret(), k2.ObfuscationSecret(), "derivation not deterministic")

	other, _ := secret.New(bytes.Repeat([]byte{0x01}, secret.MasterLength))
	assert.NotEqual(t, k1.TrieKey(), other.TrieKey(), "different masters share a key")
}

func TestSealOpen(t *testing.T) {
	k, _ := secret.New(master)

	seed, err := k.Seed(account.Derive("alice"))
	require.Nil(t, err, "seed error")
	otherSeed, _ := k.Seed(account.Derive("bob"))
	assert.NotEqual(t, seed, otherSeed, "seeds collide")

	id, err := k.ID(seed, "recvd", "txhash")
	require.Nil(t, err, "id error")
	assert.Equal(t, secret.IDLength, len(id), "wrong id length")

	plaintext := []byte("some notification")
	sealed, err := k.Seal(seed, "recvd", "txhash", plaintext)
	require.Nil(t, err, "seal error")
	assert.NotEqual(t, plaintext, sealed[:len(plaintext)], "not encrypted")

	opened, err := k.Open(seed, "recvd", "txhash", sealed)
	assert.Nil(t, err, "open error")
	assert.Equal(t, plaintext, opened, "round trip")

	_, err = k.Open(otherSeed, "recvd", "txhash", sealed)
	assert.NotNil(t, err, "opened with the wrong seed")
}

func TestKeystream(t *testing.T) {
	a := secret.NewKeystream([]byte("seed"))
	b := secret.NewKeystream([]byte("seed"))
	c := secret.NewKeystream([]byte("other"))

	x := a.Uint64()
	assert.Equal(t, x, b.Uint64(), "not deterministic")
	assert.NotEqual(t, x, c.Uint64(), "seeds share a stream")
	assert.NotEqual(t, x, a.Uint64(), "stream does not advance")
}

func TestExpand(t *testing.T) {
	k, _ := secret.New(master)
	d1, err := k.Expand([]byte("entropy"), "multirecvd:decoys", 300)
	require.Nil(t, err, "expand error")
	assert.Equal(t, 300, len(d1), "wrong length")

	d2, _ := k.Expand([]byte("entropy"), "multispent:decoys", 300)
	assert.NotEqual(t, d1, d2, "labels not separated")
}
