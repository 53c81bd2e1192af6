// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package secret - key derivation and symmetric primitives
//
// all ledger secrets are derived from one master secret held in the
// ledger context; this package never stores anything
package secret

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/fault"
)

// MasterLength - bytes of entropy in the master secret
const MasterLength = 32

// IDLength - bytes in a notification id
const IDLength = 32

// labels for derived keys
const (
	internalInfo     = "contract_internal_secret"
	trieInfo         = "anonymity_set_hash_key"
	obfuscatorInfo   = "tx_id_obfuscation"
	notificationInfo = "notification_seed"
	sealInfo         = "notification_encryption"
)

// Keys - derived key set
type Keys struct {
	internal [32]byte
}

// New - derive the key set from a master secret
func New(master []byte) (*Keys, error) {
	if MasterLength != len(master) {
		return nil, fault.ErrInvalidSecret
	}
	k := &Keys{}
	if err := derive(sha256.New, master, nil, internalInfo, k.internal[:]); nil != err {
		return nil, err
	}
	return k, nil
}

// TrieKey - key for the anonymity set address hash
func (k *Keys) TrieKey() []byte {
	key := make([]byte, 32)
	err := derive(sha256.New, k.internal[:], nil, trieInfo, key)
	fault.PanicIfError("secret.TrieKey", err)
	return key
}

// ObfuscationSecret - the 64 bit transaction id mask
func (k *Keys) ObfuscationSecret() uint64 {
	buffer := make([]byte, 8)
	err := derive(sha256.New, k.internal[:], nil, obfuscatorInfo, buffer)
	fault.PanicIfError("secret.ObfuscationSecret", err)
	return binary.BigEndian.Uint64(buffer)
}

// Seed - per-recipient notification seed
func (k *Keys) Seed(addr account.Address) ([]byte, error) {
	seed := make([]byte, 32)
	if err := derive(sha256.New, k.internal[:], addr[:], notificationInfo, seed); nil != err {
		return nil, err
	}
	return seed, nil
}

// ID - notification id for one channel of one transaction
func (k *Keys) ID(seed []byte, channel string, txHash string) ([]byte, error) {
	mac := hmac.New(sha256.New, seed)
	_, _ = io.WriteString(mac, channel+":"+txHash)
	return mac.Sum(nil), nil
}

// Seal - encrypt a notification payload
//
// the nonce is taken from the notification id so a recipient holding
// the seed can recompute everything from the transaction hash
func (k *Keys) Seal(seed []byte, channel string, txHash string, plaintext []byte) ([]byte, error) {
	id, err := k.ID(seed, channel, txHash)
	if nil != err {
		return nil, err
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if err := derive(sha256.New, seed, id, sealInfo, key); nil != err {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if nil != err {
		return nil, err
	}
	return aead.Seal(nil, id[:chacha20poly1305.NonceSize], plaintext, nil), nil
}

// Open - decrypt a notification payload, the inverse of Seal
func (k *Keys) Open(seed []byte, channel string, txHash string, ciphertext []byte) ([]byte, error) {
	id, err := k.ID(seed, channel, txHash)
	if nil != err {
		return nil, err
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if err := derive(sha256.New, seed, id, sealInfo, key); nil != err {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if nil != err {
		return nil, err
	}
	return aead.Open(nil, id[:chacha20poly1305.NonceSize], ciphertext, nil)
}

// Expand - n pseudorandom bytes from the call's entropy
func (k *Keys) Expand(random []byte, info string, n int) ([]byte, error) {
	buffer := make([]byte, n)
	if err := derive(sha512.New, random, nil, info, buffer); nil != err {
		return nil, err
	}
	return buffer, nil
}
