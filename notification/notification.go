// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package notification - push notifications for ledger events
//
// Direct notifications are addressed to one recipient: a fixed size
// CBOR tuple sealed with a key only the recipient can derive.  Group
// notifications carry a batch in a packet of constant shape: a bloom
// filter header followed by a fixed number of slots, unused slots
// filled with decoys, so the packet does not reveal how many accounts
// were involved.
package notification

import (
	"encoding/base64"
	"fmt"

	"github.com/bitmark-inc/tokenledger/account"
)

// channel names
const (
	ChannelReceived   = "recvd"
	ChannelSpent      = "spent"
	ChannelAllowance  = "allowance"
	ChannelMultiRecvd = "multirecvd"
	ChannelMultiSpent = "multispent"
)

// LabelPrefix - prefix of every notification event attribute
const LabelPrefix = "snip52:"

// Crypto - key derivation and encryption used by the encoder
type Crypto interface {
	Seed(addr account.Address) ([]byte, error)
	ID(seed []byte, channel string, txHash string) ([]byte, error)
	Seal(seed []byte, channel string, txHash string, plaintext []byte) ([]byte, error)
	Expand(random []byte, info string, n int) ([]byte, error)
}

// Notification - one encoded notification
type Notification struct {
	Channel   string
	Recipient account.Address
	ID        []byte
	Data      []byte
}

// Label - event attribute key for a direct notification
func (n *Notification) Label() string {
	return LabelPrefix + base64.StdEncoding.EncodeToString(n.ID)
}

// Encoder - builds notifications for a transaction
//
// an encoder serves one call: every notification it issues to the
// same recipient on the same channel derives from a distinct input so
// no id, key or nonce is ever used twice
type Encoder struct {
	crypto  Crypto
	issued  map[string]int // count per channel and recipient
	packets map[string]int // count per group channel
}

// NewEncoder - create an encoder
func NewEncoder(crypto Crypto) *Encoder {
	return &Encoder{
		crypto:  crypto,
		issued:  make(map[string]int),
		packets: make(map[string]int),
	}
}

// Occurrence - derivation input of the n'th notification of a call
//
// the first notification uses the transaction hash itself, a
// recipient scans n = 1, 2, ... for any further ones
func Occurrence(txHash string, n int) string {
	if 0 == n {
		return txHash
	}
	return fmt.Sprintf("%s:%d", txHash, n)
}

// next derivation input for recipient on channel
func (e *Encoder) next(channel string, recipient account.Address, txHash string) string {
	key := channel + ":" + string(recipient[:])
	n := e.issued[key]
	e.issued[key] = n + 1
	return Occurrence(txHash, n)
}
