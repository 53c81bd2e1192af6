// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package history

import (
	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/fault"
)

// Action - kind of a recorded transaction
type Action uint8

// recorded action kinds
const (
	Transfer Action = iota
	Mint
	Burn
	Deposit
	Redeem
	actionLimit
)

var actionNames = []string{
	Transfer: "transfer",
	Mint:     "mint",
	Burn:     "burn",
	Deposit:  "deposit",
	Redeem:   "redeem",
}

// String - lower case name
func (a Action) String() string {
	if a >= actionLimit {
		return "unknown"
	}
	return actionNames[a]
}

// MarshalText - name for JSON
func (a Action) MarshalText() ([]byte, error) {
	if a >= actionLimit {
		return nil, fault.ErrUnknownAction
	}
	return []byte(a.String()), nil
}

// Tx - one recorded transaction, shared by all its participants
//
//	From      - account debited (owner for burns and *_from transfers)
//	Sender    - account that acted (spender, minter, burner)
//	Recipient - account credited, nil for burns and redeems
type Tx struct {
	_           struct{} `cbor:",toarray"`
	Action      Action
	From        account.Address
	Sender      account.Address
	Recipient   account.Address
	Amount      amount.Amount
	Denom       string
	Memo        string
	BlockTime   int64
	BlockHeight uint64
}

// counterpart as seen from viewer
func (tx *Tx) counterpart(viewer account.Address) account.Address {
	if viewer == tx.Recipient {
		if !tx.From.IsNil() {
			return tx.From
		}
		return tx.Sender
	}
	if !tx.Recipient.IsNil() {
		return tx.Recipient
	}
	return tx.Sender
}

// Entry - a history record as presented to an account
type Entry struct {
	ID          uint64          `json:"id"`
	Action      Action          `json:"action"`
	From        account.Address `json:"from"`
	Sender      account.Address `json:"sender"`
	Recipient   account.Address `json:"recipient"`
	Counterpart account.Address `json:"counterpart"`
	Amount      amount.Amount   `json:"amount"`
	Denom       string          `json:"denom"`
	Memo        string          `json:"memo,omitempty"`
	BlockTime   int64           `json:"block_time"`
	BlockHeight uint64          `json:"block_height"`
}
