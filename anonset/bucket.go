// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package anonset

import (
	"crypto/subtle"

	"github.com/fxamacker/cbor/v2"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/fault"
)

// Member - settled state of one address
type Member struct {
	_       struct{} `cbor:",toarray"`
	Address account.Address
	Balance amount.Amount
}

// Slot - one delayed write buffer entry
//
// a slot is live from the first credit to its holder until the
// holder is settled
type Slot struct {
	_       struct{} `cbor:",toarray"`
	Live    bool
	Holder  account.Address
	Amount  amount.Amount
	Pending []uint64
	Claimed uint64
}

// Bucket - the unit of storage access
type Bucket struct {
	_       struct{} `cbor:",toarray"`
	ID      uint64
	Members []Member
	Slots   []Slot
}

func newBucket(id uint64, slots int) *Bucket {
	return &Bucket{
		ID:      id,
		Members: []Member{},
		Slots:   make([]Slot, slots),
	}
}

// Member - index of the member record, -1 if not a member
func (b *Bucket) Member(addr account.Address) int {
	for i := range b.Members {
		if b.Members[i].Address == addr {
			return i
		}
	}
	return -1
}

// Balance - settled balance of a member, zero for non-members
func (b *Bucket) Balance(addr account.Address) amount.Amount {
	if i := b.Member(addr); i >= 0 {
		return b.Members[i].Balance
	}
	return amount.Zero
}

// SetBalance - overwrite a member balance, adding the member if absent
func (b *Bucket) SetBalance(addr account.Address, balance amount.Amount) {
	if i := b.Member(addr); i >= 0 {
		b.Members[i].Balance = balance
		return
	}
	b.Members = append(b.Members, Member{
		Address: addr,
		Balance: balance,
	})
}

// Slot - index of the live slot held by addr, -1 if none
//
// every slot is compared so timing does not depend on the position
// of the match
func (b *Bucket) Slot(addr account.Address) int {
	found := -1
	for i := range b.Slots {
		eq := subtle.ConstantTimeCompare(b.Slots[i].Holder[:], addr[:])
		live := 0
		if b.Slots[i].Live {
			live = 1
		}
		found = subtle.ConstantTimeSelect(eq&live, i, found)
	}
	return found
}

// FreeSlot - first slot not in use, -1 if all are live
func (b *Bucket) FreeSlot() int {
	for i := range b.Slots {
		if !b.Slots[i].Live {
			return i
		}
	}
	return -1
}

// OldestSlot - the live slot claimed earliest, -1 if none are live
func (b *Bucket) OldestSlot() int {
	oldest := -1
	for i := range b.Slots {
		if !b.Slots[i].Live {
			continue
		}
		if oldest < 0 || b.Slots[i].Claimed < b.Slots[oldest].Claimed {
			oldest = i
		}
	}
	return oldest
}

func (b *Bucket) pack() ([]byte, error) {
	return cbor.Marshal(b)
}

func unpackBucket(buffer []byte) (*Bucket, error) {
	b := &Bucket{}
	if err := cbor.Unmarshal(buffer, b); nil != err {
		return nil, fault.ErrBucketIntegrity
	}
	return b, nil
}
