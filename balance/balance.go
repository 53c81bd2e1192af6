// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package balance - settled account balances
//
// balances are kept in the member records of the anonymity set
// buckets, so every change rewrites the whole bucket
package balance

import (
	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/anonset"
)

// Delta - signed change to a balance
type Delta struct {
	Amount   amount.Amount
	Negative bool
}

// Credit - a positive delta
func Credit(a amount.Amount) Delta {
	return Delta{Amount: a}
}

// Debit - a negative delta
func Debit(a amount.Amount) Delta {
	return Delta{Amount: a, Negative: true}
}

// Apply - the new balance, fault.ErrOverflow or fault.ErrUnderflow
// if the result is out of range
func (d Delta) Apply(balance amount.Amount) (amount.Amount, error) {
	if d.Negative {
		return balance.Sub(d.Amount)
	}
	return balance.Add(d.Amount)
}

// ApplyTo - change a member balance inside an already loaded bucket
func ApplyTo(b *anonset.Bucket, addr account.Address, d Delta) (amount.Amount, error) {
	r, err := d.Apply(b.Balance(addr))
	if nil != err {
		return amount.Zero, err
	}
	b.SetBalance(addr, r)
	return r, nil
}

// Store - settled balances
type Store struct {
	index *anonset.Index
}

// New - balance store over an index
func New(index *anonset.Index) *Store {
	return &Store{
		index: index,
	}
}

// Get - settled balance, zero for unknown addresses
func (s *Store) Get(addr account.Address) (amount.Amount, error) {
	b, err := s.index.View(addr)
	if nil != err {
		return amount.Zero, err
	}
	return b.Balance(addr), nil
}

// ApplyDelta - change the settled balance
//
// on error nothing is written
func (s *Store) ApplyDelta(addr account.Address, d Delta) (amount.Amount, error) {
	result := amount.Zero
	err := s.index.Update(addr, func(b *anonset.Bucket) error {
		r, err := ApplyTo(b, addr, d)
		result = r
		return err
	})
	if nil != err {
		return amount.Zero, err
	}
	return result, nil
}
