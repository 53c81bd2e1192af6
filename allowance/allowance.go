// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package allowance - spending permissions granted by owners
//
// an expired allowance behaves as zero; increases and decreases on an
// expired allowance start again from zero
package allowance

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/storage"
)

// Allowance - stored permission
type Allowance struct {
	_          struct{} `cbor:",toarray"`
	Amount     amount.Amount
	Expiration *int64 // unix seconds, nil for no expiry
}

// IsExpired - true once now is past the expiration
func (a *Allowance) IsExpired(now int64) bool {
	return nil != a.Expiration && now > *a.Expiration
}

// Effective - the amount that can be spent at time now
func (a *Allowance) Effective(now int64) amount.Amount {
	if a.IsExpired(now) {
		return amount.Zero
	}
	return a.Amount
}

// Pools - storage used by the allowance store
type Pools struct {
	Allowances *storage.PoolHandle // owner ++ spender → allowance
	Received   *storage.PoolHandle // spender ++ owner → marker
}

// Store - allowances bound to one transaction
type Store struct {
	trx   storage.Transaction
	pools Pools
}

// New - bind the store to the current transaction
func New(trx storage.Transaction, pools Pools) *Store {
	return &Store{
		trx:   trx,
		pools: pools,
	}
}

// Get - the stored allowance, zero if none was ever granted
func (s *Store) Get(owner account.Address, spender account.Address) (*Allowance, error) {
	buffer := s.trx.Get(s.pools.Allowances, pairKey(owner, spender))
	if nil == buffer {
		return &Allowance{Amount: amount.Zero}, nil
	}
	return unpack(buffer)
}

// Increase - add delta, clamped to the maximum amount
//
// the expiration is always replaced by the supplied value
func (s *Store) Increase(owner account.Address, spender account.Address, delta amount.Amount, expiration *int64, now int64) (*Allowance, error) {
	a, err := s.Get(owner, spender)
	if nil != err {
		return nil, err
	}
	a.Amount = a.Effective(now).SaturatingAdd(delta)
	a.Expiration = expiration
	return a, s.put(owner, spender, a)
}

// Decrease - subtract delta, floored at zero
//
// the expiration is always replaced by the supplied value
func (s *Store) Decrease(owner account.Address, spender account.Address, delta amount.Amount, expiration *int64, now int64) (*Allowance, error) {
	a, err := s.Get(owner, spender)
	if nil != err {
		return nil, err
	}
	a.Amount = a.Effective(now).SaturatingSub(delta)
	a.Expiration = expiration
	return a, s.put(owner, spender, a)
}

// Consume - spend value from the allowance
func (s *Store) Consume(owner account.Address, spender account.Address, value amount.Amount, now int64) (*Allowance, error) {
	a, err := s.Get(owner, spender)
	if nil != err {
		return nil, err
	}
	remaining, err := a.Effective(now).Sub(value)
	if nil != err {
		return nil, fault.ErrInsufficientAllowance
	}
	a.Amount = remaining
	return a, s.put(owner, spender, a)
}

func (s *Store) put(owner account.Address, spender account.Address, a *Allowance) error {
	buffer, err := cbor.Marshal(a)
	if nil != err {
		return err
	}
	s.trx.Put(s.pools.Allowances, pairKey(owner, spender), buffer)
	s.trx.Put(s.pools.Received, pairKey(spender, owner), []byte{1})
	return nil
}

func unpack(buffer []byte) (*Allowance, error) {
	a := &Allowance{}
	if err := cbor.Unmarshal(buffer, a); nil != err {
		return nil, fmt.Errorf("allowance: %w", fault.ErrInvalidRecord)
	}
	return a, nil
}

func pairKey(first account.Address, second account.Address) []byte {
	key := make([]byte, 2*account.AddressLength)
	copy(key, first[:])
	copy(key[account.AddressLength:], second[:])
	return key
}
