// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package allowance

import (
	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/storage"
)

// Entry - one allowance in a listing
type Entry struct {
	Owner      account.Address `json:"owner"`
	Spender    account.Address `json:"spender"`
	Amount     amount.Amount   `json:"allowance"`
	Expiration *int64          `json:"expiration,omitempty"`
}

// Given - allowances granted by owner, ordered by spender
//
// lists committed records only; returns the page and total count
func (s *Store) Given(owner account.Address, page uint32, pageSize uint32, now int64) ([]Entry, uint64, error) {
	return s.list(s.pools.Allowances, owner, page, pageSize, func(other account.Address) (account.Address, account.Address) {
		return owner, other
	}, now)
}

// Received - allowances granted to spender, ordered by owner
func (s *Store) Received(spender account.Address, page uint32, pageSize uint32, now int64) ([]Entry, uint64, error) {
	return s.list(s.pools.Received, spender, page, pageSize, func(other account.Address) (account.Address, account.Address) {
		return other, spender
	}, now)
}

func (s *Store) list(pool *storage.PoolHandle, addr account.Address, page uint32, pageSize uint32, pair func(account.Address) (account.Address, account.Address), now int64) ([]Entry, uint64, error) {
	if 0 == pageSize {
		return nil, 0, fault.ErrInvalidPageSize
	}

	start := uint64(page) * uint64(pageSize)
	end := start + uint64(pageSize)

	entries := []Entry{}
	total := uint64(0)
	err := s.trx.NewFetchCursor(pool).Prefix(addr[:]).Map(func(key []byte, value []byte) error {
		if total >= start && total < end {
			other, err := account.AddressFromBytes(key[account.AddressLength:])
			if nil != err {
				return err
			}
			owner, spender := pair(other)
			a, err := s.Get(owner, spender)
			if nil != err {
				return err
			}
			entries = append(entries, Entry{
				Owner:      owner,
				Spender:    spender,
				Amount:     a.Effective(now),
				Expiration: a.Expiration,
			})
		}
		total += 1
		return nil
	})
	if nil != err {
		return nil, 0, err
	}
	return entries, total, nil
}
