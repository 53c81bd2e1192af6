// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/allowance"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/anonset"
	"github.com/bitmark-inc/tokenledger/history"
)

// TokenInfo - public token description
type TokenInfo struct {
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	Decimals    int            `json:"decimals"`
	TotalSupply *amount.Amount `json:"total_supply,omitempty"`
}

// Supply - audit of where the total supply is held
type Supply struct {
	Settled  amount.Amount `json:"settled"`
	Pending  amount.Amount `json:"pending"`
	Legacy   amount.Amount `json:"legacy"`
	Total    amount.Amount `json:"total"`
	Balanced bool          `json:"balanced"`
}

// Balance - settled plus buffered balance of addr
//
// a legacy balance that has not been migrated is included
func (l *Ledger) Balance(addr account.Address) (amount.Amount, error) {
	result := amount.Zero
	err := l.view(func(s *session) error {
		b, err := s.buffer.Balance(addr)
		if nil != err {
			return err
		}
		legacy, err := s.legacyBalance(addr)
		if nil != err {
			return err
		}
		result, err = b.Add(legacy)
		return err
	})
	return result, err
}

// Transactions - one page of the history of addr, newest first
//
// buffered transactions are included ahead of the settled ones
func (l *Ledger) Transactions(addr account.Address, page uint32, pageSize uint32) ([]history.Entry, uint64, error) {
	var entries []history.Entry
	total := uint64(0)
	err := l.view(func(s *session) error {
		_, pending, err := s.buffer.Pending(addr)
		if nil != err {
			return err
		}
		entries, total, err = s.history.Query(addr, page, pageSize, pending)
		return err
	})
	return entries, total, err
}

// Allowance - what spender may currently take from owner
func (l *Ledger) Allowance(owner account.Address, spender account.Address, now int64) (*allowance.Entry, error) {
	var entry *allowance.Entry
	err := l.view(func(s *session) error {
		a, err := s.allowances.Get(owner, spender)
		if nil != err {
			return err
		}
		entry = &allowance.Entry{
			Owner:      owner,
			Spender:    spender,
			Amount:     a.Effective(now),
			Expiration: a.Expiration,
		}
		return nil
	})
	return entry, err
}

// AllowancesGiven - allowances granted by owner
func (l *Ledger) AllowancesGiven(owner account.Address, page uint32, pageSize uint32, now int64) ([]allowance.Entry, uint64, error) {
	var entries []allowance.Entry
	total := uint64(0)
	err := l.view(func(s *session) (err error) {
		entries, total, err = s.allowances.Given(owner, page, pageSize, now)
		return
	})
	return entries, total, err
}

// AllowancesReceived - allowances granted to spender
func (l *Ledger) AllowancesReceived(spender account.Address, page uint32, pageSize uint32, now int64) ([]allowance.Entry, uint64, error) {
	var entries []allowance.Entry
	total := uint64(0)
	err := l.view(func(s *session) (err error) {
		entries, total, err = s.allowances.Received(spender, page, pageSize, now)
		return
	})
	return entries, total, err
}

// TokenInfo - name, symbol, decimals and total supply
func (l *Ledger) TokenInfo() (*TokenInfo, error) {
	info := &TokenInfo{
		Name:     l.settings.Name,
		Symbol:   l.settings.Symbol,
		Decimals: l.settings.Decimals,
	}
	err := l.view(func(s *session) error {
		total := s.context.TotalSupply
		info.TotalSupply = &total
		return nil
	})
	return info, err
}

// Audit - add up every committed balance and buffered amount
//
// Balanced is true when they account for the total supply
func (l *Ledger) Audit() (*Supply, error) {
	supply := &Supply{}
	err := l.view(func(s *session) error {
		err := s.index.Walk(func(b *anonset.Bucket) error {
			for _, m := range b.Members {
				supply.Settled = supply.Settled.SaturatingAdd(m.Balance)
			}
			for _, slot := range b.Slots {
				if slot.Live {
					supply.Pending = supply.Pending.SaturatingAdd(slot.Amount)
				}
			}
			return nil
		})
		if nil != err {
			return err
		}

		supply.Legacy = s.context.LegacySupply
		supply.Total = s.context.TotalSupply

		held := supply.Settled.SaturatingAdd(supply.Pending).SaturatingAdd(supply.Legacy)
		supply.Balanced = 0 == held.Cmp(supply.Total)
		return nil
	})
	return supply, err
}
