// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"fmt"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/balance"
	"github.com/bitmark-inc/tokenledger/fault"
)

var migratedMark = []byte{1}

// MigrateIn - move the legacy balance of addr into the balance store
func (l *Ledger) MigrateIn(addr account.Address) error {
	return l.update("migrate", func(s *session) error {
		return s.migrate(addr)
	})
}

// ImportLegacy - add to the legacy balance of addr
//
// used to seed balances kept outside the anonymity set; the amount
// counts towards the total supply
func (l *Ledger) ImportLegacy(addr account.Address, value amount.Amount) error {
	return l.update("import", func(s *session) error {
		if s.trx.Has(l.db.Pool.Migrated, addr[:]) {
			return fault.ErrAlreadyMigrated
		}
		current, err := s.legacyBalance(addr)
		if nil != err {
			return err
		}
		legacy, err := current.Add(value)
		if nil != err {
			return err
		}
		total, err := s.context.TotalSupply.Add(value)
		if nil != err {
			return err
		}
		s.context.TotalSupply = total
		s.context.LegacySupply = s.context.LegacySupply.SaturatingAdd(value)
		s.trx.Put(l.db.Pool.LegacyBalances, addr[:], legacy.Bytes())
		return nil
	})
}

func (s *session) migrate(addr account.Address) error {
	pool := &s.ledger.db.Pool
	if s.trx.Has(pool.Migrated, addr[:]) {
		return fault.ErrAlreadyMigrated
	}
	if !s.trx.Has(pool.LegacyBalances, addr[:]) {
		return fault.ErrNoLegacyBalance
	}
	legacy, err := s.legacyBalance(addr)
	if nil != err {
		return err
	}

	if _, err := s.buffer.ForceSettleForDebit(addr); nil != err {
		return err
	}
	if _, err := s.balances.ApplyDelta(addr, balance.Credit(legacy)); nil != err {
		return err
	}

	s.trx.Delete(pool.LegacyBalances, addr[:])
	s.trx.Put(pool.Migrated, addr[:], migratedMark)
	s.context.LegacySupply = s.context.LegacySupply.SaturatingSub(legacy)

	s.ledger.log.Debugf("migrated: %s", addr)
	return nil
}

// legacy balance of addr, zero if absent or already migrated
func (s *session) legacyBalance(addr account.Address) (amount.Amount, error) {
	buffer := s.trx.Get(s.ledger.db.Pool.LegacyBalances, addr[:])
	if nil == buffer {
		return amount.Zero, nil
	}
	a, err := amount.FromBytes(buffer)
	if nil != err {
		return amount.Zero, fmt.Errorf("legacy balance: %s: %w", addr, fault.ErrInvalidRecord)
	}
	return a, nil
}
