// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package dwb - delayed write buffer
//
// Credits are not applied to the recipient's balance immediately.
// Each anonymity bucket owns a fixed number of slots; a credit either
// accumulates into the recipient's live slot or claims a new one, so
// a transfer rewrites the recipient's bucket without revealing which
// member was credited.  A slot is settled, merging its amount into the
// holder's balance and its transactions into the holder's history,
// when the holder spends, when the slot is evicted to make room, or
// when its list of pending transactions is full.
package dwb

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/anonset"
	"github.com/bitmark-inc/tokenledger/balance"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/history"
)

// DefaultMaxPending - pending transactions per slot before it is settled
const DefaultMaxPending = 64

// Buffer - delayed write buffer bound to one transaction
type Buffer struct {
	log        *logger.L
	index      *anonset.Index
	history    *history.Log
	maxPending int
}

// New - create the buffer
func New(log *logger.L, index *anonset.Index, h *history.Log, maxPending int) *Buffer {
	if maxPending < 1 {
		maxPending = DefaultMaxPending
	}
	return &Buffer{
		log:        log,
		index:      index,
		history:    h,
		maxPending: maxPending,
	}
}

// Credit - add amount for recipient, recording transaction ref
func (d *Buffer) Credit(recipient account.Address, value amount.Amount, ref uint64) error {
	return d.index.Update(recipient, func(b *anonset.Bucket) error {

		i := b.Slot(recipient)
		if i >= 0 && len(b.Slots[i].Pending) >= d.maxPending {
			d.log.Debugf("bucket: %d  slot: %d  pending list full", b.ID, i)
			if err := d.settleSlot(b, i); nil != err {
				return err
			}
			i = -1
		}

		if i < 0 {
			i = b.FreeSlot()
			if i < 0 {
				i = b.OldestSlot()
				d.log.Debugf("bucket: %d  evict slot: %d", b.ID, i)
				if err := d.settleSlot(b, i); nil != err {
					return err
				}
			}
			b.Slots[i] = anonset.Slot{
				Live:    true,
				Holder:  recipient,
				Amount:  amount.Zero,
				Pending: []uint64{},
				Claimed: ref,
			}
		}

		s := &b.Slots[i]
		pending, err := s.Amount.Add(value)
		if nil != err {
			return fault.ErrOverflow
		}

		// settlement must always succeed later
		if _, err := b.Balance(recipient).Add(pending); nil != err {
			return fault.ErrOverflow
		}

		s.Amount = pending
		s.Pending = append(s.Pending, ref)
		return nil
	})
}

// Settle - flush the live slot of addr, a no-op if there is none
func (d *Buffer) Settle(addr account.Address) error {
	return d.index.Visit(addr, func(b *anonset.Bucket) error {
		if i := b.Slot(addr); i >= 0 {
			return d.settleSlot(b, i)
		}
		return nil
	})
}

// ForceSettleForDebit - settle addr and return its balance
func (d *Buffer) ForceSettleForDebit(addr account.Address) (amount.Amount, error) {
	result := amount.Zero
	err := d.index.Visit(addr, func(b *anonset.Bucket) error {
		if i := b.Slot(addr); i >= 0 {
			if err := d.settleSlot(b, i); nil != err {
				return err
			}
		}
		result = b.Balance(addr)
		return nil
	})
	return result, err
}

// Debit - settle addr, record ref in its history and deduct value
//
// returns the new balance or fault.ErrInsufficientFunds; the
// settlement is kept even when funds are insufficient
func (d *Buffer) Debit(addr account.Address, value amount.Amount, ref uint64) (amount.Amount, error) {
	result := amount.Zero
	insufficient := false
	err := d.index.Update(addr, func(b *anonset.Bucket) error {
		if i := b.Slot(addr); i >= 0 {
			if err := d.settleSlot(b, i); nil != err {
				return err
			}
		}
		r, err := balance.ApplyTo(b, addr, balance.Debit(value))
		if fault.IsErrRange(err) {
			insufficient = true
			return nil
		} else if nil != err {
			return err
		}
		d.history.Append(addr, ref)
		result = r
		return nil
	})
	if nil != err {
		return amount.Zero, err
	}
	if insufficient {
		return amount.Zero, fault.ErrInsufficientFunds
	}
	return result, nil
}

// Pending - unsettled amount and transactions of addr, read only
func (d *Buffer) Pending(addr account.Address) (amount.Amount, []uint64, error) {
	b, err := d.index.View(addr)
	if nil != err {
		return amount.Zero, nil, err
	}
	i := b.Slot(addr)
	if i < 0 {
		return amount.Zero, []uint64{}, nil
	}
	s := b.Slots[i]
	refs := make([]uint64, len(s.Pending))
	copy(refs, s.Pending)
	return s.Amount, refs, nil
}

// Balance - settled plus pending amount of addr, read only
func (d *Buffer) Balance(addr account.Address) (amount.Amount, error) {
	b, err := d.index.View(addr)
	if nil != err {
		return amount.Zero, err
	}
	total := b.Balance(addr)
	if i := b.Slot(addr); i >= 0 {
		total, err = total.Add(b.Slots[i].Amount)
		if nil != err {
			return amount.Zero, err
		}
	}
	return total, nil
}

// merge slot i into its holder's balance and history and release it
func (d *Buffer) settleSlot(b *anonset.Bucket, i int) error {
	s := b.Slots[i]
	if !s.Live {
		return nil
	}
	if b.Member(s.Holder) < 0 {
		return fault.ErrBucketIntegrity
	}
	if _, err := balance.ApplyTo(b, s.Holder, balance.Credit(s.Amount)); nil != err {
		return err
	}
	for _, ref := range s.Pending {
		d.history.Append(s.Holder, ref)
	}
	b.Slots[i] = anonset.Slot{}
	d.log.Debugf("bucket: %d  settled slot: %d  transactions: %d", b.ID, i, len(s.Pending))
	return nil
}
