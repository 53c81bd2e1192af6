// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package history - per account transaction history
//
// transactions are stored once, each participant gets an entry keyed
// by address and a gap free sequence number starting at zero
package history

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/storage"
)

// key in the context pool
var nextTxKey = []byte("history:next-tx")

// Pools - storage used by the log
type Pools struct {
	Context      *storage.PoolHandle
	Transactions *storage.PoolHandle
	History      *storage.PoolHandle
	HistoryCount *storage.PoolHandle
}

// Log - transaction history bound to one transaction
type Log struct {
	trx        storage.Transaction
	pools      Pools
	obfuscator *Obfuscator
}

// New - bind the log to the current transaction
func New(trx storage.Transaction, pools Pools, obfuscator *Obfuscator) *Log {
	return &Log{
		trx:        trx,
		pools:      pools,
		obfuscator: obfuscator,
	}
}

// Store - save a transaction record and return its global id
func (l *Log) Store(tx *Tx) (uint64, error) {
	id, _ := l.trx.GetN(l.pools.Context, nextTxKey)
	id += 1
	buffer, err := cbor.Marshal(tx)
	if nil != err {
		return 0, err
	}
	l.trx.Put(l.pools.Transactions, beUint64(id), buffer)
	l.trx.PutN(l.pools.Context, nextTxKey, id)
	return id, nil
}

// Get - read a stored transaction
func (l *Log) Get(id uint64) (*Tx, error) {
	buffer := l.trx.Get(l.pools.Transactions, beUint64(id))
	if nil == buffer {
		return nil, fmt.Errorf("transaction: %d: %w", id, fault.ErrInvalidRecord)
	}
	tx := &Tx{}
	if err := cbor.Unmarshal(buffer, tx); nil != err {
		return nil, fmt.Errorf("transaction: %d: %w", id, fault.ErrInvalidRecord)
	}
	return tx, nil
}

// Count - number of settled history entries of addr
func (l *Log) Count(addr account.Address) uint64 {
	n, _ := l.trx.GetN(l.pools.HistoryCount, addr[:])
	return n
}

// Append - add a transaction to the history of addr
//
// returns the internal sequence number assigned
func (l *Log) Append(addr account.Address, txID uint64) uint64 {
	seq := l.Count(addr)
	l.trx.PutN(l.pools.History, entryKey(addr, seq), txID)
	l.trx.PutN(l.pools.HistoryCount, addr[:], seq+1)
	return seq
}

// Query - one page of history, newest first
//
// pending holds transaction ids not yet settled into the log, oldest
// first; they are counted after the settled entries.  Returns the
// page and the total number of entries.
func (l *Log) Query(addr account.Address, page uint32, pageSize uint32, pending []uint64) ([]Entry, uint64, error) {
	if 0 == pageSize {
		return nil, 0, fault.ErrInvalidPageSize
	}

	settled := l.Count(addr)
	unsettled := uint64(len(pending))
	total := settled + unsettled

	start := uint64(page) * uint64(pageSize)
	if start >= total {
		return []Entry{}, total, nil
	}
	end := start + uint64(pageSize)
	if end > total {
		end = total
	}

	entries := make([]Entry, 0, end-start)
	for i := start; i < end; i += 1 {

		// position in chronological order
		seq := total - 1 - i

		var txID uint64
		if seq >= settled {
			txID = pending[seq-settled]
		} else {
			n, found := l.trx.GetN(l.pools.History, entryKey(addr, seq))
			if !found {
				return nil, 0, fmt.Errorf("history: %s: %d: %w", addr, seq, fault.ErrInvalidRecord)
			}
			txID = n
		}

		tx, err := l.Get(txID)
		if nil != err {
			return nil, 0, err
		}
		entries = append(entries, Entry{
			ID:          l.obfuscator.Transform(seq),
			Action:      tx.Action,
			From:        tx.From,
			Sender:      tx.Sender,
			Recipient:   tx.Recipient,
			Counterpart: tx.counterpart(addr),
			Amount:      tx.Amount,
			Denom:       tx.Denom,
			Memo:        tx.Memo,
			BlockTime:   tx.BlockTime,
			BlockHeight: tx.BlockHeight,
		})
	}
	return entries, total, nil
}

func entryKey(addr account.Address, seq uint64) []byte {
	key := make([]byte, account.AddressLength+8)
	copy(key, addr[:])
	binary.BigEndian.PutUint64(key[account.AddressLength:], seq)
	return key
}
