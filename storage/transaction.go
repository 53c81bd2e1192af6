// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/tokenledger/fault"
)

// Transaction - the write session of one ledger call
type Transaction interface {
	Abort()
	Commit() error
	Delete(*PoolHandle, []byte)
	Get(*PoolHandle, []byte) []byte
	GetN(*PoolHandle, []byte) (uint64, bool)
	Has(*PoolHandle, []byte) bool
	InUse() bool
	NewFetchCursor(*PoolHandle) *FetchCursor
	Put(*PoolHandle, []byte, []byte)
	PutN(*PoolHandle, []byte, uint64)
}

type transaction struct {
	sync.Mutex
	inUse bool
	db    *leveldb.DB
	batch *leveldb.Batch
	cache Cache
}

func newTransaction(db *leveldb.DB, cache Cache) *transaction {
	return &transaction{
		inUse: false,
		db:    db,
		batch: new(leveldb.Batch),
		cache: cache,
	}
}

// Begin - claim the transaction
func (t *transaction) Begin() error {
	t.Lock()
	defer t.Unlock()

	if t.inUse {
		return fault.ErrTransactionInUse
	}
	t.inUse = true
	return nil
}

// InUse - true between begin and commit/abort
func (t *transaction) InUse() bool {
	t.Lock()
	defer t.Unlock()
	return t.inUse
}

// Put - store a key/value pair
func (t *transaction) Put(p *PoolHandle, key []byte, value []byte) {
	k := p.prefixKey(key)
	v := make([]byte, len(value))
	copy(v, value)
	t.cache.Set(dbPut, string(k), v)
	t.batch.Put(k, v)
}

// PutN - store a big endian uint64 value
func (t *transaction) PutN(p *PoolHandle, key []byte, value uint64) {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	t.Put(p, key, buffer)
}

// Delete - remove a key
func (t *transaction) Delete(p *PoolHandle, key []byte) {
	k := p.prefixKey(key)
	t.cache.Set(dbDelete, string(k), nil)
	t.batch.Delete(k)
}

// Get - read a value, nil if not found
//
// uncommitted writes of this transaction are visible
func (t *transaction) Get(p *PoolHandle, key []byte) []byte {
	k := p.prefixKey(key)
	value, present, cached := t.cache.Get(string(k))
	if cached {
		if !present {
			return nil
		}
		return value
	}

	value, err := t.db.Get(k, nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	fault.PanicIfError("storage.Get", err)
	return value
}

// GetN - read a record and decode first 8 bytes as big endian uint64
//
// second parameter is false if record was not found
func (t *transaction) GetN(p *PoolHandle, key []byte) (uint64, bool) {
	buffer := t.Get(p, key)
	if len(buffer) < 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(buffer[:8]), true
}

// Has - check if a key exists
func (t *transaction) Has(p *PoolHandle, key []byte) bool {
	return nil != t.Get(p, key)
}

// NewFetchCursor - iterate committed records of a pool
func (t *transaction) NewFetchCursor(p *PoolHandle) *FetchCursor {
	return p.newFetchCursor()
}

// Commit - write the batch and release
func (t *transaction) Commit() error {
	t.Lock()
	defer t.Unlock()

	if !t.inUse {
		return fault.ErrTransactionNotStarted
	}

	err := t.db.Write(t.batch, nil)
	t.reset()
	return err
}

// Abort - discard all writes and release
func (t *transaction) Abort() {
	t.Lock()
	defer t.Unlock()
	t.reset()
}

func (t *transaction) reset() {
	t.batch.Reset()
	t.cache.Clear()
	t.inUse = false
}
