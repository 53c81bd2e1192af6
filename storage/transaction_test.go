// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/storage/mocks"
)

var testPool = &PoolHandle{prefix: 'Z', limit: []byte{'Z' + 1}}

func newTestDB(t *testing.T) *leveldb.DB {
	db, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		t.Fatalf("leveldb open error: %s", err)
	}
	testPool.db = db
	return db
}

func TestBeginShouldErrorWhenAlreadyInTransaction(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	trx := newTransaction(db, newCache())
	err := trx.Begin()
	assert.Nil(t, err, "first time Begin should not error")

	err = trx.Begin()
	assert.Equal(t, fault.ErrTransactionInUse, err, "second time Begin should return error")

	trx.Abort()
	err = trx.Begin()
	assert.Nil(t, err, "Begin after Abort should not error")
}

func TestPutWritesCacheAndBatch(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	mockCache := mocks.NewMockCache(ctl)
	mockCache.EXPECT().Set(dbPut, "Zkey", []byte("value")).Times(1)
	mockCache.EXPECT().Set(dbDelete, "Zgone", gomock.Any()).Times(1)
	mockCache.EXPECT().Clear().Times(1)

	trx := newTransaction(db, mockCache)
	_ = trx.Begin()
	trx.Put(testPool, []byte("key"), []byte("value"))
	trx.Delete(testPool, []byte("gone"))
	assert.Equal(t, 2, trx.batch.Len(), "wrong batch length")

	err := trx.Commit()
	assert.Nil(t, err, "commit error")
	assert.Equal(t, 0, trx.batch.Len(), "batch not reset")
	assert.False(t, trx.InUse(), "still in use")
}

func TestGetPrefersCache(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	mockCache := mocks.NewMockCache(ctl)
	mockCache.EXPECT().Get("Zkey").Return([]byte("cached"), true, true).Times(1)

	trx := newTransaction(db, mockCache)
	assert.Equal(t, []byte("cached"), trx.Get(testPool, []byte("key")), "wrong value")
}

func TestReadYourWrites(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	_ = db.Put([]byte("Zold"), []byte("committed"), nil)

	trx := newTransaction(db, newCache())
	_ = trx.Begin()

	assert.True(t, trx.Has(testPool, []byte("old")), "committed value not visible")

	trx.PutN(testPool, []byte("n"), 42)
	n, found := trx.GetN(testPool, []byte("n"))
	assert.True(t, found, "pending value not found")
	assert.Equal(t, uint64(42), n, "wrong pending value")

	trx.Delete(testPool, []byte("old"))
	assert.Nil(t, trx.Get(testPool, []byte("old")), "deleted value still visible")

	trx.Abort()

	_, err := db.Get([]byte("Zn"), nil)
	assert.Equal(t, leveldb.ErrNotFound, err, "aborted write reached database")
	v, err := db.Get([]byte("Zold"), nil)
	assert.Nil(t, err, "aborted delete reached database")
	assert.Equal(t, []byte("committed"), v, "wrong committed value")
}

func TestCommitWithoutBegin(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	trx := newTransaction(db, newCache())
	assert.Equal(t, fault.ErrTransactionNotStarted, trx.Commit(), "commit accepted")
}
