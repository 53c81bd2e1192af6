// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/fixtures"
	"github.com/bitmark-inc/tokenledger/history"
	"github.com/bitmark-inc/tokenledger/storage"
)

func setupLog(t *testing.T) (*storage.Database, storage.Transaction, *history.Log) {
	fixtures.SetupTestLogger()

	db, err := storage.OpenMemory()
	require.Nil(t, err, "storage open")
	trx, err := db.NewTransaction()
	require.Nil(t, err, "new transaction")

	pools := history.Pools{
		Context:      db.Pool.Context,
		Transactions: db.Pool.Transactions,
		History:      db.Pool.History,
		HistoryCount: db.Pool.HistoryCount,
	}
	return db, trx, history.New(trx, pools, history.NewObfuscator(0x1234567890abcdef))
}

func teardownLog(db *storage.Database, trx storage.Transaction) {
	trx.Abort()
	_ = db.Close()
	fixtures.TeardownTestLogger()
}

func storeTransfer(t *testing.T, l *history.Log, n uint64) uint64 {
	id, err := l.Store(&history.Tx{
		Action:    history.Transfer,
		From:      fixtures.Alice,
		Sender:    fixtures.Alice,
		Recipient: fixtures.Bob,
		Amount:    amount.New(n),
		Denom:     "TKN",
	})
	require.Nil(t, err, "store error")
	return id
}

func TestAppendSequence(t *testing.T) {
	db, trx, l := setupLog(t)
	defer teardownLog(db, trx)

	for i := uint64(0); i < 5; i += 1 {
		id := storeTransfer(t, l, i)
		assert.Equal(t, i+1, id, "global id")
		assert.Equal(t, i, l.Append(fixtures.Alice, id), "alice sequence")
	}
	assert.Equal(t, uint64(0), l.Append(fixtures.Bob, 1), "bob starts at zero")
	assert.Equal(t, uint64(5), l.Count(fixtures.Alice), "alice count")
	assert.Equal(t, uint64(1), l.Count(fixtures.Bob), "bob count")
	assert.Equal(t, uint64(0), l.Count(fixtures.Carol), "carol count")
}

func TestQueryNewestFirst(t *testing.T) {
	db, trx, l := setupLog(t)
	defer teardownLog(db, trx)

	for i := uint64(1); i <= 3; i += 1 {
		l.Append(fixtures.Bob, storeTransfer(t, l, i))
	}
	pending := []uint64{storeTransfer(t, l, 4), storeTransfer(t, l, 5)}

	entries, total, err := l.Query(fixtures.Bob, 0, 10, pending)
	require.Nil(t, err, "query error")
	assert.Equal(t, uint64(5), total, "total")
	require.Equal(t, 5, len(entries), "entries")

	for i, e := range entries {
		assert.Equal(t, amount.New(uint64(5-i)), e.Amount, "order at %d", i)
		assert.Equal(t, fixtures.Alice, e.Counterpart, "counterpart for recipient")
		assert.True(t, e.ID < 1<<history.IDBits, "id too wide")
	}

	page, total, err := l.Query(fixtures.Bob, 1, 2, pending)
	require.Nil(t, err, "query error")
	assert.Equal(t, uint64(5), total, "total")
	require.Equal(t, 2, len(page), "page length")
	assert.Equal(t, entries[2], page[0], "page start")
	assert.Equal(t, entries[3], page[1], "page end")

	beyond, total, err := l.Query(fixtures.Bob, 9, 2, pending)
	assert.Nil(t, err, "query error")
	assert.Equal(t, uint64(5), total, "total")
	assert.Equal(t, 0, len(beyond), "page past end")

	_, _, err = l.Query(fixtures.Bob, 0, 0, pending)
	assert.Equal(t, fault.ErrInvalidPageSize, err, "zero page size accepted")
}

func TestProvisionalIDsMatchSettled(t *testing.T) {
	db, trx, l := setupLog(t)
	defer teardownLog(db, trx)

	id1 := storeTransfer(t, l, 1)
	id2 := storeTransfer(t, l, 2)

	before, _, err := l.Query(fixtures.Bob, 0, 10, []uint64{id1, id2})
	require.Nil(t, err, "query error")

	// settlement appends pending entries in arrival order
	l.Append(fixtures.Bob, id1)
	l.Append(fixtures.Bob, id2)

	after, _, err := l.Query(fixtures.Bob, 0, 10, nil)
	require.Nil(t, err, "query error")
	assert.Equal(t, before, after, "settlement changed the visible history")
}

func TestCounterpartForSender(t *testing.T) {
	db, trx, l := setupLog(t)
	defer teardownLog(db, trx)

	l.Append(fixtures.Alice, storeTransfer(t, l, 9))
	entries, _, err := l.Query(fixtures.Alice, 0, 1, nil)
	require.Nil(t, err, "query error")
	require.Equal(t, 1, len(entries), "entries")
	assert.Equal(t, fixtures.Bob, entries[0].Counterpart, "counterpart for sender")
	assert.Equal(t, "transfer", entries[0].Action.String(), "action name")
}

func TestGetMissing(t *testing.T) {
	db, trx, l := setupLog(t)
	defer teardownLog(db, trx)

	_, err := l.Get(77)
	assert.True(t, fault.IsErrInvalid(err), "missing record: %v", err)
}
