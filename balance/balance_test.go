// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package balance_test

import (
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/anonset"
	"github.com/bitmark-inc/tokenledger/balance"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/fixtures"
	"github.com/bitmark-inc/tokenledger/storage"
)

func setupStore(t *testing.T) (*storage.Database, storage.Transaction, *balance.Store) {
	fixtures.SetupTestLogger()

	db, err := storage.OpenMemory()
	require.Nil(t, err, "storage open")
	trx, err := db.NewTransaction()
	require.Nil(t, err, "new transaction")

	pools := anonset.Pools{
		Context: db.Pool.Context,
		Nodes:   db.Pool.Nodes,
		Buckets: db.Pool.Buckets,
	}
	x, err := anonset.New(logger.New("anonset"), trx, pools, []byte("balance-test-key"), anonset.DefaultParameters)
	require.Nil(t, err, "new index")
	return db, trx, balance.New(x)
}

func teardownStore(db *storage.Database, trx storage.Transaction) {
	trx.Abort()
	_ = db.Close()
	fixtures.TeardownTestLogger()
}

func TestGetUnknown(t *testing.T) {
	db, trx, s := setupStore(t)
	defer teardownStore(db, trx)

	b, err := s.Get(fixtures.Alice)
	assert.Nil(t, err, "get error")
	assert.Equal(t, amount.Zero, b, "unknown account not zero")
}

func TestApplyDelta(t *testing.T) {
	db, trx, s := setupStore(t)
	defer teardownStore(db, trx)

	r, err := s.ApplyDelta(fixtures.Alice, balance.Credit(amount.New(100)))
	assert.Nil(t, err, "credit error")
	assert.Equal(t, amount.New(100), r, "credit result")

	r, err = s.ApplyDelta(fixtures.Alice, balance.Debit(amount.New(60)))
	assert.Nil(t, err, "debit error")
	assert.Equal(t, amount.New(40), r, "debit result")

	_, err = s.ApplyDelta(fixtures.Alice, balance.Debit(amount.New(41)))
	assert.Equal(t, fault.ErrUnderflow, err, "underflow not detected")

	b, _ := s.Get(fixtures.Alice)
	assert.Equal(t, amount.New(40), b, "failed delta changed balance")

	_, err = s.ApplyDelta(fixtures.Bob, balance.Credit(amount.Max))
	assert.Nil(t, err, "credit max error")
	_, err = s.ApplyDelta(fixtures.Bob, balance.Credit(amount.New(1)))
	assert.Equal(t, fault.ErrOverflow, err, "overflow not detected")

	b, _ = s.Get(fixtures.Bob)
	assert.Equal(t, amount.Max, b, "failed delta changed balance")
}
