// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dwb_test

import (
	"math/rand"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/anonset"
	"github.com/bitmark-inc/tokenledger/balance"
	"github.com/bitmark-inc/tokenledger/dwb"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/fixtures"
	"github.com/bitmark-inc/tokenledger/history"
	"github.com/bitmark-inc/tokenledger/storage"
)

type testEnv struct {
	db       *storage.Database
	trx      storage.Transaction
	index    *anonset.Index
	balances *balance.Store
	history  *history.Log
	buffer   *dwb.Buffer
	nextRef  uint64
}

func setup(t *testing.T, params anonset.Parameters, maxPending int) *testEnv {
	fixtures.SetupTestLogger()

	db, err := storage.OpenMemory()
	require.Nil(t, err, "storage open")
	trx, err := db.NewTransaction()
	require.Nil(t, err, "new transaction")

	x, err := anonset.New(logger.New("anonset"), trx, anonset.Pools{
		Context: db.Pool.Context,
		Nodes:   db.Pool.Nodes,
		Buckets: db.Pool.Buckets,
	}, []byte("dwb-test-key"), params)
	require.Nil(t, err, "new index")

	h := history.New(trx, history.Pools{
		Context:      db.Pool.Context,
		Transactions: db.Pool.Transactions,
		History:      db.Pool.History,
		HistoryCount: db.Pool.HistoryCount,
	}, history.NewObfuscator(99))

	return &testEnv{
		db:       db,
		trx:      trx,
		index:    x,
		balances: balance.New(x),
		history:  h,
		buffer:   dwb.New(logger.New("dwb"), x, h, maxPending),
	}
}

func (e *testEnv) teardown() {
	e.trx.Abort()
	_ = e.db.Close()
	fixtures.TeardownTestLogger()
}

func (e *testEnv) ref() uint64 {
	e.nextRef += 1
	return e.nextRef
}

// one bucket holding everybody
var flat = anonset.Parameters{ChunkBits: 1, BucketCapacity: 1000, SlotsPerBucket: 2}

func TestCreditIsDeferred(t *testing.T) {
	e := setup(t, anonset.DefaultParameters, 0)
	defer e.teardown()

	require.Nil(t, e.buffer.Credit(fixtures.Alice, amount.New(100), e.ref()), "credit")

	settled, _ := e.balances.Get(fixtures.Alice)
	assert.Equal(t, amount.Zero, settled, "credit reached the balance store")

	total, err := e.buffer.Balance(fixtures.Alice)
	assert.Nil(t, err, "balance error")
	assert.Equal(t, amount.New(100), total, "settled plus pending")

	pending, refs, err := e.buffer.Pending(fixtures.Alice)
	assert.Nil(t, err, "pending error")
	assert.Equal(t, amount.New(100), pending, "pending amount")
	assert.Equal(t, []uint64{1}, refs, "pending refs")
	assert.Equal(t, uint64(0), e.history.Count(fixtures.Alice), "history written early")

	r, err := e.buffer.Debit(fixtures.Alice, amount.New(60), e.ref())
	assert.Nil(t, err, "debit error")
	assert.Equal(t, amount.New(40), r, "debit result")

	settled, _ = e.balances.Get(fixtures.Alice)
	assert.Equal(t, amount.New(40), settled, "settled balance after debit")
	pending, _, _ = e.buffer.Pending(fixtures.Alice)
	assert.Equal(t, amount.Zero, pending, "pending after debit")
	assert.Equal(t, uint64(2), e.history.Count(fixtures.Alice), "credit and debit in history")
}

func TestSettleIsIdempotent(t *testing.T) {
	e := setup(t, anonset.DefaultParameters, 0)
	defer e.teardown()

	require.Nil(t, e.buffer.Credit(fixtures.Bob, amount.New(7), e.ref()), "credit")
	require.Nil(t, e.buffer.Settle(fixtures.Bob), "first settle")

	b1, _ := e.balances.Get(fixtures.Bob)
	n1 := e.history.Count(fixtures.Bob)

	require.Nil(t, e.buffer.Settle(fixtures.Bob), "second settle")
	require.Nil(t, e.buffer.Settle(fixtures.Carol), "settle without entry")

	b2, _ := e.balances.Get(fixtures.Bob)
	assert.Equal(t, amount.New(7), b1, "settled balance")
	assert.Equal(t, b1, b2, "second settle changed balance")
	assert.Equal(t, n1, e.history.Count(fixtures.Bob), "second settle changed history")
	assert.Equal(t, uint64(0), e.history.Count(fixtures.Carol), "carol history")
}

func TestAccumulate(t *testing.T) {
	e := setup(t, flat, 0)
	defer e.teardown()

	for i := 0; i < 5; i += 1 {
		require.Nil(t, e.buffer.Credit(fixtures.Carol, amount.New(10), e.ref()), "credit")
	}
	pending, refs, _ := e.buffer.Pending(fixtures.Carol)
	assert.Equal(t, amount.New(50), pending, "accumulated amount")
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, refs, "accumulated refs")

	b, _ := e.index.View(fixtures.Carol)
	live := 0
	for _, s := range b.Slots {
		if s.Live {
			live += 1
		}
	}
	assert.Equal(t, 1, live, "one live slot per holder")
}

func TestEvictOldest(t *testing.T) {
	e := setup(t, flat, 0)
	defer e.teardown()

	require.Nil(t, e.buffer.Credit(fixtures.Alice, amount.New(1), e.ref()), "credit alice")
	require.Nil(t, e.buffer.Credit(fixtures.Bob, amount.New(2), e.ref()), "credit bob")
	require.Nil(t, e.buffer.Credit(fixtures.Carol, amount.New(3), e.ref()), "credit carol")

	settled, _ := e.balances.Get(fixtures.Alice)
	assert.Equal(t, amount.New(1), settled, "oldest entry not settled")
	assert.Equal(t, uint64(1), e.history.Count(fixtures.Alice), "evicted history")

	pending, _, _ := e.buffer.Pending(fixtures.Alice)
	assert.Equal(t, amount.Zero, pending, "evicted entry still pending")

	for _, a := range []account.Address{fixtures.Bob, fixtures.Carol} {
		_, refs, _ := e.buffer.Pending(a)
		assert.Equal(t, 1, len(refs), "entry lost")
	}

	total, _ := e.buffer.Balance(fixtures.Alice)
	assert.Equal(t, amount.New(1), total, "eviction changed total balance")
}

func TestPendingListFull(t *testing.T) {
	e := setup(t, flat, 2)
	defer e.teardown()

	for i := 0; i < 3; i += 1 {
		require.Nil(t, e.buffer.Credit(fixtures.Dave, amount.New(5), e.ref()), "credit")
	}
	settled, _ := e.balances.Get(fixtures.Dave)
	assert.Equal(t, amount.New(10), settled, "full list not settled")
	assert.Equal(t, uint64(2), e.history.Count(fixtures.Dave), "settled history")

	pending, refs, _ := e.buffer.Pending(fixtures.Dave)
	assert.Equal(t, amount.New(5), pending, "new pending amount")
	assert.Equal(t, []uint64{3}, refs, "new pending refs")
}

func TestDebitInsufficient(t *testing.T) {
	e := setup(t, anonset.DefaultParameters, 0)
	defer e.teardown()

	require.Nil(t, e.buffer.Credit(fixtures.Alice, amount.New(10), e.ref()), "credit")
	_, err := e.buffer.Debit(fixtures.Alice, amount.New(11), e.ref())
	assert.Equal(t, fault.ErrInsufficientFunds, err, "overdraft accepted")

	settled, _ := e.balances.Get(fixtures.Alice)
	assert.Equal(t, amount.New(10), settled, "settlement discarded")
	assert.Equal(t, uint64(1), e.history.Count(fixtures.Alice), "failed debit recorded")

	_, err = e.buffer.Debit(fixtures.Carol, amount.New(1), e.ref())
	assert.Equal(t, fault.ErrInsufficientFunds, err, "unknown account debited")
}

func TestCreditOverflow(t *testing.T) {
	e := setup(t, anonset.DefaultParameters, 0)
	defer e.teardown()

	_, err := e.balances.ApplyDelta(fixtures.Bob, balance.Credit(amount.Max))
	require.Nil(t, err, "seed balance")

	err = e.buffer.Credit(fixtures.Bob, amount.New(1), e.ref())
	assert.Equal(t, fault.ErrOverflow, err, "overflow accepted")

	_, refs, _ := e.buffer.Pending(fixtures.Bob)
	assert.Equal(t, 0, len(refs), "failed credit left an entry")
}

// sum of settled balances and slot amounts never changes except by
// the amount minted
func TestConservation(t *testing.T) {
	params := anonset.Parameters{ChunkBits: 1, BucketCapacity: 3, SlotsPerBucket: 2}
	e := setup(t, params, 3)
	defer e.teardown()

	accounts := fixtures.Accounts(20)
	r := rand.New(rand.NewSource(1))

	supply := amount.Zero
	for i := 0; i < 500; i += 1 {
		a := accounts[r.Intn(len(accounts))]
		v := amount.New(uint64(r.Intn(100)))
		if 0 == r.Intn(3) {
			if _, err := e.buffer.Debit(a, v, e.ref()); nil == err {
				supply, _ = supply.Sub(v)
			} else {
				require.Equal(t, fault.ErrInsufficientFunds, err, "debit error")
			}
		} else {
			require.Nil(t, e.buffer.Credit(a, v, e.ref()), "credit")
			supply, _ = supply.Add(v)
		}
	}

	sum := amount.Zero
	for _, a := range accounts {
		total, err := e.buffer.Balance(a)
		require.Nil(t, err, "balance error")
		sum, _ = sum.Add(total)
	}
	assert.Equal(t, supply, sum, "tokens created or destroyed")

	require.Nil(t, e.trx.Commit(), "commit")
	trx, _ := e.db.NewTransaction()
	e.trx = trx
	x, _ := anonset.New(logger.New("anonset"), trx, anonset.Pools{
		Context: e.db.Pool.Context,
		Nodes:   e.db.Pool.Nodes,
		Buckets: e.db.Pool.Buckets,
	}, []byte("dwb-test-key"), params)

	stored := amount.Zero
	err := x.Walk(func(b *anonset.Bucket) error {
		for _, m := range b.Members {
			stored, _ = stored.Add(m.Balance)
		}
		for _, s := range b.Slots {
			if s.Live {
				stored, _ = stored.Add(s.Amount)
			}
		}
		return nil
	})
	assert.Nil(t, err, "walk error")
	assert.Equal(t, supply, stored, "stored records do not add up")
}
