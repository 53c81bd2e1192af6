// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/tokenledger/allowance"
	"github.com/bitmark-inc/tokenledger/anonset"
	"github.com/bitmark-inc/tokenledger/balance"
	"github.com/bitmark-inc/tokenledger/dwb"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/history"
	"github.com/bitmark-inc/tokenledger/notification"
	"github.com/bitmark-inc/tokenledger/secret"
	"github.com/bitmark-inc/tokenledger/storage"
)

// components of one call, all bound to the same transaction
type session struct {
	ledger     *Ledger
	trx        storage.Transaction
	context    *Context
	keys       *secret.Keys
	index      *anonset.Index
	balances   *balance.Store
	history    *history.Log
	buffer     *dwb.Buffer
	allowances *allowance.Store
	encoder    *notification.Encoder
}

func (l *Ledger) newSession(trx storage.Transaction, context *Context) (*session, error) {
	keys, err := secret.New(context.Secret)
	if nil != err {
		return nil, err
	}

	pool := &l.db.Pool

	index, err := anonset.New(l.log, trx, anonset.Pools{
		Context: pool.Context,
		Nodes:   pool.Nodes,
		Buckets: pool.Buckets,
	}, keys.TrieKey(), l.settings.Parameters)
	if nil != err {
		return nil, err
	}

	h := history.New(trx, history.Pools{
		Context:      pool.Context,
		Transactions: pool.Transactions,
		History:      pool.History,
		HistoryCount: pool.HistoryCount,
	}, history.NewObfuscator(keys.ObfuscationSecret()))

	return &session{
		ledger:     l,
		trx:        trx,
		context:    context,
		keys:       keys,
		index:      index,
		balances:   balance.New(index),
		history:    h,
		buffer:     dwb.New(l.log, index, h, l.settings.MaxPending),
		allowances: allowance.New(trx, allowance.Pools{Allowances: pool.Allowances, Received: pool.AllowancesReceived}),
		encoder:    notification.NewEncoder(keys),
	}, nil
}

// update - run f in a new transaction and commit
//
// any error aborts every write of the call; an integrity error is fatal
func (l *Ledger) update(operation string, f func(s *session) error) error {
	trx, err := l.db.NewTransaction()
	if nil != err {
		return err
	}
	context, err := loadContext(trx, l.db.Pool.Context)
	if nil != err {
		trx.Abort()
		return err
	}
	return l.run(operation, trx, context, f)
}

func (l *Ledger) run(operation string, trx storage.Transaction, context *Context, f func(s *session) error) error {
	s, err := l.newSession(trx, context)
	if nil == err {
		err = f(s)
	}
	if nil == err {
		err = context.save(trx, l.db.Pool.Context)
	}
	if nil != err {
		trx.Abort()
		if fault.IsErrIntegrity(err) {
			l.log.Criticalf("%s: %s", operation, err)
			fault.Integrity(operation, err)
		}
		l.log.Debugf("%s: aborted: %s", operation, err)
		return err
	}
	return trx.Commit()
}

// view - run f in a transaction that is always discarded
func (l *Ledger) view(f func(s *session) error) error {
	trx, err := l.db.NewTransaction()
	if nil != err {
		return err
	}
	defer trx.Abort()

	context, err := loadContext(trx, l.db.Pool.Context)
	if nil != err {
		return err
	}
	s, err := l.newSession(trx, context)
	if nil != err {
		return err
	}
	return f(s)
}
