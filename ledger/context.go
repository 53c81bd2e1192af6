// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/storage"
)

// key in the context pool
var contextKey = []byte("ledger:context")

// Context - ledger wide values loaded at the start of every call
// and saved when the call commits
//
// TotalSupply includes LegacySupply, the balances not yet migrated
type Context struct {
	_            struct{} `cbor:",toarray"`
	Secret       []byte
	TotalSupply  amount.Amount
	LegacySupply amount.Amount
}

func loadContext(trx storage.Transaction, pool *storage.PoolHandle) (*Context, error) {
	buffer := trx.Get(pool, contextKey)
	if nil == buffer {
		return nil, fault.ErrNotInitialised
	}
	c := &Context{}
	if err := cbor.Unmarshal(buffer, c); nil != err {
		return nil, fault.ErrInvalidRecord
	}
	return c, nil
}

func (c *Context) save(trx storage.Transaction, pool *storage.PoolHandle) error {
	buffer, err := cbor.Marshal(c)
	if nil != err {
		return err
	}
	trx.Put(pool, contextKey, buffer)
	return nil
}
