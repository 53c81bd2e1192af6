// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/allowance"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/history"
)

func runInfo(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	info, err := m.ledger.TokenInfo()
	if nil != err {
		return err
	}
	return printJson(m.w, info)
}

func runBalance(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	addr, err := checkAddress(c, "account")
	if nil != err {
		return err
	}
	b, err := m.ledger.Balance(addr)
	if nil != err {
		return err
	}
	return printJson(m.w, struct {
		Account account.Address `json:"account"`
		Amount  amount.Amount   `json:"amount"`
	}{
		Account: addr,
		Amount:  b,
	})
}

func runHistory(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	addr, err := checkAddress(c, "account")
	if nil != err {
		return err
	}
	entries, total, err := m.ledger.Transactions(addr, uint32(c.Uint("page")), uint32(c.Uint("size")))
	if nil != err {
		return err
	}
	return printJson(m.w, struct {
		Transactions []history.Entry `json:"txs"`
		Total        uint64          `json:"total"`
	}{
		Transactions: entries,
		Total:        total,
	})
}

func runAllowance(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	owner, err := checkAddress(c, "owner")
	if nil != err {
		return err
	}
	spender, err := checkAddress(c, "spender")
	if nil != err {
		return err
	}
	entry, err := m.ledger.Allowance(owner, spender, m.clock.Now().Unix())
	if nil != err {
		return err
	}
	return printJson(m.w, entry)
}

func runAllowances(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	addr, err := checkAddress(c, "account")
	if nil != err {
		return err
	}

	page := uint32(c.Uint("page"))
	size := uint32(c.Uint("size"))
	now := m.clock.Now().Unix()

	list := m.ledger.AllowancesGiven
	if c.Bool("received") {
		list = m.ledger.AllowancesReceived
	}
	entries, total, err := list(addr, page, size, now)
	if nil != err {
		return err
	}
	return printJson(m.w, struct {
		Allowances []allowance.Entry `json:"allowances"`
		Total      uint64            `json:"count"`
	}{
		Allowances: entries,
		Total:      total,
	})
}

func runAudit(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	supply, err := m.ledger.Audit()
	if nil != err {
		return err
	}
	return printJson(m.w, supply)
}
