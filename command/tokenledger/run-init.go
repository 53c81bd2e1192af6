// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/ledger"
	"github.com/bitmark-inc/tokenledger/secret"
)

func runInit(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	master := make([]byte, secret.MasterLength)
	if s := c.String("secret"); "" != s {
		b, err := hex.DecodeString(s)
		if nil != err {
			return err
		}
		master = b
	} else if _, err := rand.Read(master); nil != err {
		return err
	}

	balances, err := m.config.InitialBalances()
	if nil != err {
		return err
	}
	initial := make([]ledger.InitialBalance, len(balances))
	for i, b := range balances {
		initial[i] = ledger.InitialBalance{Address: b.Address, Amount: b.Amount}
	}

	env, err := newEnv(m.clock)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "database: %s\n", m.config.DatabaseFile())
		fmt.Fprintf(m.e, "initial balances: %d\n", len(initial))
	}

	if err := m.ledger.Initialise(master, initial, env); nil != err {
		return err
	}

	info, err := m.ledger.TokenInfo()
	if nil != err {
		return err
	}
	return printJson(m.w, info)
}

func runAddress(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	if 0 == c.NArg() {
		return fmt.Errorf("at least one label is required")
	}

	result := make(map[string]account.Address, c.NArg())
	for _, label := range c.Args() {
		result[label] = account.Derive(label)
	}
	return printJson(m.w, result)
}
