// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/ledger"
)

// run actions as caller and print the events
func execute(m *metadata, caller account.Address, funds []ledger.Coin, actions ...ledger.Action) error {
	env, err := newEnv(m.clock)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "caller: %s\n", caller)
		fmt.Fprintf(m.e, "tx hash: %s\n", env.TxHash)
		fmt.Fprintf(m.e, "actions: %d\n", len(actions))
	}

	result, err := m.ledger.Execute(env, caller, funds, actions...)
	if nil != err {
		return err
	}
	return printJson(m.w, result)
}

func runTransfer(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkAddress(c, "caller")
	if nil != err {
		return err
	}
	pairs, err := parsePairs(c.StringSlice("to"))
	if nil != err {
		return err
	}
	owner, delegated, err := optionalAddress(c, "owner")
	if nil != err {
		return err
	}
	memo := c.String("memo")

	if delegated {
		transfers := make([]ledger.TransferFrom, len(pairs))
		for i, p := range pairs {
			transfers[i] = ledger.TransferFrom{Owner: owner, Recipient: p.address, Amount: p.amount, Memo: memo}
		}
		if 1 == len(transfers) {
			return execute(m, caller, nil, transfers[0])
		}
		return execute(m, caller, nil, ledger.BatchTransferFrom{Actions: transfers})
	}

	transfers := make([]ledger.Transfer, len(pairs))
	for i, p := range pairs {
		transfers[i] = ledger.Transfer{Recipient: p.address, Amount: p.amount, Memo: memo}
	}
	if 1 == len(transfers) {
		return execute(m, caller, nil, transfers[0])
	}
	return execute(m, caller, nil, ledger.BatchTransfer{Actions: transfers})
}

func runMint(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkAddress(c, "caller")
	if nil != err {
		return err
	}
	pairs, err := parsePairs(c.StringSlice("to"))
	if nil != err {
		return err
	}
	memo := c.String("memo")

	mints := make([]ledger.Mint, len(pairs))
	for i, p := range pairs {
		mints[i] = ledger.Mint{Recipient: p.address, Amount: p.amount, Memo: memo}
	}
	if 1 == len(mints) {
		return execute(m, caller, nil, mints[0])
	}
	return execute(m, caller, nil, ledger.BatchMint{Actions: mints})
}

func runBurn(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkAddress(c, "caller")
	if nil != err {
		return err
	}
	n, err := checkAmount(c, "amount")
	if nil != err {
		return err
	}
	owner, delegated, err := optionalAddress(c, "owner")
	if nil != err {
		return err
	}
	memo := c.String("memo")

	if delegated {
		return execute(m, caller, nil, ledger.BurnFrom{Owner: owner, Amount: n, Memo: memo})
	}
	return execute(m, caller, nil, ledger.Burn{Amount: n, Memo: memo})
}

func runDeposit(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkAddress(c, "caller")
	if nil != err {
		return err
	}
	funds, err := parseCoins(c.StringSlice("funds"))
	if nil != err {
		return err
	}
	return execute(m, caller, funds, ledger.Deposit{})
}

func runRedeem(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkAddress(c, "caller")
	if nil != err {
		return err
	}
	n, err := checkAmount(c, "amount")
	if nil != err {
		return err
	}
	return execute(m, caller, nil, ledger.Redeem{Amount: n, Denom: c.String("denom")})
}

func runAllow(c *cli.Context) error {
	return runChangeAllowance(c, true)
}

func runDisallow(c *cli.Context) error {
	return runChangeAllowance(c, false)
}

func runChangeAllowance(c *cli.Context, increase bool) error {
	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkAddress(c, "caller")
	if nil != err {
		return err
	}
	spender, err := checkAddress(c, "spender")
	if nil != err {
		return err
	}
	n, err := checkAmount(c, "amount")
	if nil != err {
		return err
	}

	var expiration *int64
	if x := c.Int64("expiration"); x > 0 {
		expiration = &x
	}

	if increase {
		return execute(m, caller, nil, ledger.IncreaseAllowance{Spender: spender, Amount: n, Expiration: expiration})
	}
	return execute(m, caller, nil, ledger.DecreaseAllowance{Spender: spender, Amount: n, Expiration: expiration})
}

func runMigrate(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	caller, err := checkAddress(c, "caller")
	if nil != err {
		return err
	}
	return execute(m, caller, nil, ledger.MigrateLegacyAccount{})
}

func runImportLegacy(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	addr, err := checkAddress(c, "account")
	if nil != err {
		return err
	}
	n, err := checkAmount(c, "amount")
	if nil != err {
		return err
	}
	if err := m.ledger.ImportLegacy(addr, n); nil != err {
		return err
	}
	if m.verbose {
		fmt.Fprintf(m.e, "imported: %s  amount: %s\n", addr, n)
	}
	return nil
}
