// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/ledger"
)

const (
	randomSize = 32
	hashSize   = 32
)

// build the host values for one call
//
// the height is the number of seconds since the epoch so successive
// calls are ordered
func newEnv(clock clockwork.Clock) (ledger.Env, error) {
	now := clock.Now().Unix()

	random := make([]byte, randomSize)
	if _, err := rand.Read(random); nil != err {
		return ledger.Env{}, err
	}
	hash := make([]byte, hashSize)
	if _, err := rand.Read(hash); nil != err {
		return ledger.Env{}, err
	}

	return ledger.Env{
		Now:    now,
		Height: uint64(now),
		TxHash: strings.ToUpper(hex.EncodeToString(hash)),
		Random: random,
	}, nil
}

func checkAddress(c *cli.Context, name string) (account.Address, error) {
	s := strings.TrimSpace(c.String(name))
	if "" == s {
		return account.Nil, fmt.Errorf("%s is required", name)
	}
	a, err := account.AddressFromString(s)
	if nil != err {
		return account.Nil, fmt.Errorf("%s: %q: %w", name, s, err)
	}
	return a, nil
}

func optionalAddress(c *cli.Context, name string) (account.Address, bool, error) {
	if "" == strings.TrimSpace(c.String(name)) {
		return account.Nil, false, nil
	}
	a, err := checkAddress(c, name)
	return a, nil == err, err
}

func checkAmount(c *cli.Context, name string) (amount.Amount, error) {
	s := strings.TrimSpace(c.String(name))
	if "" == s {
		return amount.Zero, fmt.Errorf("%s is required", name)
	}
	return amount.Parse(s)
}

type pair struct {
	address account.Address
	amount  amount.Amount
}

// decode ADDRESS:AMOUNT items
func parsePairs(items []string) ([]pair, error) {
	if 0 == len(items) {
		return nil, fmt.Errorf("at least one ADDRESS:AMOUNT is required")
	}
	pairs := make([]pair, 0, len(items))
	for _, item := range items {
		s := strings.SplitN(item, ":", 2)
		if 2 != len(s) {
			return nil, fmt.Errorf("invalid item: %q", item)
		}
		a, err := account.AddressFromString(s[0])
		if nil != err {
			return nil, fmt.Errorf("item: %q: %w", item, err)
		}
		n, err := amount.Parse(s[1])
		if nil != err {
			return nil, fmt.Errorf("item: %q: %w", item, err)
		}
		pairs = append(pairs, pair{address: a, amount: n})
	}
	return pairs, nil
}

// decode DENOM:AMOUNT items
func parseCoins(items []string) ([]ledger.Coin, error) {
	coins := make([]ledger.Coin, 0, len(items))
	for _, item := range items {
		s := strings.SplitN(item, ":", 2)
		if 2 != len(s) || "" == s[0] {
			return nil, fmt.Errorf("invalid coin: %q", item)
		}
		n, err := amount.Parse(s[1])
		if nil != err {
			return nil, fmt.Errorf("coin: %q: %w", item, err)
		}
		coins = append(coins, ledger.Coin{Denom: s[0], Amount: n})
	}
	return coins, nil
}

// decode KEY=VALUE items
func parseVariables(items []string) (map[string]string, error) {
	variables := make(map[string]string, len(items))
	for _, item := range items {
		s := strings.SplitN(item, "=", 2)
		if 2 != len(s) || "" == s[0] {
			return nil, fmt.Errorf("invalid definition: %q", item)
		}
		variables[s[0]] = s[1]
	}
	return variables, nil
}

func printJson(handle io.Writer, message interface{}) error {

	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		return err
	}

	fmt.Fprintf(handle, "%s\n", b)
	return nil
}
