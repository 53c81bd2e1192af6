// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared test setup
package fixtures

import (
	"fmt"
	"os"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/tokenledger/account"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// well known test accounts
var (
	Alice = account.Derive("alice")
	Bob   = account.Derive("bob")
	Carol = account.Derive("carol")
	Dave  = account.Derive("dave")
)

// Accounts - n distinct deterministic test accounts
func Accounts(n int) []account.Address {
	accounts := make([]account.Address, n)
	for i := range accounts {
		accounts[i] = account.Derive(fmt.Sprintf("account-%d", i))
	}
	return accounts
}

func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	err := os.RemoveAll(dir)
	if nil != err {
		fmt.Println("remove dir with error: ", err)
	}
}
