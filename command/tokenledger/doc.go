// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// tokenledger - operate a confidential token ledger database
//
// every command reads the Lua configuration file given by
// --config-file and opens the ledger database it names; write
// commands print the events and payouts of the call as JSON
package main
