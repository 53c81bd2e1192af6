// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - ledger database
//
// A single leveldb database is split into pools, each pool is
// identified by a one byte key prefix.  All writes of one ledger call
// are collected in a single batch so the call either commits
// completely or leaves no trace; reads inside the transaction see the
// pending writes through a cache overlay.
package storage
