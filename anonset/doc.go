// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package anonset - anonymity set index
//
// Addresses are placed in buckets by walking a trie with successive
// fixed width chunks of a keyed hash of the address.  A bucket holds
// the settled balances of all its members together with the delayed
// write slots assigned to it, and always is read and written as one
// record, so storage access reveals only the bucket, never the member.
//
// A bucket that grows beyond its capacity is split on the next chunk
// of the hash; the trie never shrinks.
package anonset
