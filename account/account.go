// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package account - canonical ledger addresses
//
// address encoding for humans is handled outside the ledger, here an
// address is just its 20 canonical bytes
package account

import (
	"bytes"
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/tokenledger/fault"
)

// AddressLength - bytes in a canonical address
const AddressLength = 20

// Address - canonical account address
type Address [AddressLength]byte

// Nil - the all-zero address, never a valid participant
var Nil Address

// AddressFromBytes - convert a canonical byte slice
func AddressFromBytes(buffer []byte) (Address, error) {
	a := Address{}
	if AddressLength != len(buffer) {
		return a, fault.ErrInvalidAddress
	}
	copy(a[:], buffer)
	return a, nil
}

// AddressFromString - convert the hex form
func AddressFromString(s string) (Address, error) {
	buffer, err := hex.DecodeString(s)
	if nil != err {
		return Nil, fault.ErrInvalidAddress
	}
	return AddressFromBytes(buffer)
}

// Derive - deterministic address from a label
//
// only for test accounts and the command line tool
func Derive(label string) Address {
	digest := sha3.Sum256([]byte(label))
	a := Address{}
	copy(a[:], digest[:AddressLength])
	return a
}

// Bytes - canonical bytes (a copy)
func (a Address) Bytes() []byte {
	buffer := make([]byte, AddressLength)
	copy(buffer, a[:])
	return buffer
}

// IsNil - true for the all-zero address
func (a Address) IsNil() bool {
	return a == Nil
}

// Less - byte order comparison
func (a Address) Less(b Address) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// String - hex form
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalText - hex form for JSON
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText - parse hex form
func (a *Address) UnmarshalText(s []byte) error {
	r, err := AddressFromString(string(s))
	if nil != err {
		return err
	}
	*a = r
	return nil
}
