// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package amount - unsigned 128 bit token quantities
//
// all arithmetic is checked: results outside [0, 2^128-1] are
// reported as fault.ErrOverflow or fault.ErrUnderflow
package amount

import (
	"encoding/binary"
	"math"

	"github.com/fxamacker/cbor/v2"
	"github.com/holiman/uint256"

	"github.com/bitmark-inc/tokenledger/fault"
)

// Size - number of bytes in the packed representation
const Size = 16

// Amount - a non-negative quantity below 2^128
type Amount struct {
	v uint256.Int
}

// Zero - the zero amount
var Zero = Amount{}

// Max - the largest representable amount
var Max = Amount{v: uint256.Int{math.MaxUint64, math.MaxUint64, 0, 0}}

// New - create from a uint64
func New(n uint64) Amount {
	return Amount{v: uint256.Int{n, 0, 0, 0}}
}

// Parse - decimal string to amount
func Parse(s string) (Amount, error) {
	n, err := uint256.FromDecimal(s)
	if nil != err {
		return Zero, fault.ErrInvalidAmount
	}
	a := Amount{v: *n}
	if !a.fits() {
		return Zero, fault.ErrOverflow
	}
	return a, nil
}

// FromBytes - decode a big endian 16 byte value
func FromBytes(buffer []byte) (Amount, error) {
	if Size != len(buffer) {
		return Zero, fault.ErrInvalidAmount
	}
	return Amount{
		v: uint256.Int{
			binary.BigEndian.Uint64(buffer[8:]),
			binary.BigEndian.Uint64(buffer[:8]),
			0,
			0,
		},
	}, nil
}

// Bytes - big endian 16 byte value
func (a Amount) Bytes() []byte {
	buffer := make([]byte, Size)
	binary.BigEndian.PutUint64(buffer[:8], a.v[1])
	binary.BigEndian.PutUint64(buffer[8:], a.v[0])
	return buffer
}

func (a Amount) fits() bool {
	return 0 == a.v[2] && 0 == a.v[3]
}

// Add - checked addition
func (a Amount) Add(b Amount) (Amount, error) {
	r := Amount{}
	r.v.Add(&a.v, &b.v)
	if !r.fits() {
		return Zero, fault.ErrOverflow
	}
	return r, nil
}

// Sub - checked subtraction
func (a Amount) Sub(b Amount) (Amount, error) {
	r := Amount{}
	if _, underflow := r.v.SubOverflow(&a.v, &b.v); underflow {
		return Zero, fault.ErrUnderflow
	}
	return r, nil
}

// SaturatingAdd - addition clamped to Max
func (a Amount) SaturatingAdd(b Amount) Amount {
	r, err := a.Add(b)
	if nil != err {
		return Max
	}
	return r
}

// SaturatingSub - subtraction floored at zero
func (a Amount) SaturatingSub(b Amount) Amount {
	r, err := a.Sub(b)
	if nil != err {
		return Zero
	}
	return r
}

// Cmp - -1, 0 or +1 as a is less, equal or greater than b
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// IsZero - true for the zero amount
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Uint64 - value clamped to a ceiling of (2^bits)-1, bits ≤ 64
func (a Amount) Uint64(bits uint) uint64 {
	ceiling := uint64(math.MaxUint64)
	if bits < 64 {
		ceiling = 1<<bits - 1
	}
	if !a.v.IsUint64() || a.v[0] > ceiling {
		return ceiling
	}
	return a.v[0]
}

// String - decimal representation
func (a Amount) String() string {
	return a.v.Dec()
}

// MarshalText - decimal text for JSON output
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.v.Dec()), nil
}

// UnmarshalText - decimal text input
func (a *Amount) UnmarshalText(s []byte) error {
	n, err := Parse(string(s))
	if nil != err {
		return err
	}
	*a = n
	return nil
}

// MarshalCBOR - stored as a 16 byte string
func (a Amount) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(a.Bytes())
}

// UnmarshalCBOR - read a 16 byte string
func (a *Amount) UnmarshalCBOR(data []byte) error {
	var buffer []byte
	if err := cbor.Unmarshal(data, &buffer); nil != err {
		return err
	}
	n, err := FromBytes(buffer)
	if nil != err {
		return err
	}
	*a = n
	return nil
}
