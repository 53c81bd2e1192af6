// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notification

import (
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/fault"
)

// CBOR tag for an unsigned bignum
const positiveBignumTag = 2

// padded plaintext sizes, every packet of a channel has the same size
var payloadSize = map[string]int{
	ChannelReceived:  48,
	ChannelSpent:     80,
	ChannelAllowance: 64,
}

// bignum - amount encoded as a fixed width CBOR bignum
type bignum amount.Amount

func (b bignum) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  positiveBignumTag,
		Content: amount.Amount(b).Bytes(),
	})
}

func (b *bignum) UnmarshalCBOR(data []byte) error {
	tag := cbor.RawTag{}
	if err := cbor.Unmarshal(data, &tag); nil != err {
		return err
	}
	if positiveBignumTag != tag.Number {
		return fault.ErrNotificationEncoding
	}
	var content []byte
	if err := cbor.Unmarshal(tag.Content, &content); nil != err {
		return err
	}
	a, err := amount.FromBytes(content)
	if nil != err {
		return err
	}
	*b = bignum(a)
	return nil
}

// Received - data for the recvd channel
type Received struct {
	Amount amount.Amount
	Sender account.Address
	Memo   string
}

type receivedPayload struct {
	_       struct{} `cbor:",toarray"`
	Amount  bignum
	Sender  []byte
	MemoLen uint16
}

// Spent - data for the spent channel
type Spent struct {
	Amount    amount.Amount
	Actions   uint64
	Recipient account.Address
	Balance   amount.Amount
}

type spentPayload struct {
	_         struct{} `cbor:",toarray"`
	Amount    bignum
	Actions   uint64
	Recipient []byte
	Balance   bignum
}

// Allowance - data for the allowance channel
type Allowance struct {
	Amount     amount.Amount
	Allower    account.Address
	Expiration int64 // zero for no expiry
}

type allowancePayload struct {
	_          struct{} `cbor:",toarray"`
	Amount     bignum
	Allower    []byte
	Expiration uint64
}

// Receipt - notify recipient of an incoming transfer
func (e *Encoder) Receipt(recipient account.Address, data Received, txHash string) (*Notification, error) {
	if len(data.Memo) > math.MaxUint16 {
		return nil, fault.ErrNotificationEncoding
	}
	return e.direct(ChannelReceived, recipient, txHash, receivedPayload{
		Amount:  bignum(data.Amount),
		Sender:  data.Sender.Bytes(),
		MemoLen: uint16(len(data.Memo)),
	})
}

// Spend - notify owner of an outgoing transfer or burn
func (e *Encoder) Spend(owner account.Address, data Spent, txHash string) (*Notification, error) {
	return e.direct(ChannelSpent, owner, txHash, spentPayload{
		Amount:    bignum(data.Amount),
		Actions:   data.Actions,
		Recipient: data.Recipient.Bytes(),
		Balance:   bignum(data.Balance),
	})
}

// Grant - notify spender of a changed allowance
func (e *Encoder) Grant(spender account.Address, data Allowance, txHash string) (*Notification, error) {
	expiration := uint64(0)
	if data.Expiration > 0 {
		expiration = uint64(data.Expiration)
	}
	return e.direct(ChannelAllowance, spender, txHash, allowancePayload{
		Amount:     bignum(data.Amount),
		Allower:    data.Allower.Bytes(),
		Expiration: expiration,
	})
}

// encode, pad and seal one payload
func (e *Encoder) direct(channel string, recipient account.Address, txHash string, payload interface{}) (*Notification, error) {
	plaintext, err := pad(channel, payload)
	if nil != err {
		return nil, err
	}

	seed, err := e.crypto.Seed(recipient)
	if nil != err {
		return nil, err
	}
	input := e.next(channel, recipient, txHash)
	id, err := e.crypto.ID(seed, channel, input)
	if nil != err {
		return nil, err
	}
	data, err := e.crypto.Seal(seed, channel, input, plaintext)
	if nil != err {
		return nil, err
	}

	return &Notification{
		Channel:   channel,
		Recipient: recipient,
		ID:        id,
		Data:      data,
	}, nil
}

func pad(channel string, payload interface{}) ([]byte, error) {
	buffer, err := cbor.Marshal(payload)
	if nil != err {
		return nil, fmt.Errorf("%s: %v: %w", channel, err, fault.ErrNotificationEncoding)
	}
	size := payloadSize[channel]
	if len(buffer) > size {
		return nil, fmt.Errorf("%s: payload: %d bytes: %w", channel, len(buffer), fault.ErrNotificationEncoding)
	}
	plaintext := make([]byte, size)
	copy(plaintext, buffer)
	return plaintext, nil
}
