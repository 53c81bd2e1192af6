// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notification_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/fixtures"
	"github.com/bitmark-inc/tokenledger/notification"
	"github.com/bitmark-inc/tokenledger/notification/mocks"
	"github.com/bitmark-inc/tokenledger/secret"
)

const txHash = "4f2a79c1d0e3b5a6"

func newKeys(t *testing.T) *secret.Keys {
	k, err := secret.New(bytes.Repeat([]byte{0x42}, secret.MasterLength))
	require.Nil(t, err, "keys")
	return k
}

func TestReceiptRoundTrip(t *testing.T) {
	k := newKeys(t)
	e := notification.NewEncoder(k)

	n, err := e.Receipt(fixtures.Bob, notification.Received{
		Amount: amount.New(1234),
		Sender: fixtures.Alice,
		Memo:   "lunch",
	}, txHash)
	require.Nil(t, err, "receipt error")
	assert.Equal(t, notification.ChannelReceived, n.Channel, "channel")
	assert.True(t, strings.HasPrefix(n.Label(), notification.LabelPrefix), "label: %s", n.Label())

	seed, _ := k.Seed(fixtures.Bob)
	id, _ := k.ID(seed, notification.ChannelReceived, txHash)
	assert.Equal(t, id, n.ID, "recipient cannot recompute id")

	plaintext, err := k.Open(seed, notification.ChannelReceived, txHash, n.Data)
	require.Nil(t, err, "open error")

	var decoded struct {
		_       struct{} `cbor:",toarray"`
		Amount  cbor.RawTag
		Sender  []byte
		MemoLen uint64
	}
	err = cbor.NewDecoder(bytes.NewReader(plaintext)).Decode(&decoded)
	require.Nil(t, err, "decode error")

	var content []byte
	err = cbor.Unmarshal(decoded.Amount.Content, &content)
	require.Nil(t, err, "bignum content")
	assert.Equal(t, uint64(2), decoded.Amount.Number, "amount tag")
	assert.Equal(t, amount.New(1234).Bytes(), content, "amount content")
	assert.Equal(t, fixtures.Alice.Bytes(), decoded.Sender, "sender")
	assert.Equal(t, uint64(5), decoded.MemoLen, "memo length")
}

func TestDirectSizeIsConstant(t *testing.T) {
	e := notification.NewEncoder(newKeys(t))

	short, err := e.Receipt(fixtures.Bob, notification.Received{Amount: amount.New(1), Sender: fixtures.Alice}, txHash)
	require.Nil(t, err, "receipt error")
	long, err := e.Receipt(fixtures.Bob, notification.Received{Amount: amount.Max, Sender: fixtures.Alice, Memo: strings.Repeat("x", 60000)}, txHash)
	require.Nil(t, err, "receipt error")
	assert.Equal(t, len(short.Data), len(long.Data), "receipt size depends on content")

	s1, err := e.Spend(fixtures.Alice, notification.Spent{Amount: amount.New(1), Actions: 1, Recipient: fixtures.Bob, Balance: amount.Zero}, txHash)
	require.Nil(t, err, "spend error")
	s2, err := e.Spend(fixtures.Alice, notification.Spent{Amount: amount.Max, Actions: 1 << 40, Recipient: fixtures.Bob, Balance: amount.Max}, txHash)
	require.Nil(t, err, "spend error")
	assert.Equal(t, len(s1.Data), len(s2.Data), "spend size depends on content")

	g1, err := e.Grant(fixtures.Bob, notification.Allowance{Amount: amount.New(1), Allower: fixtures.Alice}, txHash)
	require.Nil(t, err, "grant error")
	g2, err := e.Grant(fixtures.Bob, notification.Allowance{Amount: amount.Max, Allower: fixtures.Alice, Expiration: 1 << 50}, txHash)
	require.Nil(t, err, "grant error")
	assert.Equal(t, len(g1.Data), len(g2.Data), "grant size depends on content")
}

func TestMemoTooLong(t *testing.T) {
	e := notification.NewEncoder(newKeys(t))
	_, err := e.Receipt(fixtures.Bob, notification.Received{
		Amount: amount.New(1),
		Sender: fixtures.Alice,
		Memo:   strings.Repeat("m", 65536),
	}, txHash)
	assert.Equal(t, fault.ErrNotificationEncoding, err, "long memo accepted")
}

func TestCryptoFailurePropagates(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	failure := errors.New("no seed")
	crypto := mocks.NewMockCrypto(ctl)
	crypto.EXPECT().Seed(fixtures.Carol).Return(nil, failure).Times(1)

	e := notification.NewEncoder(crypto)
	_, err := e.Grant(fixtures.Carol, notification.Allowance{Amount: amount.New(3), Allower: fixtures.Alice}, txHash)
	assert.Equal(t, failure, err, "crypto error lost")
}

func TestSealReceivesPaddedPayload(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	seed := []byte("seed")
	crypto := mocks.NewMockCrypto(ctl)
	crypto.EXPECT().Seed(fixtures.Alice).Return(seed, nil).Times(1)
	crypto.EXPECT().ID(seed, notification.ChannelSpent, txHash).Return(make([]byte, 32), nil).Times(1)
	crypto.EXPECT().Seal(seed, notification.ChannelSpent, txHash, gomock.Any()).DoAndReturn(
		func(_ []byte, _ string, _ string, plaintext []byte) ([]byte, error) {
			assert.Equal(t, 80, len(plaintext), "spend payload not padded")
			return plaintext, nil
		}).Times(1)

	e := notification.NewEncoder(crypto)
	n, err := e.Spend(fixtures.Alice, notification.Spent{Amount: amount.New(9), Actions: 2, Recipient: fixtures.Bob, Balance: amount.New(1)}, txHash)
	assert.Nil(t, err, "spend error")
	assert.Equal(t, fixtures.Alice, n.Recipient, "recipient")
}

func TestRepeatedReceiptsAreDistinct(t *testing.T) {
	k := newKeys(t)
	e := notification.NewEncoder(k)

	first, err := e.Receipt(fixtures.Bob, notification.Received{Amount: amount.New(100), Sender: fixtures.Alice}, txHash)
	require.Nil(t, err, "receipt error")
	second, err := e.Receipt(fixtures.Bob, notification.Received{Amount: amount.New(200), Sender: fixtures.Alice}, txHash)
	require.Nil(t, err, "receipt error")

	assert.NotEqual(t, first.Label(), second.Label(), "label repeated")
	assert.NotEqual(t, first.ID, second.ID, "id repeated")

	seed, _ := k.Seed(fixtures.Bob)
	_, err = k.Open(seed, notification.ChannelReceived, notification.Occurrence(txHash, 0), first.Data)
	assert.Nil(t, err, "first does not open with transaction hash")
	_, err = k.Open(seed, notification.ChannelReceived, notification.Occurrence(txHash, 1), second.Data)
	assert.Nil(t, err, "second does not open with next occurrence")
	_, err = k.Open(seed, notification.ChannelReceived, txHash, second.Data)
	assert.NotNil(t, err, "second opens under the first key")

	other, err := e.Receipt(fixtures.Carol, notification.Received{Amount: amount.New(1), Sender: fixtures.Alice}, txHash)
	require.Nil(t, err, "receipt error")
	id, _ := k.ID(mustSeed(t, k, fixtures.Carol), notification.ChannelReceived, txHash)
	assert.Equal(t, id, other.ID, "first receipt to another recipient not keyed by transaction hash")
}

func mustSeed(t *testing.T, k *secret.Keys, addr account.Address) []byte {
	seed, err := k.Seed(addr)
	require.Nil(t, err, "seed")
	return seed
}
