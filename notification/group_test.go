// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/fixtures"
	"github.com/bitmark-inc/tokenledger/notification"
	"github.com/bitmark-inc/tokenledger/secret"
)

var entropy = []byte("block-random-bytes")

func participants(recipients []account.Address) []notification.Participant {
	ps := make([]notification.Participant, len(recipients))
	for i, r := range recipients {
		ps[i] = notification.Participant{
			Recipient:   r,
			Counterpart: fixtures.Alice,
			Amount:      amount.New(uint64(100 + i)),
		}
	}
	return ps
}

func idFor(t *testing.T, k *secret.Keys, addr account.Address, channel string) []byte {
	seed, err := k.Seed(addr)
	require.Nil(t, err, "seed")
	id, err := k.ID(seed, channel, txHash)
	require.Nil(t, err, "id")
	return id
}

func TestPacketShapeIsConstant(t *testing.T) {
	e := notification.NewEncoder(newKeys(t))

	for _, channel := range []string{notification.ChannelMultiRecvd, notification.ChannelMultiSpent} {
		for count := 1; count <= notification.GroupSlots; count += 1 {
			packet, err := e.Packet(channel, participants(fixtures.Accounts(count)), txHash, entropy)
			require.Nil(t, err, "%s: %d: packet error", channel, count)
			assert.Equal(t, notification.PacketSize(channel), len(packet), "%s: size depends on count: %d", channel, count)
		}
	}
	assert.Equal(t, 64+16*(8+16), notification.PacketSize(notification.ChannelMultiRecvd), "multirecvd size")
	assert.Equal(t, 64+16*(8+24), notification.PacketSize(notification.ChannelMultiSpent), "multispent size")

	_, err := e.Packet(notification.ChannelMultiRecvd, participants(fixtures.Accounts(17)), txHash, entropy)
	assert.Equal(t, fault.ErrTooManyParticipants, err, "oversize packet accepted")

	_, err = e.Packet("nope", nil, txHash, entropy)
	assert.True(t, fault.IsErrEncoding(err), "unknown channel accepted")
}

func TestFindRecords(t *testing.T) {
	k := newKeys(t)
	e := notification.NewEncoder(k)

	recipients := fixtures.Accounts(5)
	ps := participants(recipients)
	ps[2].HasMemo = true
	ps[3].Counterpart = ps[3].Recipient
	ps[4].Balance = amount.New(777)

	packet, err := e.Packet(notification.ChannelMultiSpent, ps, txHash, entropy)
	require.Nil(t, err, "packet error")

	for i, r := range recipients {
		id := idFor(t, k, r, notification.ChannelMultiSpent)
		assert.True(t, notification.MayContain(packet, id), "bloom false negative for %d", i)

		record, found := notification.Find(notification.ChannelMultiSpent, packet, id)
		require.True(t, found, "record %d not found", i)
		assert.Equal(t, uint64(100+i), record.Amount, "amount %d", i)
		assert.Equal(t, 2 == i, record.HasMemo, "memo flag %d", i)
		assert.Equal(t, 3 == i, record.Self, "self flag %d", i)
		if 3 != i {
			assert.Equal(t, fixtures.Alice[12:], record.CounterpartTail, "counterpart %d", i)
		}
	}
	record, _ := notification.Find(notification.ChannelMultiSpent, packet, idFor(t, k, recipients[4], notification.ChannelMultiSpent))
	assert.Equal(t, uint64(777), record.Balance, "balance")

	_, found := notification.Find(notification.ChannelMultiSpent, packet, idFor(t, k, fixtures.Dave, notification.ChannelMultiSpent))
	assert.False(t, found, "outsider found a record")
}

func TestAmountSaturates(t *testing.T) {
	k := newKeys(t)
	e := notification.NewEncoder(k)

	ps := []notification.Participant{{Recipient: fixtures.Bob, Counterpart: fixtures.Alice, Amount: amount.Max}}
	packet, err := e.Packet(notification.ChannelMultiRecvd, ps, txHash, entropy)
	require.Nil(t, err, "packet error")

	record, found := notification.Find(notification.ChannelMultiRecvd, packet, idFor(t, k, fixtures.Bob, notification.ChannelMultiRecvd))
	require.True(t, found, "record not found")
	assert.Equal(t, uint64(1<<56-1), record.Amount, "amount not saturated")
	assert.False(t, record.Self, "amount overflowed into flags")
	assert.False(t, record.HasMemo, "amount overflowed into flags")
}

func TestGroupsSplitLargeBatch(t *testing.T) {
	k := newKeys(t)
	e := notification.NewEncoder(k)

	recipients := fixtures.Accounts(17)
	groups, err := e.Groups(notification.ChannelMultiRecvd, participants(recipients), txHash, entropy)
	require.Nil(t, err, "groups error")
	require.Equal(t, 2, len(groups), "packet count")

	assert.Equal(t, "snip52:#multirecvd", groups[0].Label(), "first label")
	assert.Equal(t, "snip52:#multirecvd:1", groups[1].Label(), "second label")

	for i, r := range recipients {
		g := groups[0]
		if i >= notification.GroupSlots {
			g = groups[1]
		}
		_, found := notification.Find(notification.ChannelMultiRecvd, g.Data, idFor(t, k, r, notification.ChannelMultiRecvd))
		assert.True(t, found, "recipient %d missing", i)
		assert.Equal(t, notification.PacketSize(notification.ChannelMultiRecvd), len(g.Data), "packet size")
	}
}

func TestMergeDuplicates(t *testing.T) {
	ps := []notification.Participant{
		{Recipient: fixtures.Bob, Counterpart: fixtures.Alice, Amount: amount.New(5)},
		{Recipient: fixtures.Carol, Counterpart: fixtures.Alice, Amount: amount.New(1)},
		{Recipient: fixtures.Bob, Counterpart: fixtures.Alice, Amount: amount.New(7), HasMemo: true},
	}
	merged := notification.Merge(ps)
	require.Equal(t, 2, len(merged), "duplicates not merged")
	assert.Equal(t, fixtures.Bob, merged[0].Recipient, "order not preserved")
	assert.Equal(t, amount.New(12), merged[0].Amount, "amounts not summed")
	assert.True(t, merged[0].HasMemo, "memo flag lost")
	assert.Equal(t, fixtures.Carol, merged[1].Recipient, "second recipient")
}

func TestPacketMergesRepeatedRecipients(t *testing.T) {
	k := newKeys(t)
	e := notification.NewEncoder(k)

	ps := []notification.Participant{
		{Recipient: fixtures.Bob, Counterpart: fixtures.Alice, Amount: amount.New(5)},
		{Recipient: fixtures.Bob, Counterpart: fixtures.Alice, Amount: amount.New(7)},
	}
	packet, err := e.Packet(notification.ChannelMultiRecvd, ps, txHash, entropy)
	require.Nil(t, err, "packet error")

	record, found := notification.Find(notification.ChannelMultiRecvd, packet, idFor(t, k, fixtures.Bob, notification.ChannelMultiRecvd))
	require.True(t, found, "record not found")
	assert.Equal(t, uint64(12), record.Amount, "amounts not merged")
}

func TestRepeatedGroupsAreDistinct(t *testing.T) {
	k := newKeys(t)
	e := notification.NewEncoder(k)

	ps := participants([]account.Address{fixtures.Bob})
	first, err := e.Groups(notification.ChannelMultiRecvd, ps, txHash, entropy)
	require.Nil(t, err, "groups error")
	second, err := e.Groups(notification.ChannelMultiRecvd, ps, txHash, entropy)
	require.Nil(t, err, "groups error")
	require.Equal(t, 1, len(first), "first packet count")
	require.Equal(t, 1, len(second), "second packet count")

	assert.Equal(t, "snip52:#multirecvd", first[0].Label(), "first label")
	assert.Equal(t, "snip52:#multirecvd:1", second[0].Label(), "second label")
	assert.NotEqual(t, first[0].Data, second[0].Data, "packets repeat")

	seed, err := k.Seed(fixtures.Bob)
	require.Nil(t, err, "seed")
	id, err := k.ID(seed, notification.ChannelMultiRecvd, notification.Occurrence(txHash, 1))
	require.Nil(t, err, "id")

	_, found := notification.Find(notification.ChannelMultiRecvd, first[0].Data, id)
	assert.False(t, found, "second id matched first packet")
	record, found := notification.Find(notification.ChannelMultiRecvd, second[0].Data, id)
	require.True(t, found, "second record not found")
	assert.Equal(t, uint64(100), record.Amount, "second amount")
}
