// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notification

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/fault"
)

// group packet shape
const (
	GroupSlots    = 16
	PacketIDSize  = 8
	addressTail   = 8
	amountBits    = 56
	flagSelf      = uint64(1) << 63
	flagMemo      = uint64(1) << 62
	amountMask    = uint64(1)<<amountBits - 1
	receivedBytes = 8 + addressTail
	spentBytes    = 8 + addressTail + 8
)

// record size per group channel
var recordSize = map[string]int{
	ChannelMultiRecvd: receivedBytes,
	ChannelMultiSpent: spentBytes,
}

// Participant - one account in a group notification
type Participant struct {
	Recipient   account.Address
	Counterpart account.Address
	Amount      amount.Amount
	Balance     amount.Amount // multispent only
	HasMemo     bool
}

// Group - one encoded group packet
type Group struct {
	Channel string
	Index   int
	Data    []byte
}

// Label - event attribute key
func (g *Group) Label() string {
	if 0 == g.Index {
		return LabelPrefix + "#" + g.Channel
	}
	return fmt.Sprintf("%s#%s:%d", LabelPrefix, g.Channel, g.Index)
}

// PacketSize - bytes in every packet of a channel
func PacketSize(channel string) int {
	return BloomBytes + GroupSlots*(PacketIDSize+recordSize[channel])
}

// Merge - combine repeated recipients preserving first appearance
//
// amounts are summed, memo flags or-ed, the first counterpart and
// the last balance kept
func Merge(participants []Participant) []Participant {
	index := make(map[account.Address]int, len(participants))
	merged := make([]Participant, 0, len(participants))
	for _, p := range participants {
		i, ok := index[p.Recipient]
		if !ok {
			index[p.Recipient] = len(merged)
			merged = append(merged, p)
			continue
		}
		m := &merged[i]
		m.Amount = m.Amount.SaturatingAdd(p.Amount)
		m.Balance = p.Balance
		m.HasMemo = m.HasMemo || p.HasMemo
	}
	return merged
}

// Groups - encode any number of participants as successive packets
func (e *Encoder) Groups(channel string, participants []Participant, txHash string, random []byte) ([]*Group, error) {
	merged := Merge(participants)
	groups := []*Group{}
	for start := 0; start < len(merged); start += GroupSlots {
		end := start + GroupSlots
		if end > len(merged) {
			end = len(merged)
		}
		index := e.packets[channel]
		e.packets[channel] = index + 1
		entropy := append([]byte(fmt.Sprintf("%s:%d:", channel, index)), random...)
		data, err := e.packet(channel, merged[start:end], txHash, entropy)
		if nil != err {
			return nil, err
		}
		groups = append(groups, &Group{
			Channel: channel,
			Index:   index,
			Data:    data,
		})
	}
	return groups, nil
}

// Packet - encode at most GroupSlots participants as one packet
//
// repeated recipients are merged first
func (e *Encoder) Packet(channel string, participants []Participant, txHash string, random []byte) ([]byte, error) {
	return e.packet(channel, Merge(participants), txHash, random)
}

type slot struct {
	id     []byte
	record []byte
}

func (e *Encoder) packet(channel string, participants []Participant, txHash string, random []byte) ([]byte, error) {
	size, ok := recordSize[channel]
	if !ok {
		return nil, fmt.Errorf("channel: %q: %w", channel, fault.ErrNotificationEncoding)
	}
	if len(participants) > GroupSlots {
		return nil, fault.ErrTooManyParticipants
	}

	decoys, err := e.crypto.Expand(random, channel+":decoys", GroupSlots*account.AddressLength)
	if nil != err {
		return nil, err
	}

	slots := make([]slot, 0, GroupSlots)
	for i := 0; i < GroupSlots; i += 1 {
		var recipient account.Address
		record := make([]byte, size)
		input := txHash
		if i < len(participants) {
			p := participants[i]
			recipient = p.Recipient
			encodeRecord(record, &p)
			input = e.next(channel, recipient, txHash)
		} else {
			copy(recipient[:], decoys[i*account.AddressLength:])
		}

		seed, err := e.crypto.Seed(recipient)
		if nil != err {
			return nil, err
		}
		id, err := e.crypto.ID(seed, channel, input)
		if nil != err {
			return nil, err
		}
		if len(id) < PacketIDSize+size {
			return nil, fmt.Errorf("notification id: %d bytes: %w", len(id), fault.ErrNotificationEncoding)
		}
		slots = append(slots, slot{id: id, record: record})
	}

	// order by packet id so position says nothing about the slot
	sort.Slice(slots, func(i, j int) bool {
		return bytes.Compare(slots[i].id[:PacketIDSize], slots[j].id[:PacketIDSize]) < 0
	})

	packet := make([]byte, BloomBytes, PacketSize(channel))
	for _, s := range slots {
		bloomAdd(packet[:BloomBytes], s.id)
	}
	for _, s := range slots {
		packet = append(packet, s.id[:PacketIDSize]...)
		for i, b := range s.record {
			packet = append(packet, b^s.id[PacketIDSize+i])
		}
	}
	return packet, nil
}

func encodeRecord(record []byte, p *Participant) {
	flags := p.Amount.Uint64(amountBits) & amountMask
	if p.Counterpart == p.Recipient {
		flags |= flagSelf
	}
	if p.HasMemo {
		flags |= flagMemo
	}
	binary.BigEndian.PutUint64(record[:8], flags)
	copy(record[8:8+addressTail], p.Counterpart[account.AddressLength-addressTail:])
	if len(record) >= spentBytes {
		binary.BigEndian.PutUint64(record[16:24], p.Balance.Uint64(64))
	}
}

// Record - decoded group slot
type Record struct {
	Amount          uint64
	Self            bool
	HasMemo         bool
	CounterpartTail []byte
	Balance         uint64
}

// Find - locate and decrypt the slot for notification id
func Find(channel string, packet []byte, id []byte) (*Record, bool) {
	size, ok := recordSize[channel]
	if !ok || len(packet) != PacketSize(channel) || len(id) < PacketIDSize+size {
		return nil, false
	}
	if !MayContain(packet, id) {
		return nil, false
	}
	for offset := BloomBytes; offset < len(packet); offset += PacketIDSize + size {
		if !bytes.Equal(packet[offset:offset+PacketIDSize], id[:PacketIDSize]) {
			continue
		}
		record := make([]byte, size)
		for i := range record {
			record[i] = packet[offset+PacketIDSize+i] ^ id[PacketIDSize+i]
		}
		flags := binary.BigEndian.Uint64(record[:8])
		r := &Record{
			Amount:          flags & amountMask,
			Self:            0 != flags&flagSelf,
			HasMemo:         0 != flags&flagMemo,
			CounterpartTail: record[8 : 8+addressTail],
		}
		if size >= spentBytes {
			r.Balance = binary.BigEndian.Uint64(record[16:24])
		}
		return r, true
	}
	return nil, false
}
