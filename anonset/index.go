// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package anonset

import (
	"encoding/binary"
	"fmt"

	"github.com/bitmark-inc/logger"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/storage"
)

// RootID - node id of the trie root
const RootID = 1

// keys in the context pool
var nextNodeKey = []byte("anonset:next-node")

// Parameters - static shape of the trie
type Parameters struct {
	ChunkBits      int // bits of the hash consumed per level, one of 1, 2, 4, 8
	BucketCapacity int // members before a bucket is split
	SlotsPerBucket int // delayed write slots in each bucket
}

// DefaultParameters - values used when not configured
var DefaultParameters = Parameters{
	ChunkBits:      1,
	BucketCapacity: 32,
	SlotsPerBucket: 4,
}

// Validate - check the parameters are usable
func (p Parameters) Validate() error {
	switch p.ChunkBits {
	case 1, 2, 4, 8:
	default:
		return fault.ErrInvalidChunkBits
	}
	if p.BucketCapacity < 1 || p.SlotsPerBucket < 1 {
		return fault.ErrMissingParameters
	}
	return nil
}

// node - persisted trie node, a leaf has no children
type node struct {
	_        struct{} `cbor:",toarray"`
	Depth    int
	Children []uint64
}

func (n *node) isLeaf() bool {
	return 0 == len(n.Children)
}

// Path - result of walking the trie for an address
type Path struct {
	Leaf  uint64 // node id, also the key of its bucket
	Depth int    // number of chunks consumed
}

// Pools - storage used by the index
type Pools struct {
	Context *storage.PoolHandle
	Nodes   *storage.PoolHandle
	Buckets *storage.PoolHandle
}

// Index - the anonymity set trie bound to one transaction
type Index struct {
	log    *logger.L
	trx    storage.Transaction
	pools  Pools
	key    []byte
	params Parameters
}

// New - bind the index to the current transaction
func New(log *logger.L, trx storage.Transaction, pools Pools, key []byte, params Parameters) (*Index, error) {
	if err := params.Validate(); nil != err {
		return nil, err
	}
	return &Index{
		log:    log,
		trx:    trx,
		pools:  pools,
		key:    key,
		params: params,
	}, nil
}

// SlotsPerBucket - number of delayed write slots per bucket
func (x *Index) SlotsPerBucket() int {
	return x.params.SlotsPerBucket
}

// MaxDepth - deepest possible leaf
func (x *Index) MaxDepth() int {
	return 8 * blake2b.Size256 / x.params.ChunkBits
}

// hash an address with the instance key
func (x *Index) hash(addr account.Address) []byte {
	h, err := blake2b.New256(x.key)
	fault.PanicIfError("anonset.hash", err)
	h.Write(addr[:])
	return h.Sum(nil)
}

// extract the chunk that selects the child at depth
func (x *Index) chunk(digest []byte, depth int) int {
	w := x.params.ChunkBits
	bit := depth * w
	b := digest[bit/8]
	shift := 8 - w - bit%8
	return int(b>>uint(shift)) & (1<<uint(w) - 1)
}

// Locate - walk the trie to the leaf for addr
//
// pure: nothing is written, a missing trie locates the root
func (x *Index) Locate(addr account.Address) (Path, error) {
	digest := x.hash(addr)

	n, err := x.getNode(RootID)
	if nil != err {
		return Path{}, err
	}
	if nil == n {
		return Path{Leaf: RootID, Depth: 0}, nil
	}

	id := uint64(RootID)
	for !n.isLeaf() {
		c := x.chunk(digest, n.Depth)
		child := n.Children[c]
		n, err = x.getNode(child)
		if nil != err {
			return Path{}, err
		}
		if nil == n {
			return Path{}, fmt.Errorf("node: %d child: %d: %w", id, child, fault.ErrBucketIntegrity)
		}
		id = child
	}
	return Path{Leaf: id, Depth: n.Depth}, nil
}

// View - read the bucket for addr without modifying anything
func (x *Index) View(addr account.Address) (*Bucket, error) {
	p, err := x.Locate(addr)
	if nil != err {
		return nil, err
	}
	return x.getBucket(p.Leaf)
}

// Visit - load the bucket for addr, apply f and rewrite it
//
// addr is not added as a member; the bucket is written back even when
// f changes nothing so every visit has the same storage footprint
func (x *Index) Visit(addr account.Address, f func(*Bucket) error) error {
	if err := x.initialise(); nil != err {
		return err
	}
	b, err := x.View(addr)
	if nil != err {
		return err
	}
	if err := f(b); nil != err {
		return err
	}
	return x.putBucket(b)
}

// Update - ensure addr is a member, apply f and rewrite the bucket
//
// if f fails the bucket is stored as it was before f so a split made
// by the insert stays consistent
func (x *Index) Update(addr account.Address, f func(*Bucket) error) error {
	b, err := x.Ensure(addr)
	if nil != err {
		return err
	}
	original, err := b.pack()
	if nil != err {
		return err
	}
	if err := f(b); nil != err {
		x.trx.Put(x.pools.Buckets, nodeKey(b.ID), original)
		return err
	}
	return x.putBucket(b)
}

// Ensure - make addr a member of its bucket, splitting if required
//
// returns the bucket now holding addr; the caller must store it
func (x *Index) Ensure(addr account.Address) (*Bucket, error) {
	if err := x.initialise(); nil != err {
		return nil, err
	}
	p, err := x.Locate(addr)
	if nil != err {
		return nil, err
	}
	b, err := x.getBucket(p.Leaf)
	if nil != err {
		return nil, err
	}
	if b.Member(addr) >= 0 {
		return b, nil
	}
	b.SetBalance(addr, amount.Zero)

	digest := x.hash(addr)
	depth := p.Depth
	for len(b.Members) > x.params.BucketCapacity && depth < x.MaxDepth() {
		b, err = x.split(b, depth, x.chunk(digest, depth))
		if nil != err {
			return nil, err
		}
		depth += 1
	}
	return b, nil
}

// split a full leaf into children on the chunk at depth, returning
// the (unstored) child at index keep; the others are stored
func (x *Index) split(b *Bucket, depth int, keep int) (*Bucket, error) {
	fanout := 1 << uint(x.params.ChunkBits)

	children := make([]*Bucket, fanout)
	ids := make([]uint64, fanout)
	for i := range children {
		id, err := x.allocateNode()
		if nil != err {
			return nil, err
		}
		ids[i] = id
		children[i] = newBucket(id, len(b.Slots))
		err = x.putNode(id, &node{Depth: depth + 1})
		if nil != err {
			return nil, err
		}
	}

	for _, m := range b.Members {
		c := x.chunk(x.hash(m.Address), depth)
		children[c].Members = append(children[c].Members, m)
	}

	// live slots follow their holders
	for _, s := range b.Slots {
		if !s.Live {
			continue
		}
		c := children[x.chunk(x.hash(s.Holder), depth)]
		i := c.FreeSlot()
		if i < 0 {
			return nil, fmt.Errorf("split bucket: %d: %w", b.ID, fault.ErrBucketIntegrity)
		}
		c.Slots[i] = s
	}

	err := x.putNode(b.ID, &node{Depth: depth, Children: ids})
	if nil != err {
		return nil, err
	}
	x.trx.Delete(x.pools.Buckets, nodeKey(b.ID))

	for i, c := range children {
		if i == keep {
			continue
		}
		if err := x.putBucket(c); nil != err {
			return nil, err
		}
	}

	x.log.Debugf("split bucket: %d  depth: %d  members: %d", b.ID, depth, len(b.Members))
	return children[keep], nil
}

// Walk - call f for every committed bucket
func (x *Index) Walk(f func(*Bucket) error) error {
	return x.trx.NewFetchCursor(x.pools.Buckets).Map(func(key []byte, value []byte) error {
		b, err := unpackBucket(value)
		if nil != err {
			return err
		}
		return f(b)
	})
}

// create the root leaf on first use
func (x *Index) initialise() error {
	if x.trx.Has(x.pools.Nodes, nodeKey(RootID)) {
		return nil
	}
	x.trx.PutN(x.pools.Context, nextNodeKey, RootID+1)
	if err := x.putNode(RootID, &node{Depth: 0}); nil != err {
		return err
	}
	x.log.Info("created trie root")
	return x.putBucket(newBucket(RootID, x.params.SlotsPerBucket))
}

func (x *Index) allocateNode() (uint64, error) {
	id, found := x.trx.GetN(x.pools.Context, nextNodeKey)
	if !found {
		return 0, fmt.Errorf("next node id: %w", fault.ErrBucketIntegrity)
	}
	x.trx.PutN(x.pools.Context, nextNodeKey, id+1)
	return id, nil
}

func (x *Index) getNode(id uint64) (*node, error) {
	buffer := x.trx.Get(x.pools.Nodes, nodeKey(id))
	if nil == buffer {
		return nil, nil
	}
	n := &node{}
	if err := cbor.Unmarshal(buffer, n); nil != err {
		return nil, fmt.Errorf("node: %d: %w", id, fault.ErrBucketIntegrity)
	}
	return n, nil
}

func (x *Index) putNode(id uint64, n *node) error {
	buffer, err := cbor.Marshal(n)
	if nil != err {
		return err
	}
	x.trx.Put(x.pools.Nodes, nodeKey(id), buffer)
	return nil
}

// a missing root bucket is the empty trie, any other missing
// bucket is corruption
func (x *Index) getBucket(id uint64) (*Bucket, error) {
	buffer := x.trx.Get(x.pools.Buckets, nodeKey(id))
	if nil == buffer {
		if RootID == id && !x.trx.Has(x.pools.Nodes, nodeKey(RootID)) {
			return newBucket(RootID, x.params.SlotsPerBucket), nil
		}
		return nil, fmt.Errorf("bucket: %d: %w", id, fault.ErrBucketIntegrity)
	}
	b, err := unpackBucket(buffer)
	if nil != err {
		return nil, fmt.Errorf("bucket: %d: %w", id, err)
	}
	return b, nil
}

func (x *Index) putBucket(b *Bucket) error {
	buffer, err := b.pack()
	if nil != err {
		return err
	}
	x.trx.Put(x.pools.Buckets, nodeKey(b.ID), buffer)
	return nil
}

func nodeKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}
