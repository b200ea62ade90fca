// Copyright 2025 anthill Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package object

import (
	"sync"

	"github.com/pingcap/log"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	cerrors "github.com/anthill-io/anthill/pkg/errors"
)

const (
	shardBits = 5
	numShards = 1 << shardBits
	// Per-shard slot index must fit the remaining Ref.slot bits.
	maxSlotIndex = 1<<(32-shardBits) - 1
)

// Registry is a sharded arena of reference-counted slots addressed by
// generational indices. Actors and continuations live here; a Ref
// whose generation no longer matches its slot is stale, which turns
// use-after-drop into a reported error instead of undefined behavior.
type Registry struct {
	shards [numShards]registryShard
	next   atomic.Uint64
	live   atomic.Int64
	limit  int64
}

type registryShard struct {
	mu      sync.RWMutex
	entries []*registryEntry
	free    []uint32
}

type registryEntry struct {
	refs    atomic.Int64
	gen     uint32
	payload any
}

// NewRegistry creates a registry. limit caps the number of live slots,
// zero means unlimited.
func NewRegistry(limit int64) *Registry {
	return &Registry{limit: limit}
}

// Alloc allocates a slot holding payload with a reference count of
// one and returns its handle.
func (g *Registry) Alloc(kind Kind, payload any) (Ref, error) {
	if g.limit > 0 && g.live.Load() >= g.limit {
		return Noop, cerrors.ErrAllocationFailed.GenWithStackByArgs("slot limit reached")
	}
	shardID := uint32(g.next.Inc()-1) & (numShards - 1)
	shard := &g.shards[shardID]

	shard.mu.Lock()
	var idx uint32
	var e *registryEntry
	if n := len(shard.free); n > 0 {
		idx = shard.free[n-1]
		shard.free = shard.free[:n-1]
		e = shard.entries[idx]
	} else {
		if len(shard.entries) > maxSlotIndex {
			shard.mu.Unlock()
			return Noop, cerrors.ErrAllocationFailed.GenWithStackByArgs("shard is full")
		}
		idx = uint32(len(shard.entries))
		e = &registryEntry{gen: 1}
		shard.entries = append(shard.entries, e)
	}
	e.payload = payload
	e.refs.Store(1)
	gen := e.gen
	shard.mu.Unlock()

	g.live.Inc()
	return Ref{kind: kind, slot: idx<<shardBits | shardID, gen: gen}, nil
}

// Retain acquires one more reference. It fails with ErrStaleHandle if
// the handle's slot was released or is being torn down.
func (g *Registry) Retain(ref Ref) error {
	e := g.lookup(ref)
	if e == nil {
		return cerrors.ErrStaleHandle.GenWithStackByArgs(ref.Address())
	}
	for {
		c := e.refs.Load()
		if c <= 0 {
			return cerrors.ErrStaleHandle.GenWithStackByArgs(ref.Address())
		}
		if e.refs.CompareAndSwap(c, c+1) {
			return nil
		}
	}
}

// Release drops one reference. When the count reaches zero it returns
// the payload and true exactly once; the caller must tear the referent
// down and eventually Free the slot. Releasing a stale handle is a
// double free and fails fast.
func (g *Registry) Release(ref Ref) (any, bool) {
	e := g.lookup(ref)
	if e == nil {
		log.Panic("release of a released handle",
			zap.Stringer("addr", ref.Address()), zap.Stringer("kind", ref.Kind()))
	}
	switch c := e.refs.Dec(); {
	case c > 0:
		return nil, false
	case c == 0:
		return e.payload, true
	default:
		log.Panic("handle refcount below zero",
			zap.Stringer("addr", ref.Address()), zap.Int64("count", c))
		return nil, false
	}
}

// Get returns the payload of a live slot.
func (g *Registry) Get(ref Ref) (any, error) {
	e := g.lookup(ref)
	if e == nil {
		return nil, cerrors.ErrStaleHandle.GenWithStackByArgs(ref.Address())
	}
	return e.payload, nil
}

// Free invalidates the slot's generation and recycles it. It must be
// called exactly once after Release reported the last reference gone
// and the referent's teardown finished.
func (g *Registry) Free(ref Ref) {
	shard := &g.shards[ref.slot&(numShards-1)]
	idx := ref.slot >> shardBits

	shard.mu.Lock()
	e := shard.entries[idx]
	if e.gen != ref.gen {
		shard.mu.Unlock()
		log.Panic("double free of a handle slot", zap.Stringer("addr", ref.Address()))
	}
	e.gen++
	e.payload = nil
	shard.free = append(shard.free, idx)
	shard.mu.Unlock()

	g.live.Dec()
}

// RefCount returns the current reference count of a handle and whether
// its slot is still live. Meant for diagnostics and tests.
func (g *Registry) RefCount(ref Ref) (int64, bool) {
	e := g.lookup(ref)
	if e == nil {
		return 0, false
	}
	return e.refs.Load(), true
}

// Live returns the number of live slots.
func (g *Registry) Live() int64 {
	return g.live.Load()
}

func (g *Registry) lookup(ref Ref) *registryEntry {
	shard := &g.shards[ref.slot&(numShards-1)]
	idx := int(ref.slot >> shardBits)

	shard.mu.RLock()
	defer shard.mu.RUnlock()
	if idx >= len(shard.entries) {
		return nil
	}
	e := shard.entries[idx]
	if e.gen != ref.gen {
		return nil
	}
	return e
}
