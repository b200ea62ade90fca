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

package actor

import (
	"context"
	"sync"

	"github.com/anthill-io/anthill/pkg/actor/message"
	cerrors "github.com/anthill-io/anthill/pkg/errors"
)

const routerShardNum = 64

// Router send messages to actors by ID. Router is threadsafe.
type Router[T any] struct {
	sys    *System[T]
	shards []routerShard[T]
}

type routerShard[T any] struct {
	mu    sync.RWMutex
	procs map[ID]*proc[T]
}

func newRouter[T any](sys *System[T]) *Router[T] {
	r := &Router[T]{
		sys:    sys,
		shards: make([]routerShard[T], routerShardNum),
	}
	for i := range r.shards {
		r.shards[i].procs = make(map[ID]*proc[T])
	}
	return r
}

// Send a message to an actor. It is a non-blocking send and returns
// ErrActorNotFound if the actor was never spawned or already stopped.
func (r *Router[T]) Send(id ID, msg message.Message[T]) error {
	p := r.proc(id)
	if p == nil {
		return cerrors.ErrActorNotFound.GenWithStackByArgs(uint64(id))
	}
	return r.sys.deliver(p, msg)
}

// SendB is like Send but also fails when ctx is already canceled.
func (r *Router[T]) SendB(ctx context.Context, id ID, msg message.Message[T]) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return r.Send(id, msg)
}

func (r *Router[T]) proc(id ID) *proc[T] {
	shard := &r.shards[uint64(id)%routerShardNum]
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	return shard.procs[id]
}

func (r *Router[T]) insert(id ID, p *proc[T]) error {
	shard := &r.shards[uint64(id)%routerShardNum]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if _, ok := shard.procs[id]; ok {
		return cerrors.ErrActorDuplicate.GenWithStackByArgs()
	}
	shard.procs[id] = p
	return nil
}

func (r *Router[T]) remove(id ID) {
	shard := &r.shards[uint64(id)%routerShardNum]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	delete(shard.procs, id)
}
