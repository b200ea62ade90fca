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

	"go.uber.org/atomic"

	"github.com/anthill-io/anthill/pkg/deque"
	"github.com/anthill-io/anthill/pkg/syncutil"
)

// readyQueue tracks procs that have pending messages. It is sharded
// one deque per worker: a worker serves its own shard in FIFO order
// and steals from the back of the other shards when its own runs dry,
// which keeps contention low without starving any shard.
type readyQueue[T any] struct {
	shards   []readyShard[T]
	pending  atomic.Int64
	sleeping atomic.Int64
	stopped  atomic.Bool

	parkMu   sync.Mutex
	parkCond *syncutil.Cond
}

type readyShard[T any] struct {
	mu sync.Mutex
	q  *deque.Deque[*proc[T]]
	// Pad to avoid false sharing between shards.
	_ [40]byte
}

func newReadyQueue[T any](shardNum int) *readyQueue[T] {
	rq := &readyQueue[T]{
		shards: make([]readyShard[T], shardNum),
	}
	for i := range rq.shards {
		rq.shards[i].q = deque.NewDequeDefault[*proc[T]]()
	}
	rq.parkCond = syncutil.NewCond(&rq.parkMu)
	return rq
}

// enqueue adds a ready proc to its home shard and wakes a parked
// worker if there is one.
func (rq *readyQueue[T]) enqueue(p *proc[T]) {
	shard := &rq.shards[p.shard]
	shard.mu.Lock()
	shard.q.PushBack(p)
	shard.mu.Unlock()

	rq.pending.Inc()
	if rq.sleeping.Load() > 0 {
		// Holding parkMu orders the broadcast after a parking worker
		// loads its wait channel, so the wakeup cannot be lost.
		rq.parkMu.Lock()
		rq.parkCond.Broadcast()
		rq.parkMu.Unlock()
	}
}

// fetch returns the next ready proc for the given worker, parking
// until one arrives. It returns nil when the queue is stopped or ctx
// is canceled.
func (rq *readyQueue[T]) fetch(ctx context.Context, worker int) *proc[T] {
	for {
		if rq.stopped.Load() {
			return nil
		}
		if p := rq.tryFetch(worker); p != nil {
			return p
		}

		rq.parkMu.Lock()
		rq.sleeping.Inc()
		// Re-check after registering as a sleeper, enqueue may have
		// published work in between.
		if rq.pending.Load() > 0 || rq.stopped.Load() {
			rq.sleeping.Dec()
			rq.parkMu.Unlock()
			continue
		}
		if err := rq.parkCond.WaitWithContext(ctx); err != nil {
			// parkMu is not held on the error path.
			rq.sleeping.Dec()
			return nil
		}
		rq.sleeping.Dec()
		rq.parkMu.Unlock()
	}
}

func (rq *readyQueue[T]) tryFetch(worker int) *proc[T] {
	n := len(rq.shards)
	for i := 0; i < n; i++ {
		shard := &rq.shards[(worker+i)%n]
		shard.mu.Lock()
		var p *proc[T]
		var ok bool
		if i == 0 {
			p, ok = shard.q.PopFront()
		} else {
			// Steal from the back to stay off the victim's hot end.
			p, ok = shard.q.PopBack()
		}
		shard.mu.Unlock()
		if ok {
			rq.pending.Dec()
			return p
		}
	}
	return nil
}

// stop wakes every worker so they can observe the stopped flag.
func (rq *readyQueue[T]) stop() {
	rq.stopped.Store(true)
	rq.parkMu.Lock()
	rq.parkCond.Broadcast()
	rq.parkMu.Unlock()
}
