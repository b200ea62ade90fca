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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anthill-io/anthill/pkg/actor/message"
	cerrors "github.com/anthill-io/anthill/pkg/errors"
)

// collectorActor records every value it is polled with and signals
// OnStop, so tests can assert delivery order and stop semantics.
type collectorActor struct {
	mu     sync.Mutex
	values []int
	polls  int

	stopped chan struct{}
}

func newCollectorActor() *collectorActor {
	return &collectorActor{stopped: make(chan struct{})}
}

var _ Actor[int] = (*collectorActor)(nil)

func (a *collectorActor) Poll(ctx context.Context, msgs []message.Message[int]) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.polls++
	for _, msg := range msgs {
		switch msg.Tp {
		case message.TypeValue:
			a.values = append(a.values, msg.Value)
		case message.TypeStop:
			return false
		default:
			panic("unexpected message type")
		}
	}
	return true
}

func (a *collectorActor) OnStop() {
	close(a.stopped)
}

func (a *collectorActor) collected() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int(nil), a.values...)
}

func startSystem(t *testing.T, workerNum int) (*System[int], *Router[int]) {
	t.Helper()
	sys, router := NewSystemBuilder[int]("test").WorkerNumber(workerNum).Build()
	sys.Start(context.Background())
	return sys, router
}

func TestSystemDeliversInSendOrder(t *testing.T) {
	t.Parallel()
	sys, router := startSystem(t, 2)
	defer func() { require.Nil(t, sys.Stop()) }()

	a := newCollectorActor()
	require.Nil(t, sys.Spawn(NewMailbox[int](ID(1)), a))

	const n = 10000
	for i := 0; i < n; i++ {
		require.Nil(t, router.Send(ID(1), message.ValueMessage(i)))
	}
	require.Nil(t, router.Send(ID(1), message.StopMessage[int]()))
	<-a.stopped

	values := a.collected()
	require.Len(t, values, n)
	for i := 0; i < n; i++ {
		require.Equal(t, i, values[i])
	}
}

func TestSystemSerializesPolls(t *testing.T) {
	t.Parallel()
	sys, router := startSystem(t, 8)
	defer func() { require.Nil(t, sys.Stop()) }()

	a := newCollectorActor()
	require.Nil(t, sys.Spawn(NewMailbox[int](ID(7)), a))

	// Concurrent senders hammer a single actor. The actor mutates its
	// slice without caring about races, serialization of Poll is what
	// keeps the count exact (and the race detector quiet).
	const senders = 8
	const perSender = 2000
	var wg sync.WaitGroup
	wg.Add(senders)
	for i := 0; i < senders; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				require.Nil(t, router.Send(ID(7), message.ValueMessage(j)))
			}
		}()
	}
	wg.Wait()
	require.Nil(t, router.Send(ID(7), message.StopMessage[int]()))
	<-a.stopped
	require.Len(t, a.collected(), senders*perSender)
}

func TestSystemStopActor(t *testing.T) {
	t.Parallel()
	sys, router := startSystem(t, 2)
	defer func() { require.Nil(t, sys.Stop()) }()

	a := newCollectorActor()
	require.Nil(t, sys.Spawn(NewMailbox[int](ID(3)), a))
	require.Nil(t, router.Send(ID(3), message.StopMessage[int]()))
	<-a.stopped

	// A stopped actor is removed from the router.
	err := router.Send(ID(3), message.ValueMessage(1))
	require.True(t, cerrors.ErrActorNotFound.Equal(err))
}

func TestSystemSpawnDuplicate(t *testing.T) {
	t.Parallel()
	sys, _ := startSystem(t, 1)
	defer func() { require.Nil(t, sys.Stop()) }()

	require.Nil(t, sys.Spawn(NewMailbox[int](ID(9)), newCollectorActor()))
	err := sys.Spawn(NewMailbox[int](ID(9)), newCollectorActor())
	require.True(t, cerrors.ErrActorDuplicate.Equal(err))
}

func TestSystemSendAfterStop(t *testing.T) {
	t.Parallel()
	sys, router := startSystem(t, 1)
	a := newCollectorActor()
	require.Nil(t, sys.Spawn(NewMailbox[int](ID(5)), a))
	require.Nil(t, sys.Stop())

	err := router.Send(ID(5), message.ValueMessage(1))
	require.True(t, cerrors.ErrSystemStopped.Equal(err))
	err = sys.Spawn(NewMailbox[int](ID(6)), newCollectorActor())
	require.True(t, cerrors.ErrSystemStopped.Equal(err))
}

// selfSender floods its own mailbox to try to monopolize the system.
type selfSender struct {
	id     ID
	router *Router[int]
	limit  int
	sent   int
}

func (a *selfSender) Poll(ctx context.Context, msgs []message.Message[int]) bool {
	for range msgs {
		if a.sent < a.limit {
			a.sent++
			// The send can only fail during shutdown.
			_ = a.router.Send(a.id, message.ValueMessage(a.sent))
		}
	}
	return true
}

func (a *selfSender) OnStop() {}

func TestSystemFairnessUnderFlood(t *testing.T) {
	t.Parallel()
	// A single worker makes monopolization observable.
	sys, router := startSystem(t, 1)
	defer func() { require.Nil(t, sys.Stop()) }()

	flooder := &selfSender{id: ID(1), router: router, limit: 1 << 20}
	require.Nil(t, sys.Spawn(NewMailbox[int](ID(1)), flooder))
	bystander := newCollectorActor()
	require.Nil(t, sys.Spawn(NewMailbox[int](ID(2)), bystander))

	require.Nil(t, router.Send(ID(1), message.ValueMessage(0)))
	require.Nil(t, router.Send(ID(2), message.StopMessage[int]()))

	// The bystander must be scheduled long before the flooder drains
	// its million self-sends.
	select {
	case <-bystander.stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("bystander starved by a flooding actor")
	}
}
