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
	"github.com/anthill-io/anthill/pkg/deque"
	cerrors "github.com/anthill-io/anthill/pkg/errors"
)

// ID is ID for actors.
type ID uint64

// Actor is a universal primitive of concurrent computation.
// See more https://en.wikipedia.org/wiki/Actor_model
type Actor[T any] interface {
	// Poll handles messages that are sent to the actor's mailbox.
	//
	// The ctx is only for cancellation, and an actor must be aware of
	// the cancellation.
	//
	// If it returns true, then the actor will be rescheduled and
	// polled later. If it returns false, then the actor will be
	// removed from Router and stopped. Once it returns false, it must
	// always return false.
	Poll(ctx context.Context, msgs []message.Message[T]) (running bool)

	// OnStop is called exactly once after the final Poll, when the
	// actor has been removed from Router. It is the place to release
	// whatever the actor owns.
	OnStop()
}

// Mailbox sends messages to an actor. Mailbox is threadsafe.
//
// Unlike a Go channel a mailbox is unbounded, enqueueing never blocks
// and only fails once the actor is stopped. The capacity of all
// mailboxes together is limited by available memory only.
type Mailbox[T any] interface {
	ID() ID
	// Send a message to its actor, it fails with ErrMailboxClosed
	// after the actor stopped.
	Send(msg message.Message[T]) error
	// SendB is like Send but also fails when ctx is already canceled.
	// It may return context.Canceled or context.DeadlineExceeded.
	SendB(ctx context.Context, msg message.Message[T]) error
	// Receive a message. It is nonblocking, and it keeps draining
	// after the mailbox is closed.
	Receive() (message.Message[T], bool)

	// Return the length of a mailbox.
	// It should only be called by System.
	len() int
	// Reject new sends. It should only be called by System.
	close()
}

// NewMailbox creates an unbounded mailbox.
func NewMailbox[T any](id ID) Mailbox[T] {
	return &mailbox[T]{
		id:    id,
		queue: deque.NewDequeDefault[message.Message[T]](),
	}
}

var _ Mailbox[any] = (*mailbox[any])(nil)

type mailbox[T any] struct {
	id ID

	mu     sync.Mutex
	queue  *deque.Deque[message.Message[T]]
	closed bool
}

func (m *mailbox[T]) ID() ID {
	return m.id
}

func (m *mailbox[T]) Send(msg message.Message[T]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return cerrors.ErrMailboxClosed.GenWithStackByArgs()
	}
	m.queue.PushBack(msg)
	return nil
}

func (m *mailbox[T]) SendB(ctx context.Context, msg message.Message[T]) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return m.Send(msg)
}

func (m *mailbox[T]) Receive() (message.Message[T], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.PopFront()
}

func (m *mailbox[T]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}

func (m *mailbox[T]) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
