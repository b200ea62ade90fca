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
	"go.uber.org/atomic"
)

// proc states. A proc moves idle -> ready when a message arrives,
// ready -> running when a worker picks it up, and running -> idle or
// ready when the worker is done with the turn. stopped is final.
const (
	procStateIdle int32 = iota
	procStateReady
	procStateRunning
	procStateStopped
)

// proc is an actor paired with its mailbox, the unit the ready shards
// and workers operate on. Exactly one worker holds a proc in the
// running state at any time, which is the isolation guarantee of the
// system.
type proc[T any] struct {
	mb    Mailbox[T]
	actor Actor[T]
	state atomic.Int32
	// Home ready shard, assigned at spawn time.
	shard int
}

// onMessage flags the proc runnable after a send. It reports whether
// the caller must enqueue the proc on its ready shard.
func (p *proc[T]) onMessage() bool {
	return p.state.CompareAndSwap(procStateIdle, procStateReady)
}
