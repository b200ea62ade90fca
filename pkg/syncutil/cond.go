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

// Package syncutil complements the standard sync package.
package syncutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pingcap/errors"
)

// Cond is like sync.Cond, with the addition that waiting can be
// canceled through a context. It only supports Broadcast.
type Cond struct {
	L  sync.Locker
	ch atomic.Pointer[chan struct{}]
}

// NewCond creates a new Cond guarded by l.
func NewCond(l sync.Locker) *Cond {
	c := &Cond{L: l}
	ch := make(chan struct{})
	c.ch.Store(&ch)
	return c
}

// Wait unlocks L, waits for a Broadcast and locks L again before
// returning. As with sync.Cond the caller must hold L and re-check the
// condition afterwards.
func (c *Cond) Wait() {
	ch := *c.ch.Load()
	c.L.Unlock()
	<-ch
	c.L.Lock()
}

// WaitWithContext waits until Broadcast is called or ctx is canceled.
// L is NOT re-locked when it returns a context error.
func (c *Cond) WaitWithContext(ctx context.Context) error {
	ch := *c.ch.Load()
	c.L.Unlock()
	select {
	case <-ch:
		c.L.Lock()
		return nil
	case <-ctx.Done():
		return errors.Trace(ctx.Err())
	}
}

// Broadcast wakes all current waiters. Unlike sync.Cond it may be
// called without holding L.
func (c *Cond) Broadcast() {
	ch := make(chan struct{})
	old := c.ch.Swap(&ch)
	close(*old)
}
