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

package syncutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCondBroadcastWakesAllWaiters(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	cond := NewCond(&mu)
	ready := false

	const waiters = 8
	var wg sync.WaitGroup
	wg.Add(waiters)
	started := make(chan struct{}, waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			mu.Lock()
			started <- struct{}{}
			for !ready {
				cond.Wait()
			}
			mu.Unlock()
		}()
	}
	for i := 0; i < waiters; i++ {
		<-started
	}

	mu.Lock()
	ready = true
	mu.Unlock()
	cond.Broadcast()
	wg.Wait()
}

func TestCondWaitWithContextCancel(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	cond := NewCond(&mu)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		mu.Lock()
		done <- cond.WaitWithContext(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("wait returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	cancel()
	err := <-done
	require.ErrorIs(t, err, context.Canceled)
}
