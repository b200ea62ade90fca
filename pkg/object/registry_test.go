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
	"testing"

	"github.com/stretchr/testify/require"

	cerrors "github.com/anthill-io/anthill/pkg/errors"
)

func TestRegistryRefcountInvariant(t *testing.T) {
	t.Parallel()
	g := NewRegistry(0)
	ref, err := g.Alloc(KindActor, "payload")
	require.Nil(t, err)

	// C clones followed by D drops deallocate iff 1+C-D == 0.
	const clones = 10
	for i := 0; i < clones; i++ {
		require.Nil(t, g.Retain(ref))
	}
	for i := 0; i < clones; i++ {
		_, last := g.Release(ref)
		require.False(t, last)
	}
	count, alive := g.RefCount(ref)
	require.True(t, alive)
	require.Equal(t, int64(1), count)

	payload, last := g.Release(ref)
	require.True(t, last)
	require.Equal(t, "payload", payload)
	g.Free(ref)
	require.Equal(t, int64(0), g.Live())
}

func TestRegistryStaleHandleDetected(t *testing.T) {
	t.Parallel()
	g := NewRegistry(0)
	ref, err := g.Alloc(KindActor, 1)
	require.Nil(t, err)
	_, last := g.Release(ref)
	require.True(t, last)
	g.Free(ref)

	require.True(t, cerrors.ErrStaleHandle.Equal(g.Retain(ref)))
	_, err = g.Get(ref)
	require.True(t, cerrors.ErrStaleHandle.Equal(err))
	_, alive := g.RefCount(ref)
	require.False(t, alive)
}

func TestRegistrySlotReuseBumpsGeneration(t *testing.T) {
	t.Parallel()
	g := NewRegistry(0)
	refs := make([]Ref, 2*numShards)
	for i := range refs {
		ref, err := g.Alloc(KindActor, i)
		require.Nil(t, err)
		refs[i] = ref
	}
	for _, ref := range refs {
		_, last := g.Release(ref)
		require.True(t, last)
		g.Free(ref)
	}
	// Slots are recycled, identities are not.
	for i := 0; i < len(refs); i++ {
		ref, err := g.Alloc(KindActor, i)
		require.Nil(t, err)
		for _, old := range refs {
			require.NotEqual(t, old.ID(), ref.ID())
		}
	}
}

func TestRegistryLimit(t *testing.T) {
	t.Parallel()
	g := NewRegistry(2)
	a, err := g.Alloc(KindActor, nil)
	require.Nil(t, err)
	_, err = g.Alloc(KindActor, nil)
	require.Nil(t, err)
	_, err = g.Alloc(KindActor, nil)
	require.True(t, cerrors.ErrAllocationFailed.Equal(err))

	// Freeing a slot makes room again.
	_, last := g.Release(a)
	require.True(t, last)
	g.Free(a)
	_, err = g.Alloc(KindActor, nil)
	require.Nil(t, err)
}

func TestRegistryConcurrentRetainRelease(t *testing.T) {
	t.Parallel()
	g := NewRegistry(0)
	ref, err := g.Alloc(KindActor, nil)
	require.Nil(t, err)

	const goroutines = 8
	const rounds = 1000
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				require.Nil(t, g.Retain(ref))
				_, last := g.Release(ref)
				require.False(t, last)
			}
		}()
	}
	wg.Wait()

	count, alive := g.RefCount(ref)
	require.True(t, alive)
	require.Equal(t, int64(1), count)
	_, last := g.Release(ref)
	require.True(t, last)
	g.Free(ref)
}
