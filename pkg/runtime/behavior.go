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

package runtime

import (
	"github.com/pingcap/errors"

	"github.com/anthill-io/anthill/pkg/actor"
	cerrors "github.com/anthill-io/anthill/pkg/errors"
	"github.com/anthill-io/anthill/pkg/object"
)

// InitFn populates a stateful actor's zero-initialized state. It runs
// lazily during the actor's first turn, before the first message is
// dispatched.
type InitFn[S any] func(rt *Runtime, self object.Ref, state *S)

// RecvFn handles one message of a stateful actor. The callee owns msg
// and must Drop or forward it.
type RecvFn[S any] func(rt *Runtime, self object.Ref, state *S, msg object.Ref)

// StatelessRecvFn handles one message of a stateless actor. It receives
// the reply-to handle explicitly, the noop handle when the message was
// sent with Tell. The callee owns msg and replyTo.
type StatelessRecvFn func(rt *Runtime, self object.Ref, msg, replyTo object.Ref)

// DropFn releases handles owned by a stateful actor's state. It runs
// during termination, after the last message and only if the state was
// initialized.
type DropFn[S any] func(rt *Runtime, state *S)

// An actor has exactly one behavior, chosen at creation. Behavior
// invocations of one actor are strictly serialized, so behaviors need
// no locking of their own.
type behavior interface {
	handle(rt *Runtime, self, msg, replyTo object.Ref)
	stop(rt *Runtime)
}

type statefulBehavior[S any] struct {
	inited bool
	state  S
	init   InitFn[S]
	recv   RecvFn[S]
	drop   DropFn[S]
}

func (b *statefulBehavior[S]) handle(rt *Runtime, self, msg, replyTo object.Ref) {
	if !b.inited {
		b.inited = true
		if b.init != nil {
			b.init(rt, self, &b.state)
		}
	}
	b.recv(rt, self, &b.state, msg)
	// A stateful recv does not see the reply-to, an attached one takes
	// the unhandled-ask path.
	rt.Drop(replyTo)
}

func (b *statefulBehavior[S]) stop(rt *Runtime) {
	if b.inited && b.drop != nil {
		b.drop(rt, &b.state)
	}
}

type statelessBehavior struct {
	recv StatelessRecvFn
}

func (b *statelessBehavior) handle(rt *Runtime, self, msg, replyTo object.Ref) {
	b.recv(rt, self, msg, replyTo)
}

func (b *statelessBehavior) stop(rt *Runtime) {}

// ActorOption configures a stateful actor.
type ActorOption[S any] func(*statefulBehavior[S])

// WithStateDrop sets the hook that releases handles owned by the state
// when the actor terminates.
func WithStateDrop[S any](drop DropFn[S]) ActorOption[S] {
	return func(b *statefulBehavior[S]) { b.drop = drop }
}

// NewActor spawns a stateful actor and returns its handle with a
// reference count of one. The state is zero-initialized; init runs
// before the first message is dispatched.
func NewActor[S any](rt *Runtime, init InitFn[S], recv RecvFn[S], opts ...ActorOption[S]) (object.Ref, error) {
	b := &statefulBehavior[S]{init: init, recv: recv}
	for _, opt := range opts {
		opt(b)
	}
	return rt.spawn(b)
}

// NewStatelessActor spawns a stateless actor and returns its handle
// with a reference count of one.
func NewStatelessActor(rt *Runtime, recv StatelessRecvFn) (object.Ref, error) {
	return rt.spawn(&statelessBehavior{recv: recv})
}

func (rt *Runtime) spawn(b behavior) (object.Ref, error) {
	if rt.stopped.Load() {
		return object.Noop, cerrors.ErrRuntimeStopped.GenWithStackByArgs()
	}
	p := &proc{rt: rt, b: b}
	ref, err := rt.reg.Alloc(object.KindActor, p)
	if err != nil {
		return object.Noop, errors.Trace(err)
	}
	p.self = ref
	rt.live.Inc()
	rt.metricLiveActors.Inc()
	mb := actor.NewMailbox[object.Ref](actor.ID(ref.ID()))
	if err := rt.sys.Spawn(mb, p); err != nil {
		rt.reg.Free(ref)
		rt.actorTerminated()
		return object.Noop, errors.Trace(err)
	}
	rt.metricSpawnedActors.Inc()
	return ref, nil
}
