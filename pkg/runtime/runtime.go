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

// Package runtime implements the actor runtime on top of pkg/actor and
// pkg/object: behaviors, reference-counted handles, one-shot
// continuations and the bootstrap that runs a program to quiescence.
package runtime

import (
	"context"
	gruntime "runtime"
	"sync"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/anthill-io/anthill/pkg/actor"
	"github.com/anthill-io/anthill/pkg/actor/message"
	cerrors "github.com/anthill-io/anthill/pkg/errors"
	"github.com/anthill-io/anthill/pkg/object"
	"github.com/anthill-io/anthill/pkg/syncutil"
)

// Config holds the knobs of a runtime.
type Config struct {
	// Name tags logs and metrics of the runtime.
	Name string
	// WorkerNum is the number of worker goroutines, 0 means GOMAXPROCS.
	WorkerNum int
	// Batch is the number of messages handed to one behavior
	// invocation, 0 means the default.
	Batch int
	// Quota is the number of messages an actor may handle before it is
	// rescheduled behind other ready actors, 0 means the default.
	Quota int
	// MaxHandles caps the number of live actors and continuations,
	// 0 means unlimited.
	MaxHandles int64
}

// ValidateAndAdjust validates the config and fills in defaults.
func (c *Config) ValidateAndAdjust() error {
	if c.Name == "" {
		c.Name = "anthill"
	}
	if c.WorkerNum < 0 {
		return cerrors.ErrInvalidConfig.GenWithStackByArgs("worker number must not be negative")
	}
	if c.WorkerNum == 0 {
		c.WorkerNum = gruntime.GOMAXPROCS(0)
	}
	if c.Batch < 0 || c.Quota < 0 {
		return cerrors.ErrInvalidConfig.GenWithStackByArgs("batch and quota must not be negative")
	}
	if c.MaxHandles < 0 {
		return cerrors.ErrInvalidConfig.GenWithStackByArgs("max handles must not be negative")
	}
	return nil
}

// Runtime owns a registry of handles and an actor system. It is created
// by Start and is only valid until Start returns.
type Runtime struct {
	cfg    Config
	reg    *object.Registry
	sys    *actor.System[object.Ref]
	router *actor.Router[object.Ref]

	// The number of live actors. The runtime quiesces when it drops
	// to zero.
	live      atomic.Int64
	quiesceMu sync.Mutex
	quiesce   *syncutil.Cond
	stopped   atomic.Bool

	metricLiveActors    prometheus.Gauge
	metricSpawnedActors prometheus.Counter
	metricSentMessages  prometheus.Counter
}

// Start boots a runtime, runs entry on the calling goroutine and then
// blocks until the runtime quiesces: no live actor remains. Pending
// messages pin their receiver, so quiescence implies all mailboxes have
// drained. The *Runtime must not be used after Start returns.
func Start(cfg Config, entry func(rt *Runtime) error) error {
	if err := cfg.ValidateAndAdjust(); err != nil {
		return errors.Trace(err)
	}
	sys, router := actor.NewSystemBuilder[object.Ref](cfg.Name).
		WorkerNumber(cfg.WorkerNum).
		Throughput(cfg.Batch, cfg.Quota).
		Build()
	rt := &Runtime{
		cfg:    cfg,
		reg:    object.NewRegistry(cfg.MaxHandles),
		sys:    sys,
		router: router,

		metricLiveActors:    liveActors.WithLabelValues(cfg.Name),
		metricSpawnedActors: spawnedActors.WithLabelValues(cfg.Name),
		metricSentMessages:  sentMessages.WithLabelValues(cfg.Name),
	}
	rt.quiesce = syncutil.NewCond(&rt.quiesceMu)
	sys.Start(context.Background())

	if err := entry(rt); err != nil {
		rt.stopped.Store(true)
		if stopErr := sys.Stop(); stopErr != nil {
			log.Warn("stopping actor system failed",
				zap.String("name", cfg.Name), zap.Error(stopErr))
		}
		return errors.Trace(err)
	}

	rt.quiesceMu.Lock()
	for rt.live.Load() > 0 {
		rt.quiesce.Wait()
	}
	rt.quiesceMu.Unlock()

	rt.stopped.Store(true)
	return errors.Trace(sys.Stop())
}

// NewAtom returns a handle to the atom of the given name. Atoms are
// interned for the lifetime of the process, the handle never needs a
// Drop and compares equal to every handle of the same name.
func (rt *Runtime) NewAtom(name string) object.Ref {
	return object.Atom(name)
}

// NewInt returns a handle to an immutable integer value.
func (rt *Runtime) NewInt(v int64) object.Ref {
	return object.IntRef(v)
}

// NewFloat returns a handle to an immutable float value.
func (rt *Runtime) NewFloat(v float64) object.Ref {
	return object.FloatRef(v)
}

// Clone acquires one more reference to ref and returns it. Cloning a
// scalar, atom or noop handle is free. Cloning a released handle is a
// contract violation.
func (rt *Runtime) Clone(ref object.Ref) object.Ref {
	switch ref.Kind() {
	case object.KindNoop, object.KindInt, object.KindFloat, object.KindAtom:
		return ref
	}
	if err := rt.reg.Retain(ref); err != nil {
		log.Panic("clone of a released handle",
			zap.Stringer("addr", ref.Address()), zap.Error(err))
	}
	return ref
}

// Drop releases one reference to ref. Dropping the last reference of an
// actor asks it to stop after its mailbox drains; dropping the last
// reference of a continuation releases its frame without firing it.
func (rt *Runtime) Drop(ref object.Ref) {
	switch ref.Kind() {
	case object.KindNoop, object.KindInt, object.KindFloat, object.KindAtom:
		return
	}
	payload, last := rt.reg.Release(ref)
	if !last {
		return
	}
	switch ref.Kind() {
	case object.KindActor:
		// Every pending message holds a reference to its receiver, so
		// a zero refcount implies an idle actor with an empty mailbox.
		// A stop envelope is all it takes to retire it.
		err := rt.router.Send(actor.ID(ref.ID()), message.StopMessage[object.Ref]())
		if err != nil {
			log.Warn("cannot stop a dropped actor",
				zap.Stringer("addr", ref.Address()), zap.Error(err))
			rt.reg.Free(ref)
			rt.actorTerminated()
		}
	case object.KindContinuation:
		payload.(*continuation).release(rt)
		rt.reg.Free(ref)
	}
}

// Tell sends msg to target with an empty reply-to. The target is
// borrowed and msg moves into the mailbox entry. Telling the noop
// object discards the message. Telling a continuation fires it.
func (rt *Runtime) Tell(target, msg object.Ref) error {
	if rt.stopped.Load() {
		return cerrors.ErrRuntimeStopped.GenWithStackByArgs()
	}
	switch target.Kind() {
	case object.KindNoop:
		rt.Drop(msg)
		return nil
	case object.KindActor:
		return rt.send(target, message.ValueMessage(msg))
	case object.KindContinuation:
		return rt.tellCont(target, msg, object.Noop)
	}
	return cerrors.ErrUnsupportedTarget.GenWithStackByArgs(target.Kind())
}

// Send is an alias of Tell.
func (rt *Runtime) Send(target, msg object.Ref) error {
	return rt.Tell(target, msg)
}

// Ask sends msg to the target actor with replyTo attached. The target
// is borrowed; msg and replyTo move into the mailbox entry. The target
// behavior must eventually Tell replyTo a response or Drop it.
func (rt *Runtime) Ask(target, replyTo, msg object.Ref) error {
	if rt.stopped.Load() {
		return cerrors.ErrRuntimeStopped.GenWithStackByArgs()
	}
	if !target.IsActor() {
		return cerrors.ErrUnsupportedTarget.GenWithStackByArgs(target.Kind())
	}
	return rt.send(target, message.AskMessage(msg, replyTo))
}

// send pins the receiver with one reference and enqueues the envelope.
func (rt *Runtime) send(target object.Ref, msg message.Message[object.Ref]) error {
	if err := rt.reg.Retain(target); err != nil {
		return errors.Trace(err)
	}
	if err := rt.router.Send(actor.ID(target.ID()), msg); err != nil {
		rt.reg.Release(target)
		return errors.Trace(err)
	}
	rt.metricSentMessages.Inc()
	return nil
}

// RefCount returns the reference count of a handle and whether it is
// live. Scalars, atoms and the noop object are always live with a
// count of zero. Meant for diagnostics and tests.
func (rt *Runtime) RefCount(ref object.Ref) (int64, bool) {
	switch ref.Kind() {
	case object.KindNoop, object.KindInt, object.KindFloat, object.KindAtom:
		return 0, true
	}
	return rt.reg.RefCount(ref)
}

// LiveActors returns the number of live actors.
func (rt *Runtime) LiveActors() int64 {
	return rt.live.Load()
}

// actorTerminated accounts a terminated actor and wakes Start when the
// runtime has quiesced.
func (rt *Runtime) actorTerminated() {
	rt.metricLiveActors.Dec()
	if rt.live.Dec() == 0 {
		// Holding quiesceMu closes the race with a waiter that checked
		// the count before this decrement but has not parked yet.
		rt.quiesceMu.Lock()
		rt.quiesce.Broadcast()
		rt.quiesceMu.Unlock()
	}
}
