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
	"github.com/pingcap/log"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/anthill-io/anthill/pkg/actor"
	"github.com/anthill-io/anthill/pkg/actor/message"
	cerrors "github.com/anthill-io/anthill/pkg/errors"
	"github.com/anthill-io/anthill/pkg/object"
)

// ContFn handles the reply a continuation was told. It observes the
// frame captured at Continue and owns msg and replyTo. The frame is
// released right after the handler returns, handles needed beyond that
// must be cloned out.
type ContFn func(rt *Runtime, frame []object.Ref, msg, replyTo object.Ref)

// continuation is a one-shot reply target. It holds a strong reference
// to the actor that created it; replies are delivered through that
// actor's mailbox, so the handler is serialized with the owner's turns.
type continuation struct {
	owner   object.Ref
	frame   []object.Ref
	handler ContFn

	fired    atomic.Bool
	released atomic.Bool
}

// release drops the frame and the owner reference. It runs exactly
// once, either after the handler fired or when the continuation was
// dropped without a reply.
func (c *continuation) release(rt *Runtime) {
	if !c.released.CompareAndSwap(false, true) {
		return
	}
	for _, ref := range c.frame {
		rt.Drop(ref)
	}
	c.frame = nil
	rt.Drop(c.owner)
}

// Continue builds a continuation owned by the actor self. The frame
// handles move into the continuation and are released with it. The
// returned handle carries a reference count of one.
func (rt *Runtime) Continue(self object.Ref, frame []object.Ref, handler ContFn) (object.Ref, error) {
	if rt.stopped.Load() {
		return object.Noop, cerrors.ErrRuntimeStopped.GenWithStackByArgs()
	}
	if !self.IsActor() {
		return object.Noop, cerrors.ErrContinuationOwner.GenWithStackByArgs(self.Kind())
	}
	if err := rt.reg.Retain(self); err != nil {
		return object.Noop, errors.Trace(err)
	}
	c := &continuation{owner: self, frame: frame, handler: handler}
	ref, err := rt.reg.Alloc(object.KindContinuation, c)
	if err != nil {
		rt.Drop(self)
		return object.Noop, errors.Trace(err)
	}
	return ref, nil
}

// tellCont fires a continuation. The winner of the fired flag enqueues
// a reply envelope into the owner actor's mailbox; a second reply is a
// contract violation and fails fast.
func (rt *Runtime) tellCont(ref, msg, replyTo object.Ref) error {
	payload, err := rt.reg.Get(ref)
	if err != nil {
		return errors.Trace(err)
	}
	c := payload.(*continuation)
	if !c.fired.CompareAndSwap(false, true) {
		log.Panic("continuation replied twice",
			zap.Stringer("addr", ref.Address()))
	}
	// The envelope keeps the continuation alive until the handler ran
	// and pins the owner like any other receiver.
	if err := rt.reg.Retain(ref); err != nil {
		log.Panic("reply races with the final drop of the continuation",
			zap.Stringer("addr", ref.Address()), zap.Error(err))
	}
	if err := rt.reg.Retain(c.owner); err != nil {
		log.Panic("continuation outlived its owner",
			zap.Stringer("addr", ref.Address()),
			zap.Stringer("owner", c.owner.Address()), zap.Error(err))
	}
	if err := rt.router.Send(actor.ID(c.owner.ID()), message.ReplyMessage(ref, msg, replyTo)); err != nil {
		rt.reg.Release(c.owner)
		rt.reg.Release(ref)
		return errors.Trace(err)
	}
	rt.metricSentMessages.Inc()
	return nil
}

// fireContinuation runs a continuation's handler. It is called from the
// owner actor's turn when a reply envelope is dispatched.
func (rt *Runtime) fireContinuation(cont, msg, replyTo object.Ref) {
	payload, err := rt.reg.Get(cont)
	if err != nil {
		log.Panic("fired continuation is gone",
			zap.Stringer("addr", cont.Address()), zap.Error(err))
	}
	c := payload.(*continuation)
	c.handler(rt, c.frame, msg, replyTo)
	c.release(rt)
	// The owner pin is released with the other receiver pins at the
	// end of the turn, the continuation pin is done now.
	rt.Drop(cont)
}
