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
	"context"

	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/anthill-io/anthill/pkg/actor"
	"github.com/anthill-io/anthill/pkg/actor/message"
	"github.com/anthill-io/anthill/pkg/object"
)

// proc adapts a behavior to the actor system. It dispatches envelopes
// to the behavior, fires continuations owned by the actor and releases
// the receiver pins of handled messages.
type proc struct {
	rt   *Runtime
	self object.Ref
	b    behavior
}

var _ actor.Actor[object.Ref] = (*proc)(nil)

func (p *proc) Poll(ctx context.Context, msgs []message.Message[object.Ref]) bool {
	running := true
	pinned := 0
	for i := range msgs {
		switch msgs[i].Tp {
		case message.TypeValue:
			pinned++
			p.b.handle(p.rt, p.self, msgs[i].Value, msgs[i].ReplyTo)
		case message.TypeReply:
			pinned++
			p.rt.fireContinuation(msgs[i].Cont, msgs[i].Value, msgs[i].ReplyTo)
		case message.TypeStop:
			// Sent by Drop when the last reference was released. No
			// message can follow it, sends retain the receiver first.
			running = false
		default:
			log.Panic("unknown envelope type",
				zap.Stringer("addr", p.self.Address()), zap.Int("type", int(msgs[i].Tp)))
		}
	}
	// Each handled envelope held one reference to this actor. Hitting
	// zero here means no handle remains anywhere, the actor retires on
	// the spot instead of waiting for a stop envelope.
	for i := 0; i < pinned; i++ {
		if _, last := p.rt.reg.Release(p.self); last {
			running = false
		}
	}
	return running
}

func (p *proc) OnStop() {
	p.b.stop(p.rt)
	p.rt.reg.Free(p.self)
	p.rt.actorTerminated()
}
