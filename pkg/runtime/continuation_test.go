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
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/anthill-io/anthill/pkg/object"
)

// TestAskEchoRoundTrip is the continuation scenario: a driver actor
// receives "init!", spawns an echo actor, builds a continuation with a
// two-field frame and asks the echo actor. The echo actor tells the
// message back to its reply-to, the handler must fire exactly once and
// observe the frame, the message and an empty reply-to.
func TestAskEchoRoundTrip(t *testing.T) {
	t.Parallel()
	fired := atomic.NewInt64(0)
	var frameA, frameB int64
	var gotPing, gotNoopReply bool
	err := Start(Config{Name: "echo"}, func(rt *Runtime) error {
		driver, err := NewActor(rt, nil,
			func(rt *Runtime, self object.Ref, state *counterState, msg object.Ref) {
				echo, err := NewStatelessActor(rt,
					func(rt *Runtime, self object.Ref, msg, replyTo object.Ref) {
						if err := rt.Tell(replyTo, msg); err != nil {
							panic(err)
						}
						rt.Drop(replyTo)
					})
				if err != nil {
					panic(err)
				}
				frame := []object.Ref{rt.NewInt(123), rt.NewInt(234)}
				cont, err := rt.Continue(self, frame,
					func(rt *Runtime, frame []object.Ref, msg, replyTo object.Ref) {
						fired.Inc()
						frameA, frameB = frame[0].Int(), frame[1].Int()
						gotPing = msg.Equal(rt.NewAtom("ping"))
						gotNoopReply = replyTo.IsNoop()
						rt.Drop(msg)
						rt.Drop(replyTo)
					})
				if err != nil {
					panic(err)
				}
				if err := rt.Ask(echo, cont, rt.NewAtom("ping")); err != nil {
					panic(err)
				}
				rt.Drop(echo)
				rt.Drop(msg)
			})
		if err != nil {
			return err
		}
		if err := rt.Tell(driver, rt.NewAtom("init!")); err != nil {
			return err
		}
		rt.Drop(driver)
		return nil
	})
	require.Nil(t, err)
	require.Equal(t, int64(1), fired.Load())
	require.Equal(t, int64(123), frameA)
	require.Equal(t, int64(234), frameB)
	require.True(t, gotPing)
	require.True(t, gotNoopReply)
}

func TestContinuationDoubleReply(t *testing.T) {
	t.Parallel()
	fired := atomic.NewInt64(0)
	var recovered interface{}
	err := Start(Config{Name: "double-reply"}, func(rt *Runtime) error {
		contCh := make(chan object.Ref, 1)
		driver, err := NewActor(rt, nil,
			func(rt *Runtime, self object.Ref, state *counterState, msg object.Ref) {
				cont, err := rt.Continue(self, nil,
					func(rt *Runtime, frame []object.Ref, msg, replyTo object.Ref) {
						fired.Inc()
						rt.Drop(msg)
						rt.Drop(replyTo)
					})
				if err != nil {
					panic(err)
				}
				contCh <- cont
				rt.Drop(msg)
			})
		if err != nil {
			return err
		}
		if err := rt.Tell(driver, rt.NewAtom("go")); err != nil {
			return err
		}
		rt.Drop(driver)

		cont := <-contCh
		require.Nil(t, rt.Tell(cont, rt.NewInt(1)))
		// The second reply is a contract violation and must fail fast,
		// without invoking the handler again.
		func() {
			defer func() { recovered = recover() }()
			_ = rt.Tell(cont, rt.NewInt(2))
		}()
		rt.Drop(cont)
		return nil
	})
	require.Nil(t, err)
	require.NotNil(t, recovered)
	require.Equal(t, int64(1), fired.Load())
}

// TestContinuationDropReleasesFrame drops a continuation that was never
// replied to. The release must run exactly once and drop the frame's
// handles, observable through the helper actor terminating, which is
// what lets the runtime quiesce at all.
func TestContinuationDropReleasesFrame(t *testing.T) {
	t.Parallel()
	fired := atomic.NewInt64(0)
	helperStops := atomic.NewInt64(0)
	err := Start(Config{Name: "drop-cont"}, func(rt *Runtime) error {
		contCh := make(chan object.Ref, 1)
		driver, err := NewActor(rt, nil,
			func(rt *Runtime, self object.Ref, state *counterState, msg object.Ref) {
				helper, err := NewActor(rt, nil,
					func(rt *Runtime, self object.Ref, state *counterState, msg object.Ref) {
						rt.Drop(msg)
					},
					WithStateDrop(func(rt *Runtime, state *counterState) {
						helperStops.Inc()
					}))
				if err != nil {
					panic(err)
				}
				// The frame owns the only handle of the helper. Poke
				// the helper once so its init path runs.
				if err := rt.Tell(helper, rt.NewAtom("poke")); err != nil {
					panic(err)
				}
				cont, err := rt.Continue(self, []object.Ref{helper},
					func(rt *Runtime, frame []object.Ref, msg, replyTo object.Ref) {
						fired.Inc()
						rt.Drop(msg)
						rt.Drop(replyTo)
					})
				if err != nil {
					panic(err)
				}
				contCh <- cont
				rt.Drop(msg)
			})
		if err != nil {
			return err
		}
		if err := rt.Tell(driver, rt.NewAtom("go")); err != nil {
			return err
		}
		rt.Drop(driver)

		rt.Drop(<-contCh)
		return nil
	})
	require.Nil(t, err)
	require.Equal(t, int64(0), fired.Load())
	require.Equal(t, int64(1), helperStops.Load())
}

// TestUnhandledAsk asks a stateful actor, whose recv never sees the
// reply-to. The runtime takes the unhandled-ask path: the continuation
// is released without firing.
func TestUnhandledAsk(t *testing.T) {
	t.Parallel()
	fired := atomic.NewInt64(0)
	received := atomic.NewInt64(0)
	err := Start(Config{Name: "unhandled-ask"}, func(rt *Runtime) error {
		contCh := make(chan object.Ref, 1)
		driver, err := NewActor(rt, nil,
			func(rt *Runtime, self object.Ref, state *counterState, msg object.Ref) {
				cont, err := rt.Continue(self, nil,
					func(rt *Runtime, frame []object.Ref, msg, replyTo object.Ref) {
						fired.Inc()
						rt.Drop(msg)
						rt.Drop(replyTo)
					})
				if err != nil {
					panic(err)
				}
				contCh <- cont
				rt.Drop(msg)
			})
		if err != nil {
			return err
		}
		target, err := NewActor(rt, nil,
			func(rt *Runtime, self object.Ref, state *counterState, msg object.Ref) {
				received.Inc()
				rt.Drop(msg)
			})
		if err != nil {
			return err
		}
		if err := rt.Tell(driver, rt.NewAtom("go")); err != nil {
			return err
		}
		rt.Drop(driver)

		cont := <-contCh
		if err := rt.Ask(target, cont, rt.NewAtom("question")); err != nil {
			return err
		}
		rt.Drop(target)
		return nil
	})
	require.Nil(t, err)
	require.Equal(t, int64(1), received.Load())
	require.Equal(t, int64(0), fired.Load())
}
