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

package main

import (
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"

	"github.com/anthill-io/anthill/pkg/object"
	"github.com/anthill-io/anthill/pkg/runtime"
)

func newEchoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "echo",
		Short: "Run the ask/continuation round trip and dump the observed frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEcho(cmd)
		},
	}
}

func runEcho(cmd *cobra.Command) error {
	err := runtime.Start(runtime.Config{Name: "echo"},
		func(rt *runtime.Runtime) error {
			driver, err := runtime.NewActor(rt, nil,
				func(rt *runtime.Runtime, self object.Ref, state *counter, msg object.Ref) {
					echo, err := runtime.NewStatelessActor(rt,
						func(rt *runtime.Runtime, self object.Ref, msg, replyTo object.Ref) {
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
						func(rt *runtime.Runtime, frame []object.Ref, msg, replyTo object.Ref) {
							cmd.Printf("frame: [%s %s] msg: %s reply-to: %s\n",
								rt.Format(frame[0]), rt.Format(frame[1]),
								rt.Format(msg), rt.Format(replyTo))
							rt.Drop(msg)
							rt.Drop(replyTo)
						})
					if err != nil {
						panic(err)
					}
					cmd.Printf("continuation: %s\n", rt.Format(cont))
					if err := rt.Ask(echo, cont, rt.NewAtom("ping")); err != nil {
						panic(err)
					}
					rt.Drop(echo)
					rt.Drop(msg)
				})
			if err != nil {
				return errors.Trace(err)
			}
			if err := rt.Tell(driver, rt.NewAtom("init!")); err != nil {
				return errors.Trace(err)
			}
			rt.Drop(driver)
			return nil
		})
	return errors.Trace(err)
}
