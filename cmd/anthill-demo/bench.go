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
	"time"

	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"

	"github.com/anthill-io/anthill/pkg/object"
	"github.com/anthill-io/anthill/pkg/runtime"
)

// benchOptions defines flags for the `bench` command.
type benchOptions struct {
	actors  int
	workers int
}

func newBenchCmd() *cobra.Command {
	o := &benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Spawn many counter actors, send each one message and wait for quiescence",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}
	cmd.Flags().IntVar(&o.actors, "actors", 1000000, "number of actors to spawn")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "number of workers, 0 means GOMAXPROCS")
	return cmd
}

type counter struct {
	count int64
}

func (o *benchOptions) run(cmd *cobra.Command) error {
	processed := atomic.NewInt64(0)
	begin := time.Now()
	err := runtime.Start(runtime.Config{Name: "bench", WorkerNum: o.workers},
		func(rt *runtime.Runtime) error {
			start := rt.NewAtom("start!")
			for i := 0; i < o.actors; i++ {
				ref, err := runtime.NewActor(rt,
					func(rt *runtime.Runtime, self object.Ref, state *counter) {
						state.count = 0
					},
					func(rt *runtime.Runtime, self object.Ref, state *counter, msg object.Ref) {
						if msg.Equal(start) {
							state.count++
							processed.Inc()
						}
						rt.Drop(msg)
					})
				if err != nil {
					return errors.Trace(err)
				}
				if err := rt.Tell(ref, start); err != nil {
					return errors.Trace(err)
				}
				rt.Drop(ref)
			}
			return nil
		})
	if err != nil {
		return errors.Trace(err)
	}
	elapsed := time.Since(begin)
	cmd.Printf("spawned %d actors, processed %d messages in %s (%.0f actors/s)\n",
		o.actors, processed.Load(), elapsed,
		float64(o.actors)/elapsed.Seconds())
	return nil
}
