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

package actor

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/anthill-io/anthill/pkg/actor/message"
	cerrors "github.com/anthill-io/anthill/pkg/errors"
)

const (
	// The default size of a message batch passed to one Poll call.
	defaultBatchSize = 32
	// The default number of messages an actor may handle per turn
	// before it is re-enqueued behind other ready actors.
	defaultThroughput = 256
	maxWorkerNum      = 1024
)

// SystemBuilder is a builder of a system.
type SystemBuilder[T any] struct {
	name       string
	workerNum  int
	batchSize  int
	throughput int
}

// NewSystemBuilder returns a new system builder.
func NewSystemBuilder[T any](name string) *SystemBuilder[T] {
	defaultWorkerNum := runtime.GOMAXPROCS(0)
	if defaultWorkerNum > maxWorkerNum {
		defaultWorkerNum = maxWorkerNum
	}
	return &SystemBuilder[T]{
		name:       name,
		workerNum:  defaultWorkerNum,
		batchSize:  defaultBatchSize,
		throughput: defaultThroughput,
	}
}

// WorkerNumber sets the number of workers of a system.
func (b *SystemBuilder[T]) WorkerNumber(workerNum int) *SystemBuilder[T] {
	if workerNum <= 0 {
		workerNum = 1
	} else if workerNum > maxWorkerNum {
		workerNum = maxWorkerNum
	}
	b.workerNum = workerNum
	return b
}

// Throughput sets the batch size of one Poll call and the number of
// messages an actor may handle within one turn.
func (b *SystemBuilder[T]) Throughput(batchSize, throughput int) *SystemBuilder[T] {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if throughput <= 0 {
		throughput = defaultThroughput
	}
	if throughput < batchSize {
		throughput = batchSize
	}
	b.batchSize = batchSize
	b.throughput = throughput
	return b
}

// Build builds a system and a router.
func (b *SystemBuilder[T]) Build() (*System[T], *Router[T]) {
	sys := &System[T]{
		name:       b.name,
		workerNum:  b.workerNum,
		batchSize:  b.batchSize,
		throughput: b.throughput,
		rd:         newReadyQueue[T](b.workerNum),

		metricTotalWorkers:    totalWorkers.WithLabelValues(b.name),
		metricWorkingWorkers:  workingWorkers.WithLabelValues(b.name),
		metricWorkingDuration: workingDuration.WithLabelValues(b.name),
		metricTotalProcs:      totalProcs.WithLabelValues(b.name),
		metricPolledMessages:  polledMessages.WithLabelValues(b.name),
	}
	sys.router = newRouter[T](sys)
	return sys, sys.router
}

// System is the runtime of actors. It schedules ready actors onto a
// fixed pool of worker goroutines.
type System[T any] struct {
	name       string
	workerNum  int
	batchSize  int
	throughput int

	router *Router[T]
	rd     *readyQueue[T]

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped atomic.Bool

	metricTotalWorkers    prometheus.Gauge
	metricWorkingWorkers  prometheus.Gauge
	metricWorkingDuration prometheus.Counter
	metricTotalProcs      prometheus.Gauge
	metricPolledMessages  prometheus.Counter
}

// Start the system. Cancelling the context to stop handling messages
// abruptly; for a graceful stop, use Stop after actors quiesce.
func (s *System[T]) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.metricTotalWorkers.Add(float64(s.workerNum))
	for i := 0; i < s.workerNum; i++ {
		id := i
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.workerLoop(ctx, id)
		}()
	}
	log.Info("actor system started",
		zap.String("name", s.name), zap.Int("workerNum", s.workerNum))
}

// Stop the system. It waits for all workers to exit. Messages left in
// mailboxes are not handled.
func (s *System[T]) Stop() error {
	if s.stopped.Swap(true) {
		return cerrors.ErrSystemStopped.GenWithStackByArgs()
	}
	s.rd.stop()
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.metricTotalWorkers.Add(-float64(s.workerNum))
	log.Info("actor system stopped", zap.String("name", s.name))
	return nil
}

// Spawn spawns an actor in the system. The actor will be polled once
// messages arrive in its mailbox.
func (s *System[T]) Spawn(mb Mailbox[T], actor Actor[T]) error {
	if s.stopped.Load() {
		return cerrors.ErrSystemStopped.GenWithStackByArgs()
	}
	id := mb.ID()
	p := &proc[T]{
		mb:    mb,
		actor: actor,
		shard: int(uint64(id) % uint64(s.workerNum)),
	}
	if err := s.router.insert(id, p); err != nil {
		return err
	}
	s.metricTotalProcs.Inc()
	return nil
}

// deliver enqueues a message and schedules the proc if it was idle.
func (s *System[T]) deliver(p *proc[T], msg message.Message[T]) error {
	if s.stopped.Load() {
		return cerrors.ErrSystemStopped.GenWithStackByArgs()
	}
	if err := p.mb.Send(msg); err != nil {
		return err
	}
	if p.onMessage() {
		s.rd.enqueue(p)
	}
	return nil
}

func (s *System[T]) workerLoop(ctx context.Context, id int) {
	batch := make([]message.Message[T], 0, s.batchSize)
	for {
		p := s.rd.fetch(ctx, id)
		if p == nil {
			return
		}
		s.metricWorkingWorkers.Inc()
		start := time.Now()
		s.runTurn(ctx, p, batch)
		s.metricWorkingDuration.Add(time.Since(start).Seconds())
		s.metricWorkingWorkers.Dec()
	}
}

// runTurn polls one proc for at most the system's throughput of
// messages, then either re-enqueues it or retires it to idle.
func (s *System[T]) runTurn(ctx context.Context, p *proc[T], batch []message.Message[T]) {
	p.state.Store(procStateRunning)

	running := true
	consumed := 0
	for consumed < s.throughput {
		batch = batch[:0]
		for len(batch) < s.batchSize {
			msg, ok := p.mb.Receive()
			if !ok {
				break
			}
			batch = append(batch, msg)
		}
		if len(batch) == 0 {
			break
		}
		consumed += len(batch)
		if !p.actor.Poll(ctx, batch) {
			running = false
			break
		}
	}
	s.metricPolledMessages.Add(float64(consumed))

	if !running {
		s.stopProc(p)
		return
	}
	if p.mb.len() > 0 {
		p.state.Store(procStateReady)
		s.rd.enqueue(p)
		return
	}
	p.state.Store(procStateIdle)
	// Close the race with a send that observed the running state.
	if p.mb.len() > 0 && p.state.CompareAndSwap(procStateIdle, procStateReady) {
		s.rd.enqueue(p)
	}
}

func (s *System[T]) stopProc(p *proc[T]) {
	p.state.Store(procStateStopped)
	s.router.remove(p.mb.ID())
	p.mb.close()
	dropped := 0
	for {
		if _, ok := p.mb.Receive(); !ok {
			break
		}
		dropped++
	}
	if dropped != 0 {
		log.Warn("stopped actor dropped messages",
			zap.String("name", s.name),
			zap.Uint64("id", uint64(p.mb.ID())), zap.Int("dropped", dropped))
	}
	s.metricTotalProcs.Dec()
	p.actor.OnStop()
}
