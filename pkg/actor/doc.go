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

// Package actor provides an actor system that can poll very many
// actors concurrently on a small, fixed pool of worker goroutines.
//
// The flow of a message:
//
//	,------.        ,-------.        ,-----.        ,------.       ,-----.
//	|Router|        |Mailbox|        |ready|        |System|       |Actor|
//	`--+---'        `---+---'        `--+--'        `--+---'       `--+--'
//	   |  Send(msg)     |               |              |              |
//	   | -------------->|               |              |              |
//	   |                |               |              |              |
//	   |        schedule(proc)          |              |              |
//	   | ------------------------------>|              |              |
//	   |                |               |   fetch()    |              |
//	   |                |               |<-------------|              |
//	   |                |   Receive()   |              |              |
//	   |                |<------------------------------              |
//	   |                |               |              |  Poll(msgs)  |
//	   |                |               |              |------------->|
//
// A Router finds the target proc (an actor plus its mailbox) and puts
// the message into the mailbox. The proc is then marked ready and
// enqueued on one of the ready shards. Workers pull procs from their
// own shard first and steal from the others when it runs dry; an idle
// worker parks until new work is enqueued.
//
// A proc is never held by two workers at once, so the messages of one
// actor are always handled serially, while distinct actors run
// concurrently on distinct workers. A worker handles at most the
// system's throughput of messages before the proc is re-enqueued, so a
// busy actor cannot monopolize a worker while others are runnable.
package actor
