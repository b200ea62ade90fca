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

// Package message defines the envelopes that flow through mailboxes.
package message

// Type is the type of an envelope.
type Type int

// types of envelopes
const (
	TypeUnknown Type = iota
	// TypeValue carries a payload, with an optional reply-to target.
	TypeValue
	// TypeReply fires a continuation with a payload.
	TypeReply
	// TypeStop asks an actor to stop after the messages before it.
	TypeStop
)

// Message is a vehicle to send a payload between actors. We use a
// concrete struct over a T payload instead of an interface to save
// memory allocation on the send path.
type Message[T any] struct {
	Tp      Type
	Value   T
	ReplyTo T
	// Cont is the continuation being fired, set for TypeReply only.
	Cont T
}

// ValueMessage creates a fire-and-forget envelope.
func ValueMessage[T any](value T) Message[T] {
	return Message[T]{Tp: TypeValue, Value: value}
}

// AskMessage creates an envelope carrying a reply-to target.
func AskMessage[T any](value, replyTo T) Message[T] {
	return Message[T]{Tp: TypeValue, Value: value, ReplyTo: replyTo}
}

// ReplyMessage creates an envelope that fires the continuation cont.
func ReplyMessage[T any](cont, value, replyTo T) Message[T] {
	return Message[T]{Tp: TypeReply, Value: value, ReplyTo: replyTo, Cont: cont}
}

// StopMessage creates an envelope that stops the receiving actor.
func StopMessage[T any]() Message[T] {
	return Message[T]{Tp: TypeStop}
}
