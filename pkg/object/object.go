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

// Package object implements the handle model of the runtime.
//
// A Ref is a small comparable value that denotes exactly one of: the
// noop object, an immutable scalar (integer or float), an interned
// atom, an actor or a continuation. Scalars and atoms are carried
// inline and never need deallocation. Actors and continuations live in
// a Registry slot addressed by a generational index, with an atomic
// reference count controlling when the referent is torn down.
package object

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Kind enumerates what a Ref denotes.
type Kind uint8

// Ref kinds. KindNoop is the zero value, so the zero Ref is the noop
// object, used as the empty reply-to of a Tell.
const (
	KindNoop Kind = iota
	KindInt
	KindFloat
	KindAtom
	KindActor
	KindContinuation
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindNoop:
		return "noop"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindAtom:
		return "atom"
	case KindActor:
		return "actor"
	case KindContinuation:
		return "continuation"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Ref is a handle to a runtime object. Refs are plain values: copying
// one does NOT acquire a reference, use Runtime.Clone for that.
// Two Refs compare equal with == iff they denote the same object,
// which for atoms means the same name and for scalars the same value.
type Ref struct {
	kind Kind
	slot uint32
	gen  uint32
	num  int64
}

// Noop is the handle of the noop object.
var Noop = Ref{}

// IntRef returns a handle to an immutable integer value.
func IntRef(v int64) Ref {
	return Ref{kind: KindInt, num: v}
}

// FloatRef returns a handle to an immutable float value.
func FloatRef(v float64) Ref {
	return Ref{kind: KindFloat, num: int64(math.Float64bits(v))}
}

// Kind returns the kind of the referent.
func (r Ref) Kind() Kind { return r.kind }

// IsNoop reports whether r is the noop object.
func (r Ref) IsNoop() bool { return r.kind == KindNoop }

// IsActor reports whether r denotes an actor.
func (r Ref) IsActor() bool { return r.kind == KindActor }

// IsContinuation reports whether r denotes a continuation.
func (r Ref) IsContinuation() bool { return r.kind == KindContinuation }

// Int returns the integer value of an int handle.
func (r Ref) Int() int64 {
	if r.kind != KindInt {
		log.Panic("handle is not an int", zap.Stringer("kind", r.kind))
	}
	return r.num
}

// Float returns the float value of a float handle.
func (r Ref) Float() float64 {
	if r.kind != KindFloat {
		log.Panic("handle is not a float", zap.Stringer("kind", r.kind))
	}
	return math.Float64frombits(uint64(r.num))
}

// AtomName returns the interned name of an atom handle.
func (r Ref) AtomName() string {
	if r.kind != KindAtom {
		log.Panic("handle is not an atom", zap.Stringer("kind", r.kind))
	}
	return atomName(r.slot)
}

// ID returns the registry identity of an actor or continuation handle.
// It is unique for the lifetime of the process, generations of a
// reused slot yield distinct IDs.
func (r Ref) ID() uint64 {
	return uint64(r.gen)<<32 | uint64(r.slot)
}

// Address returns the printable address of an actor or continuation.
func (r Ref) Address() Address {
	return Address{slot: r.slot, gen: r.gen}
}

// Equal reports whether two handles denote the same object.
func (r Ref) Equal(o Ref) bool { return r == o }

// String implements fmt.Stringer. Actors render as an address, atoms
// as their name, scalars as their value and the noop object as "_".
func (r Ref) String() string {
	switch r.kind {
	case KindNoop:
		return "_"
	case KindInt:
		return strconv.FormatInt(r.num, 10)
	case KindFloat:
		return strconv.FormatFloat(math.Float64frombits(uint64(r.num)), 'g', -1, 64)
	case KindAtom:
		return atomName(r.slot)
	case KindActor:
		return r.Address().String()
	case KindContinuation:
		return r.Address().String() + "[...]"
	}
	return fmt.Sprintf("ref(%d)", uint8(r.kind))
}

// Address identifies an actor or continuation in logs and dumps.
type Address struct {
	slot uint32
	gen  uint32
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return fmt.Sprintf("<0.0.%x>", uint64(a.gen)<<32|uint64(a.slot))
}
