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

// Package deque provides an unbounded double-ended queue backed by a
// growable ring buffer. It is not goroutine safe, callers must
// synchronize access themselves.
package deque

const minCapacity = 16

// A Deque holds values in a ring buffer that doubles when full and
// shrinks when mostly empty, so a burst of producers does not pin
// memory forever.
type Deque[T any] struct {
	buf   []T
	front int
	count int
	zero  T
}

// NewDeque creates a deque with capacity for at least sizeHint values.
func NewDeque[T any](sizeHint int) *Deque[T] {
	capacity := minCapacity
	for capacity < sizeHint {
		capacity <<= 1
	}
	return &Deque[T]{buf: make([]T, capacity)}
}

// NewDequeDefault creates a deque with the default initial capacity.
func NewDequeDefault[T any]() *Deque[T] {
	return NewDeque[T](minCapacity)
}

// Len returns the number of values in the deque.
func (d *Deque[T]) Len() int {
	return d.count
}

// PushBack appends a value at the back.
func (d *Deque[T]) PushBack(v T) {
	d.growIfFull()
	d.buf[d.index(d.count)] = v
	d.count++
}

// PushFront prepends a value at the front.
func (d *Deque[T]) PushFront(v T) {
	d.growIfFull()
	d.front = d.index(len(d.buf) - 1)
	d.buf[d.front] = v
	d.count++
}

// PopFront removes and returns the front value.
func (d *Deque[T]) PopFront() (T, bool) {
	if d.count == 0 {
		return d.zero, false
	}
	v := d.buf[d.front]
	d.buf[d.front] = d.zero
	d.front = d.index(1)
	d.count--
	d.shrinkIfSparse()
	return v, true
}

// PopBack removes and returns the back value.
func (d *Deque[T]) PopBack() (T, bool) {
	if d.count == 0 {
		return d.zero, false
	}
	i := d.index(d.count - 1)
	v := d.buf[i]
	d.buf[i] = d.zero
	d.count--
	d.shrinkIfSparse()
	return v, true
}

// Front returns the front value without removing it.
func (d *Deque[T]) Front() (T, bool) {
	if d.count == 0 {
		return d.zero, false
	}
	return d.buf[d.front], true
}

// Back returns the back value without removing it.
func (d *Deque[T]) Back() (T, bool) {
	if d.count == 0 {
		return d.zero, false
	}
	return d.buf[d.index(d.count-1)], true
}

func (d *Deque[T]) index(offset int) int {
	// len(d.buf) is always a power of two.
	return (d.front + offset) & (len(d.buf) - 1)
}

func (d *Deque[T]) growIfFull() {
	if d.count < len(d.buf) {
		return
	}
	d.resize(len(d.buf) << 1)
}

func (d *Deque[T]) shrinkIfSparse() {
	if len(d.buf) > minCapacity && d.count<<2 <= len(d.buf) {
		d.resize(len(d.buf) >> 1)
	}
}

func (d *Deque[T]) resize(capacity int) {
	buf := make([]T, capacity)
	if d.front+d.count <= len(d.buf) {
		copy(buf, d.buf[d.front:d.front+d.count])
	} else {
		n := copy(buf, d.buf[d.front:])
		copy(buf[n:], d.buf[:d.count-n])
	}
	d.buf = buf
	d.front = 0
}
