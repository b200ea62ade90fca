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

// Package errors defines the normalized errors of the anthill runtime.
// Recoverable conditions are returned to the caller as one of these
// errors; contract violations (for example replying to a continuation
// twice) are reported through log.Panic instead.
package errors

import (
	"github.com/pingcap/errors"
)

// handle and registry errors
var (
	ErrAllocationFailed = errors.Normalize(
		"cannot allocate a new handle, %s",
		errors.RFCCodeText("ANTHILL:ErrAllocationFailed"),
	)
	ErrStaleHandle = errors.Normalize(
		"use of a released handle %s",
		errors.RFCCodeText("ANTHILL:ErrStaleHandle"),
	)
	ErrUnsupportedTarget = errors.Normalize(
		"message target must be an actor or a continuation, got %s",
		errors.RFCCodeText("ANTHILL:ErrUnsupportedTarget"),
	)
	ErrContinuationOwner = errors.Normalize(
		"continuation owner must be an actor, got %s",
		errors.RFCCodeText("ANTHILL:ErrContinuationOwner"),
	)
)

// actor system errors
var (
	ErrMailboxClosed = errors.Normalize(
		"mailbox is closed",
		errors.RFCCodeText("ANTHILL:ErrMailboxClosed"),
	)
	ErrActorDuplicate = errors.Normalize(
		"actor is already spawned",
		errors.RFCCodeText("ANTHILL:ErrActorDuplicate"),
	)
	ErrActorNotFound = errors.Normalize(
		"actor not found, id %d",
		errors.RFCCodeText("ANTHILL:ErrActorNotFound"),
	)
	ErrSystemStopped = errors.Normalize(
		"actor system is stopped",
		errors.RFCCodeText("ANTHILL:ErrSystemStopped"),
	)
)

// runtime errors
var (
	ErrRuntimeStopped = errors.Normalize(
		"runtime is stopped",
		errors.RFCCodeText("ANTHILL:ErrRuntimeStopped"),
	)
	ErrInvalidConfig = errors.Normalize(
		"invalid runtime config, %s",
		errors.RFCCodeText("ANTHILL:ErrInvalidConfig"),
	)
)

// WrapError wraps an error into the given normalized error. It returns
// nil if err is nil.
func WrapError(rfcError *errors.Error, err error, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return rfcError.Wrap(err).GenWithStackByArgs(args...)
}
