// Copyright 2024 Massimo Saia and The Caddy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gochash implements a family of consistent-hashing engines that
// assign keys to a dynamic set of buckets while minimising remapping under
// additions and removals.
package gochash

import "github.com/msaia/gochash/internal/errs"

// ErrKind classifies an Error raised by an engine when a caller violates
// one of its preconditions.
type ErrKind = errs.Kind

const (
	// PreconditionViolated marks a programming error: removing a bucket
	// that is not currently working, adding a bucket when the engine is
	// already at capacity, or removing the last bucket of a working set
	// of size one.
	PreconditionViolated = errs.PreconditionViolated
	// AllocationFailed marks a fatal, non-recoverable allocation failure.
	AllocationFailed = errs.AllocationFailed
)

// Error is the error type returned by engine operations that violate a
// documented precondition. It is a programming error, not a recoverable
// condition; callers are expected to enforce preconditions rather than
// branch on this type in steady-state code.
type Error = errs.Error
