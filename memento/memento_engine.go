// Copyright 2024 Massimo Coluzzi and The Caddy Authors
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

package memento

import (
	"fmt"

	"github.com/msaia/gochash/mixer"
)

// Backend is any engine whose RemoveBucket can only pop the highest
// indexed bucket — JumpHash, PowerHash and Binomial all qualify. Engine
// adds arbitrary-index removal on top of one of these.
type Backend interface {
	GetBucket(key, seed uint64) int
	AddBucket() int
	RemoveBucket() int
	Size() int
}

// Engine combines a Memento replacement table with an append/pop-only
// Backend to support removing any bucket, not just the last one added.
//
// Author: Massimo Coluzzi
type Engine struct {
	memento     Interface
	backend     Backend
	lastRemoved int
}

// NewEngine creates an Engine over backend, initially sized to
// backend.Size(). The RWMutex-guarded Memento variant is used for the
// replacement table.
func NewEngine(backend Backend) *Engine {
	return NewEngineWithMemento(backend, New())
}

// NewLockFreeEngine creates an Engine using the lock-free, copy-on-write
// Memento variant for the replacement table.
func NewLockFreeEngine(backend Backend) *Engine {
	return NewEngineWithMemento(backend, NewLockFree())
}

// NewEngineWithMemento creates an Engine over backend using an explicit
// replacement-table implementation.
func NewEngineWithMemento(backend Backend, memento Interface) *Engine {
	return &Engine{
		memento:     memento,
		backend:     backend,
		lastRemoved: backend.Size(),
	}
}

// GetBucket returns the bucket key maps to under seed.
func (e *Engine) GetBucket(key, seed uint64) int {
	b := e.backend.GetBucket(key, seed)

	// replacer >= 0 means b was removed; -1 means b is live.
	replacer := e.memento.Replacer(b)

	for replacer >= 0 {
		// b was removed: replacer is the size of the working set right
		// after that removal, so re-hash into [0,replacer).
		h := uint64(mixer.Mix(key, uint64(b)))
		b = int(h % uint64(replacer))

		r := e.memento.Replacer(b)
		for r >= 0 && r >= replacer {
			b = r
			r = e.memento.Replacer(b)
		}

		replacer = r
	}

	return b
}

// AddBucket restores the most recently removed bucket to the working set
// and returns its index.
func (e *Engine) AddBucket() int {
	bucket := e.lastRemoved

	e.lastRemoved = e.memento.Restore(bucket)

	if e.backendSize() <= bucket {
		e.backend.AddBucket()
	}

	return bucket
}

// RemoveBucket removes bucket from the working set and returns it.
func (e *Engine) RemoveBucket(bucket int) int {
	mementoSize := e.memento.Size()
	backendSize := e.backend.Size()
	workingSize := backendSize - mementoSize

	if mementoSize == 0 && bucket == backendSize-1 {
		e.backend.RemoveBucket()
		e.lastRemoved = bucket
		return bucket
	}

	e.lastRemoved = e.memento.Remember(bucket, workingSize-1, e.lastRemoved)

	return bucket
}

// Size returns the size of the working set.
func (e *Engine) Size() int {
	return e.backend.Size() - e.memento.Size()
}

func (e *Engine) backendSize() int {
	return e.backend.Size()
}

// String returns a string representation of the Engine.
func (e *Engine) String() string {
	return fmt.Sprintf("Engine{memento=%s, backendSize=%d, lastRemoved=%d, size=%d}",
		e.memento.String(), e.backendSize(), e.lastRemoved, e.Size())
}
