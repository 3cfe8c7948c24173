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

package gochash

import (
	"fmt"

	"github.com/msaia/gochash/anchor"
	"github.com/msaia/gochash/internal/errs"
	"github.com/msaia/gochash/jump"
	"github.com/msaia/gochash/memento"
	"github.com/msaia/gochash/power"
)

// Engine is the uniform surface implemented by every hashing algorithm in
// this module, plus the opaque wrappers in package wrappers.
type Engine interface {
	// GetBucket returns the bucket that (key, seed) maps to among the
	// currently working buckets.
	GetBucket(key, seed uint64) int

	// AddBucket adds a bucket to the working set and returns its index.
	AddBucket() (int, error)

	// RemoveBucket removes bucket b from the working set and returns the
	// bucket actually removed. Tail-only engines ignore b and remove the
	// highest-indexed bucket instead.
	RemoveBucket(b int) (int, error)

	// Size returns the current working set size.
	Size() int
}

// Kind selects which algorithm New constructs.
type Kind int

const (
	// KindAnchor selects AnchorHash, supporting arbitrary removals
	// natively within a fixed capacity.
	KindAnchor Kind = iota
	// KindJump selects JumpHash, tail-only.
	KindJump
	// KindPower selects PowerHash, tail-only.
	KindPower
	// KindBinomial selects BinomialHash, tail-only.
	KindBinomial
	// KindMemento selects MementoHash backed by JumpHash, supporting
	// arbitrary removals via a replacement table.
	KindMemento
	// KindMementoOne selects MementoHash backed by PowerHash ("Memento-one").
	KindMementoOne
)

func (k Kind) String() string {
	switch k {
	case KindAnchor:
		return "anchor"
	case KindJump:
		return "jump"
	case KindPower:
		return "power"
	case KindBinomial:
		return "binomial"
	case KindMemento:
		return "memento"
	case KindMementoOne:
		return "memento-one"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// New constructs an Engine of the given kind. capacity is only meaningful
// for KindAnchor (the fixed anchor-array size); every other kind grows
// and shrinks its backing storage as buckets are added and removed.
func New(kind Kind, capacity, initialWorkingSet int) (Engine, error) {
	switch kind {
	case KindAnchor:
		a, err := anchor.New(capacity, initialWorkingSet)
		if err != nil {
			return nil, err
		}
		return anchorAdapter{a}, nil
	case KindJump:
		return tailAdapter{jump.New(initialWorkingSet)}, nil
	case KindPower:
		return tailAdapter{power.New(initialWorkingSet)}, nil
	case KindBinomial:
		return tailAdapter{memento.NewBinomial(initialWorkingSet)}, nil
	case KindMemento:
		return mementoAdapter{memento.NewEngine(jump.New(initialWorkingSet))}, nil
	case KindMementoOne:
		return mementoAdapter{memento.NewEngine(power.New(initialWorkingSet))}, nil
	default:
		return nil, errs.Precondition("gochash.New", fmt.Sprintf("unknown kind %v", kind))
	}
}

// anchorAdapter adapts anchor.Anchor (RemoveBucket without an error
// return, and without echoing back the bucket it was given) to the
// Engine interface.
type anchorAdapter struct{ *anchor.Anchor }

func (a anchorAdapter) RemoveBucket(b int) (int, error) {
	a.Anchor.RemoveBucket(b)
	return b, nil
}

// tailBackend is satisfied by Jump, Power and Binomial: engines whose
// RemoveBucket always pops the highest-indexed bucket.
type tailBackend interface {
	GetBucket(key, seed uint64) int
	AddBucket() int
	RemoveBucket() int
	Size() int
}

// tailAdapter adapts a tailBackend to the Engine interface.
type tailAdapter struct{ tailBackend }

func (t tailAdapter) AddBucket() (int, error) {
	return t.tailBackend.AddBucket(), nil
}

func (t tailAdapter) RemoveBucket(int) (int, error) {
	return t.tailBackend.RemoveBucket(), nil
}

// mementoAdapter adapts memento.Engine to the Engine interface.
type mementoAdapter struct{ *memento.Engine }

func (m mementoAdapter) AddBucket() (int, error) {
	return m.Engine.AddBucket(), nil
}

func (m mementoAdapter) RemoveBucket(b int) (int, error) {
	return m.Engine.RemoveBucket(b), nil
}
