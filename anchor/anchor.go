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

// Package anchor implements AnchorHash, a consistent hash algorithm that
// supports removing and restoring arbitrary buckets in O(1) amortized
// time using a fixed-size anchor array.
package anchor

import (
	"github.com/msaia/gochash/internal/errs"
	"github.com/msaia/gochash/mixer"
)

// Anchor maps keys onto a working set of size N drawn from a fixed
// anchor capacity M (N <= M). Removed buckets become "observed" and are
// translated, via the diagonal K, to a live replacement; restoring a
// bucket pops the most recently removed one.
//
// Author: Massimo Coluzzi
type Anchor struct {
	a []uint32 // anchor: 0 if bucket b is working, else the size N at removal time
	w []uint32 // working: maps slot index to the live bucket occupying it
	l []uint32 // lastAppearance: inverse of w, maps a bucket to its slot in w
	k []uint32 // diagonal: translation shortcut for a removed bucket

	m int // anchor capacity
	n int // current working set size

	removed []uint32 // LIFO stack of removed buckets, most recent last
}

// New creates an Anchor with anchor capacity capacity and an initial
// working set of size workingSet (workingSet <= capacity). Buckets
// [workingSet,capacity) start out removed, in order.
func New(capacity, workingSet int) (*Anchor, error) {
	if workingSet > capacity || capacity <= 0 || workingSet < 0 {
		return nil, errs.Precondition("anchor.New", "workingSet must be in [0,capacity]")
	}

	an := &Anchor{
		a: make([]uint32, capacity),
		w: make([]uint32, capacity),
		l: make([]uint32, capacity),
		k: make([]uint32, capacity),
		m: capacity,
		n: workingSet,
	}

	for i := 0; i < capacity; i++ {
		an.l[i] = uint32(i)
		an.w[i] = uint32(i)
		an.k[i] = uint32(i)
	}

	for i := capacity - 1; i >= workingSet; i-- {
		an.a[i] = uint32(i)
		an.removed = append(an.removed, uint32(i))
	}

	return an, nil
}

// GetBucket returns the bucket that (key, seed) maps to among the current
// working set.
func (an *Anchor) GetBucket(key, seed uint64) int {
	bs := mixer.Mix(key, seed)
	b := bs % uint32(an.m)

	for an.a[b] != 0 {
		bs = mixer.Mix(key-uint64(bs), seed+uint64(bs))
		h := bs % an.a[b]

		if an.a[h] == 0 || an.a[h] < an.a[b] {
			b = h
		} else {
			b = an.translate(b, h)
		}
	}

	return int(b)
}

// translate resolves which live bucket a removed bucket i currently maps
// to, relative to a candidate j, by walking the diagonal.
func (an *Anchor) translate(i, j uint32) uint32 {
	if i == j {
		return an.k[i]
	}

	b := j
	for an.a[i] <= an.a[b] {
		b = an.k[b]
	}
	return b
}

// RemoveBucket removes bucket b from the working set, in O(1) amortized
// time, and returns 0.
func (an *Anchor) RemoveBucket(b int) int {
	an.removed = append(an.removed, uint32(b))
	an.n--

	an.w[an.l[b]] = an.w[an.n]
	an.l[an.w[an.n]] = an.l[b]

	an.k[b] = an.w[an.n]
	an.a[b] = uint32(an.n)

	return 0
}

// AddBucket restores the most recently removed bucket and returns it.
func (an *Anchor) AddBucket() (int, error) {
	if len(an.removed) == 0 {
		return 0, errs.Precondition("anchor.AddBucket", "no removed bucket to restore")
	}

	b := an.removed[len(an.removed)-1]
	an.removed = an.removed[:len(an.removed)-1]

	an.l[an.w[an.n]] = uint32(an.n)
	an.w[an.l[b]] = b

	an.n++

	an.a[b] = 0
	an.k[b] = b

	return int(b), nil
}

// Size returns the current working set size.
func (an *Anchor) Size() int { return an.n }

// Capacity returns the fixed anchor capacity.
func (an *Anchor) Capacity() int { return an.m }
