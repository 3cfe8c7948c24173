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

package wrappers

import (
	"fmt"
	"sync"

	"github.com/msaia/gochash/internal/errs"
	"github.com/msaia/gochash/mixer"
)

// Dx is a thin engine reproducing the shape of a two-round jump-consistent
// rehash: a key jumps to a candidate slot in a power-of-two sized table,
// and a miss against the active set triggers a second-round rehash rather
// than linear probing.
type Dx struct {
	mu      sync.Mutex
	active  []bool
	size    int
	working int
}

// NewDx creates a Dx sized for initialWorkingSet active buckets.
func NewDx(initialWorkingSet int) *Dx {
	d := &Dx{size: 1}
	for d.size < initialWorkingSet {
		d.size <<= 1
	}
	d.active = make([]bool, d.size)
	for i := 0; i < initialWorkingSet; i++ {
		d.active[i] = true
	}
	d.working = initialWorkingSet
	return d
}

// GetBucket returns the active bucket that (key, seed) maps to, jumping
// to a second candidate on a miss.
func (d *Dx) GetBucket(key, seed uint64) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.working == 0 {
		return -1
	}

	h := mixer.Mix(key, seed)
	idx := int(uint64(h) % uint64(d.size))
	for attempts := 0; attempts < 4*d.size; attempts++ {
		if d.active[idx] {
			return idx
		}
		h = mixer.Mix(uint64(h), seed+1)
		idx = int(uint64(h) % uint64(d.size))
	}
	return -1
}

// AddBucket activates the first inactive slot, growing the table first if
// it is already full.
func (d *Dx) AddBucket() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.working == d.size {
		d.resize()
	}

	idx := d.firstInactive()
	if idx < 0 {
		return 0, errs.Allocation("wrappers.Dx.AddBucket", "no inactive slot available after resize")
	}
	d.active[idx] = true
	d.working++
	return idx, nil
}

// RemoveBucket deactivates bucket b.
func (d *Dx) RemoveBucket(b int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if b < 0 || b >= d.size || !d.active[b] {
		return 0, errs.Precondition("wrappers.Dx.RemoveBucket", fmt.Sprintf("bucket %d is not active", b))
	}
	d.active[b] = false
	d.working--
	return b, nil
}

// Size returns the number of active buckets.
func (d *Dx) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.working
}

// resize doubles the table, preserving existing slot assignments. Called
// with mu held.
func (d *Dx) resize() {
	newSize := d.size << 1
	grown := make([]bool, newSize)
	copy(grown, d.active)
	d.active = grown
	d.size = newSize
}

// firstInactive returns the lowest-indexed inactive slot, or -1 if none.
// Called with mu held.
func (d *Dx) firstInactive() int {
	for i, on := range d.active {
		if !on {
			return i
		}
	}
	return -1
}
