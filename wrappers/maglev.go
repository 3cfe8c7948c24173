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

// maglevTableSize is the lookup table size: prime, and comfortably larger
// than any realistic working set so that permutations stay close to
// uniform.
const maglevTableSize = 65537

// Maglev is a minimal lookup-table engine in the style of Google's Maglev
// hashing: each bucket gets a permutation over the lookup table derived
// from two independent offsets, and the table is filled by round-robin
// preference. Membership changes rebuild the table from scratch.
type Maglev struct {
	mu      sync.Mutex
	buckets []int
	lookup  []int
	next    int
}

// NewMaglev creates an empty Maglev engine.
func NewMaglev() *Maglev {
	return &Maglev{}
}

// GetBucket returns the bucket that (key, seed) maps to in the lookup
// table.
func (m *Maglev) GetBucket(key, seed uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.lookup) == 0 {
		return -1
	}
	idx := uint64(mixer.Mix(key, seed)) % uint64(len(m.lookup))
	return m.lookup[idx]
}

// AddBucket adds a bucket and rebuilds the lookup table.
func (m *Maglev) AddBucket() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.next
	m.next++
	m.buckets = append(m.buckets, b)
	m.rebuild()
	return b, nil
}

// RemoveBucket removes bucket b and rebuilds the lookup table.
func (m *Maglev) RemoveBucket(b int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, id := range m.buckets {
		if id == b {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, errs.Precondition("wrappers.Maglev.RemoveBucket", fmt.Sprintf("bucket %d not present", b))
	}

	m.buckets = append(m.buckets[:idx], m.buckets[idx+1:]...)
	m.rebuild()
	return b, nil
}

// Size returns the number of buckets currently assigned.
func (m *Maglev) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

// rebuild recomputes the full lookup table from the current bucket set.
// Called with mu held.
func (m *Maglev) rebuild() {
	table := make([]int, maglevTableSize)
	for i := range table {
		table[i] = -1
	}

	n := len(m.buckets)
	if n == 0 {
		m.lookup = table
		return
	}

	offset := make([]uint64, n)
	skip := make([]uint64, n)
	next := make([]uint64, n)
	for i, b := range m.buckets {
		offset[i] = uint64(mixer.Mix(uint64(b), 0)) % maglevTableSize
		skip[i] = uint64(mixer.Mix(uint64(b), 1))%(maglevTableSize-1) + 1
	}

	filled := 0
	for filled < maglevTableSize {
		for i := 0; i < n && filled < maglevTableSize; i++ {
			c := (offset[i] + next[i]*skip[i]) % maglevTableSize
			for table[c] != -1 {
				next[i]++
				c = (offset[i] + next[i]*skip[i]) % maglevTableSize
			}
			table[c] = m.buckets[i]
			next[i]++
			filled++
		}
	}
	m.lookup = table
}
