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
	"sync"
	"sync/atomic"
)

type lockFreeEntry struct {
	bucket      int
	replacer    int
	prevRemoved int
	next        *lockFreeEntry
}

// LockFree is a copy-on-write replacement table: every write clones the
// whole bucket array before swapping it in via atomic.Value, so readers
// never block behind a writer, at the cost of an O(n) copy per write.
//
// Author: Massimo Coluzzi
type LockFree struct {
	table atomic.Value // []*lockFreeEntry

	size int64

	minTableSize int
	maxTableSize int

	// mu serializes writers only; readers go through table (lock-free).
	mu sync.Mutex
}

// NewLockFree creates an empty LockFree replacement table.
func NewLockFree() *LockFree {
	m := &LockFree{
		minTableSize: 1 << 4,
		maxTableSize: 1 << 30,
	}
	m.table.Store(make([]*lockFreeEntry, m.minTableSize))
	return m
}

// Remember records that bucket has been removed and replaced by replacer,
// chaining it after prevRemoved, and returns bucket.
func (m *LockFree) Remember(bucket, replacer, prevRemoved int) int {
	entry := &lockFreeEntry{bucket: bucket, replacer: replacer, prevRemoved: prevRemoved}

	m.mu.Lock()
	oldTable := m.getTable()

	newTable := make([]*lockFreeEntry, len(oldTable))
	for i := 0; i < len(oldTable); i++ {
		var prev *lockFreeEntry
		for e := oldTable[i]; e != nil; e = e.next {
			clone := &lockFreeEntry{bucket: e.bucket, replacer: e.replacer, prevRemoved: e.prevRemoved}
			if prev == nil {
				newTable[i] = clone
			} else {
				prev.next = clone
			}
			prev = clone
		}
	}

	m.add(entry, newTable)
	newSize := atomic.AddInt64(&m.size, 1)

	m.table.Store(newTable)
	tableLen := len(newTable)
	m.mu.Unlock()

	if int(newSize) > m.capacityForSize(tableLen) {
		m.resizeTable(tableLen << 1)
	}

	return bucket
}

// Replacer returns the replacer recorded for bucket, or -1 if not removed.
func (m *LockFree) Replacer(bucket int) int {
	table := m.getTable()
	if e := m.get(bucket, table); e != nil {
		return e.replacer
	}
	return -1
}

// Restore removes bucket and returns the bucket removed immediately
// before it.
func (m *LockFree) Restore(bucket int) int {
	if m.IsEmpty() {
		return bucket + 1
	}

	m.mu.Lock()
	oldTable := m.getTable()

	target := m.get(bucket, oldTable)
	if target == nil {
		m.mu.Unlock()
		return bucket + 1
	}
	prevRemoved := target.prevRemoved

	newTable := make([]*lockFreeEntry, len(oldTable))
	for i := 0; i < len(oldTable); i++ {
		var prev *lockFreeEntry
		for e := oldTable[i]; e != nil; e = e.next {
			if e == target {
				continue
			}
			clone := &lockFreeEntry{bucket: e.bucket, replacer: e.replacer, prevRemoved: e.prevRemoved}
			if prev == nil {
				newTable[i] = clone
			} else {
				prev.next = clone
			}
			prev = clone
		}
	}

	newSize := atomic.AddInt64(&m.size, -1)
	tableLen := len(newTable)

	m.table.Store(newTable)
	m.mu.Unlock()

	if int(newSize) <= m.capacityForSize(tableLen)>>2 {
		m.resizeTable(tableLen >> 1)
	}

	return prevRemoved
}

// IsEmpty reports whether the replacement set is empty.
func (m *LockFree) IsEmpty() bool {
	return atomic.LoadInt64(&m.size) <= 0
}

// Size returns the number of removed buckets currently tracked.
func (m *LockFree) Size() int {
	return int(atomic.LoadInt64(&m.size))
}

// Capacity returns the 3/4-load-factor declared capacity of the current
// table snapshot.
func (m *LockFree) Capacity() int {
	return m.capacityForSize(len(m.getTable()))
}

func (m *LockFree) capacityForSize(tableSize int) int {
	return (tableSize >> 2) * 3
}

func (m *LockFree) getTable() []*lockFreeEntry {
	t := m.table.Load()
	if t == nil {
		return make([]*lockFreeEntry, m.minTableSize)
	}
	return t.([]*lockFreeEntry)
}

func (m *LockFree) add(entry *lockFreeEntry, table []*lockFreeEntry) {
	bucket := entry.bucket
	hash := bucket ^ (bucket >> 16)
	index := (len(table) - 1) & hash

	entry.next = table[index]
	table[index] = entry
}

func (m *LockFree) get(bucket int, table []*lockFreeEntry) *lockFreeEntry {
	hash := bucket ^ (bucket >> 16)
	index := (len(table) - 1) & hash

	for e := table[index]; e != nil; e = e.next {
		if e.bucket == bucket {
			return e
		}
	}
	return nil
}

func (m *LockFree) resizeTable(newTableSize int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldTable := m.getTable()
	oldTableSize := len(oldTable)

	if newTableSize < oldTableSize && oldTableSize <= m.minTableSize {
		return
	}
	if newTableSize > oldTableSize && oldTableSize >= m.maxTableSize {
		return
	}

	newTable := make([]*lockFreeEntry, newTableSize)
	for i := 0; i < oldTableSize; i++ {
		for e := oldTable[i]; e != nil; e = e.next {
			clone := &lockFreeEntry{bucket: e.bucket, replacer: e.replacer, prevRemoved: e.prevRemoved}
			m.add(clone, newTable)
		}
	}

	m.table.Store(newTable)
}

// String returns a string representation of the LockFree table.
func (m *LockFree) String() string {
	table := m.getTable()
	return fmt.Sprintf("LockFree{size=%d, capacity=%d, table_size=%d}",
		atomic.LoadInt64(&m.size), m.capacityForSize(len(table)), len(table))
}
