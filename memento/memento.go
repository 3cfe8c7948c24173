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

// Package memento implements the Memento replacement table and the
// BinomialEngine and MementoEngine algorithms built on top of it.
package memento

import (
	"fmt"
	"sync"

	"github.com/msaia/gochash/mashtable"
)

// Interface is implemented by both Memento variants (RWMutex-guarded and
// lock-free) so MementoEngine can be built on either.
type Interface interface {
	Remember(bucket, replacer, prevRemoved int) int
	Replacer(bucket int) int
	Restore(bucket int) int
	IsEmpty() bool
	Size() int
	String() string
}

type replacement struct {
	replacer    int
	prevRemoved int
}

// Memento is the RWMutex-guarded replacement table: a removed-bucket to
// (replacer, prev-removed) map, backed by a MashTable.
//
// Author: Massimo Coluzzi
type Memento struct {
	mu    sync.RWMutex
	table *mashtable.MashTable[replacement]
}

// New creates an empty Memento.
func New() *Memento {
	return &Memento{table: mashtable.New[replacement]()}
}

// Remember records that bucket has been removed and replaced by replacer,
// chaining it after prevRemoved. Returns bucket (the new last-removed
// value).
func (m *Memento) Remember(bucket, replacer, prevRemoved int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table.Emplace(bucket, replacement{replacer: replacer, prevRemoved: prevRemoved})
	return bucket
}

// Replacer returns the replacer recorded for bucket, or -1 if bucket was
// never removed (or has since been restored).
func (m *Memento) Replacer(bucket int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.table.Find(bucket); ok {
		return r.replacer
	}
	return -1
}

// Restore removes bucket from the table and returns the bucket that was
// removed immediately before it (or bucket+1 if the table is empty or
// does not contain bucket).
func (m *Memento) Restore(bucket int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.table.Find(bucket)
	if !ok {
		return bucket + 1
	}
	m.table.Erase(bucket)
	return r.prevRemoved
}

// IsEmpty reports whether the replacement set is empty.
func (m *Memento) IsEmpty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.Empty()
}

// Size returns the number of removed buckets currently tracked.
func (m *Memento) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.Size()
}

// String returns a string representation of the Memento.
func (m *Memento) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("Memento{size=%d}", m.table.Size())
}
