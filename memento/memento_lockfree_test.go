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
	"sync"
	"testing"
)

func TestLockFreeRememberReplacer(t *testing.T) {
	m := NewLockFree()
	m.Remember(5, 3, -1)
	if r := m.Replacer(5); r != 3 {
		t.Fatalf("Replacer(5) = %d, want 3", r)
	}
	if r := m.Replacer(6); r != -1 {
		t.Fatalf("Replacer(6) = %d, want -1", r)
	}
}

func TestLockFreeRestoreChain(t *testing.T) {
	m := NewLockFree()
	last := -1
	last = m.Remember(5, 3, last)
	last = m.Remember(4, 3, last)

	if prev := m.Restore(4); prev != 5 {
		t.Fatalf("Restore(4) = %d, want 5", prev)
	}
	if prev := m.Restore(5); prev != -1 {
		t.Fatalf("Restore(5) = %d, want -1", prev)
	}
	if !m.IsEmpty() {
		t.Fatal("expected empty table after restoring everything")
	}
	_ = last
}

func TestLockFreeConcurrentReadsDuringWrite(t *testing.T) {
	m := NewLockFree()
	for i := 0; i < 1000; i++ {
		m.Remember(i, 0, i-1)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					m.Replacer(500)
				}
			}
		}()
	}

	for i := 1000; i < 2000; i++ {
		m.Remember(i, 0, i-1)
	}
	close(stop)
	wg.Wait()

	if m.Size() != 2000 {
		t.Fatalf("Size() = %d, want 2000", m.Size())
	}
}

func TestLockFreeGrowShrink(t *testing.T) {
	m := NewLockFree()
	const n = 5000
	last := -1
	for i := 0; i < n; i++ {
		last = m.Remember(i, 0, last)
	}
	if m.Size() != n {
		t.Fatalf("Size() = %d, want %d", m.Size(), n)
	}
	if m.Capacity() <= (1<<4>>2)*3 {
		t.Fatalf("Capacity() = %d, table did not grow", m.Capacity())
	}
	for i := 0; i < n; i++ {
		m.Restore(i)
	}
	if !m.IsEmpty() {
		t.Fatal("table should be empty after restoring all entries")
	}
}
