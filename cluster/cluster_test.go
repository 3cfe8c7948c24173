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

package cluster

import (
	"testing"

	"github.com/msaia/gochash"
)

func newMementoEngine(t *testing.T) gochash.Engine {
	t.Helper()
	e, err := gochash.New(gochash.KindMemento, 0, 0)
	if err != nil {
		t.Fatalf("gochash.New: %v", err)
	}
	return e
}

func TestLookupEmptyCluster(t *testing.T) {
	c := New[string](newMementoEngine(t))
	if _, ok := c.Lookup("anything"); ok {
		t.Fatal("Lookup on empty cluster should return ok=false")
	}
}

func TestAddLookupRemove(t *testing.T) {
	c := New[string](newMementoEngine(t))

	for _, n := range []string{"a", "b", "c"} {
		if err := c.AddNode(n); err != nil {
			t.Fatalf("AddNode(%q): %v", n, err)
		}
	}
	if c.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", c.Size())
	}

	node, ok := c.Lookup("some-key")
	if !ok {
		t.Fatal("Lookup should find a node once the cluster has members")
	}

	if err := c.RemoveNode(node); err != nil {
		t.Fatalf("RemoveNode(%q): %v", node, err)
	}
	if c.Size() != 2 {
		t.Fatalf("Size() = %d after removal, want 2", c.Size())
	}
}

func TestAddNodeIsIdempotent(t *testing.T) {
	c := New[string](newMementoEngine(t))
	if err := c.AddNode("a"); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := c.AddNode("a"); err != nil {
		t.Fatalf("second AddNode should be a no-op, got error: %v", err)
	}
	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", c.Size())
	}
}

func TestStableLookupAcrossMembershipChange(t *testing.T) {
	c := New[string](newMementoEngine(t))
	for _, n := range []string{"a", "b", "c", "d"} {
		_ = c.AddNode(n)
	}

	assignments := make(map[string]string)
	for i := 0; i < 200; i++ {
		key := string(rune('A' + i%26))
		if n, ok := c.Lookup(key); ok {
			assignments[key] = n
		}
	}

	if err := c.AddNode("e"); err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	moved := 0
	for key, want := range assignments {
		if got, ok := c.Lookup(key); !ok || got != want {
			moved++
		}
	}
	if moved == len(assignments) {
		t.Fatal("every key moved after a single node addition; expected limited churn")
	}
}
