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

import "testing"

// TestS1JumpTailAddRemove exercises scenario S1: tail add/remove must
// restore the original bucket assignment for a fixed key.
func TestS1JumpTailAddRemove(t *testing.T) {
	e, err := New(KindJump, 0, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	x := e.GetBucket(100, 0)

	if _, err := e.RemoveBucket(9); err != nil {
		t.Fatalf("RemoveBucket: %v", err)
	}
	if e.Size() != 9 {
		t.Fatalf("Size() = %d, want 9", e.Size())
	}

	restored, err := e.AddBucket()
	if err != nil {
		t.Fatalf("AddBucket: %v", err)
	}
	if restored != 9 {
		t.Fatalf("AddBucket() = %d, want 9", restored)
	}

	if got := e.GetBucket(100, 0); got != x {
		t.Fatalf("GetBucket(100,0) = %d after add/remove, want %d", got, x)
	}
}

// TestS2AnchorRandomRemoval exercises scenario S2: AnchorHash supports
// removing and restoring a bucket that is not the tail.
func TestS2AnchorRandomRemoval(t *testing.T) {
	e, err := New(KindAnchor, 16, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	before := make(map[uint64]int)
	for k := uint64(0); k < 1000; k++ {
		before[k] = e.GetBucket(k, 0)
	}

	if _, err := e.RemoveBucket(3); err != nil {
		t.Fatalf("RemoveBucket: %v", err)
	}
	for k := uint64(0); k < 1000; k++ {
		if b := e.GetBucket(k, 0); b == 3 {
			t.Fatalf("key %d still maps to removed bucket 3", k)
		}
	}

	restored, err := e.AddBucket()
	if err != nil {
		t.Fatalf("AddBucket: %v", err)
	}
	if restored != 3 {
		t.Fatalf("AddBucket() = %d, want 3", restored)
	}

	for k, want := range before {
		if got := e.GetBucket(k, 0); want != 3 && got != want {
			t.Fatalf("key %d: got bucket %d, want %d after restore", k, got, want)
		}
	}
}

// TestS4PowerBoundary exercises scenario S4: with one bucket every key
// maps to 0; adding a second splits keys roughly in half.
func TestS4PowerBoundary(t *testing.T) {
	e, err := New(KindPower, 0, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for k := uint64(0); k < 1000; k++ {
		if b := e.GetBucket(k, 0); b != 0 {
			t.Fatalf("GetBucket(%d,0) = %d with one bucket, want 0", k, b)
		}
	}

	added, err := e.AddBucket()
	if err != nil {
		t.Fatalf("AddBucket: %v", err)
	}
	if added != 1 {
		t.Fatalf("AddBucket() = %d, want 1", added)
	}

	toNew := 0
	const n = 20000
	for k := uint64(0); k < n; k++ {
		if e.GetBucket(k, 0) == 1 {
			toNew++
		}
	}
	if toNew < n/4 || toNew > n*3/4 {
		t.Fatalf("%d/%d keys moved to the new bucket, want roughly half", toNew, n)
	}
}

func TestMementoOneArbitraryRemoval(t *testing.T) {
	e, err := New(KindMementoOne, 0, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := e.RemoveBucket(5); err != nil {
		t.Fatalf("RemoveBucket: %v", err)
	}
	if e.Size() != 7 {
		t.Fatalf("Size() = %d, want 7", e.Size())
	}
	for k := uint64(0); k < 5000; k++ {
		if b := e.GetBucket(k, 0); b == 5 {
			t.Fatal("removed bucket 5 should no longer be returned")
		}
	}

	restored, err := e.AddBucket()
	if err != nil {
		t.Fatalf("AddBucket: %v", err)
	}
	if restored != 5 {
		t.Fatalf("AddBucket() = %d, want 5", restored)
	}
}

// TestAnchorRemoveBucketReturnsRequestedBucket verifies that, unlike the
// tail-only engines, Anchor's adapter echoes back the bucket it was
// asked to remove rather than a tail index.
func TestAnchorRemoveBucketReturnsRequestedBucket(t *testing.T) {
	e, err := New(KindAnchor, 16, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	removed, err := e.RemoveBucket(4)
	if err != nil {
		t.Fatalf("RemoveBucket: %v", err)
	}
	if removed != 4 {
		t.Fatalf("RemoveBucket(4) returned %d, want 4", removed)
	}
}

func TestKindString(t *testing.T) {
	if KindAnchor.String() != "anchor" {
		t.Fatalf("KindAnchor.String() = %q", KindAnchor.String())
	}
}

func TestNewUnknownKind(t *testing.T) {
	if _, err := New(Kind(99), 0, 1); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
