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

import "testing"

func TestRingEmpty(t *testing.T) {
	r := NewRing()
	if got := r.GetBucket(42, 0); got != -1 {
		t.Fatalf("GetBucket on empty ring = %d, want -1", got)
	}
}

func TestRingAddRemove(t *testing.T) {
	r := NewRing()
	for i := 0; i < 4; i++ {
		if _, err := r.AddBucket(); err != nil {
			t.Fatalf("AddBucket: %v", err)
		}
	}
	if r.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", r.Size())
	}

	b := r.GetBucket(12345, 0)
	if b < 0 {
		t.Fatal("GetBucket should resolve to a bucket once the ring is populated")
	}

	if _, err := r.RemoveBucket(b); err != nil {
		t.Fatalf("RemoveBucket: %v", err)
	}
	if r.Size() != 3 {
		t.Fatalf("Size() = %d after removal, want 3", r.Size())
	}
}

func TestRingRemoveUnknownBucket(t *testing.T) {
	r := NewRing()
	if _, err := r.RemoveBucket(99); err == nil {
		t.Fatal("expected an error removing a bucket that was never added")
	}
}

func TestRingGetBucketDeterministic(t *testing.T) {
	r := NewRing()
	for i := 0; i < 8; i++ {
		_, _ = r.AddBucket()
	}
	first := r.GetBucket(777, 1)
	second := r.GetBucket(777, 1)
	if first != second {
		t.Fatalf("GetBucket not deterministic: %d != %d", first, second)
	}
}
