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

func TestDxGetBucketInRange(t *testing.T) {
	d := NewDx(4)
	for i := 0; i < 1000; i++ {
		b := d.GetBucket(uint64(i), 0)
		if b < 0 || b >= 4 {
			t.Fatalf("GetBucket(%d) = %d, want [0,4)", i, b)
		}
	}
}

func TestDxAddGrowsTable(t *testing.T) {
	d := NewDx(4)
	if d.size != 4 {
		t.Fatalf("initial size = %d, want 4", d.size)
	}
	b, err := d.AddBucket()
	if err != nil {
		t.Fatalf("AddBucket: %v", err)
	}
	if d.size != 8 {
		t.Fatalf("size after growing past capacity = %d, want 8", d.size)
	}
	if b != 4 {
		t.Fatalf("AddBucket returned %d, want 4", b)
	}
	if d.Size() != 5 {
		t.Fatalf("Size() = %d, want 5", d.Size())
	}
}

func TestDxRemoveThenGetBucketSkipsInactive(t *testing.T) {
	d := NewDx(4)
	if _, err := d.RemoveBucket(0); err != nil {
		t.Fatalf("RemoveBucket: %v", err)
	}
	for i := 0; i < 200; i++ {
		b := d.GetBucket(uint64(i), 0)
		if b == 0 {
			t.Fatal("GetBucket returned a removed bucket")
		}
	}
}

func TestDxRemoveUnknownBucket(t *testing.T) {
	d := NewDx(4)
	if _, err := d.RemoveBucket(0); err != nil {
		t.Fatalf("RemoveBucket: %v", err)
	}
	if _, err := d.RemoveBucket(0); err == nil {
		t.Fatal("expected error removing an already-inactive bucket")
	}
	if _, err := d.RemoveBucket(99); err == nil {
		t.Fatal("expected error removing an out-of-range bucket")
	}
}
