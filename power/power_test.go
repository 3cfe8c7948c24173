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

package power

import "testing"

func TestGetBucketInRange(t *testing.T) {
	p := New(13)
	for k := uint64(0); k < 20000; k++ {
		b := p.GetBucket(k, 1)
		if b < 0 || b >= 13 {
			t.Fatalf("GetBucket(%d) = %d, out of range [0,13)", k, b)
		}
	}
}

func TestGetBucketDeterministic(t *testing.T) {
	p := New(13)
	b1 := p.GetBucket(999, 2)
	b2 := p.GetBucket(999, 2)
	if b1 != b2 {
		t.Fatalf("GetBucket not deterministic: %d != %d", b1, b2)
	}
}

func TestTailAddRemove(t *testing.T) {
	p := New(4)
	if idx := p.AddBucket(); idx != 4 {
		t.Fatalf("AddBucket() = %d, want 4", idx)
	}
	if p.Size() != 5 {
		t.Fatalf("Size() = %d, want 5", p.Size())
	}
	if newSize := p.RemoveBucket(); newSize != 4 {
		t.Fatalf("RemoveBucket() = %d, want 4", newSize)
	}
}

func TestSmallestPow2(t *testing.T) {
	cases := map[uint32]uint32{0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 17: 32, 1024: 1024}
	for in, want := range cases {
		if got := smallestPow2(in); got != want {
			t.Errorf("smallestPow2(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestBalance(t *testing.T) {
	const size = 16
	const keys = 200000
	p := New(size)
	counts := make([]int, size)
	for k := uint64(0); k < keys; k++ {
		counts[p.GetBucket(k, 5)]++
	}
	expected := keys / size
	for i, c := range counts {
		if c < expected/2 || c > expected*3/2 {
			t.Fatalf("bucket %d got %d keys, expected around %d", i, c, expected)
		}
	}
}
