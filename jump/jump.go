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

// Package jump implements JumpHash, the append/pop-only consistent hash
// algorithm by Lamping and Veach.
package jump

import "github.com/msaia/gochash/mixer"

// Jump maps keys onto a contiguous range of buckets [0,n). It only
// supports removing the highest-indexed bucket; arbitrary removal needs
// to be layered on top (see the memento package).
//
// Author: Massimo Coluzzi
type Jump struct {
	numBuckets int
}

// New creates a Jump engine with the given initial working set size.
func New(workingSet int) *Jump {
	return &Jump{numBuckets: workingSet}
}

// GetBucket returns the bucket key maps to under seed, using the same
// jump-ahead recurrence as the reference algorithm.
func (j *Jump) GetBucket(key, seed uint64) int {
	hash := uint64(mixer.Mix(key, seed))

	var b int64 = -1
	var jPos int64
	for jPos < int64(j.numBuckets) {
		b = jPos
		hash = hash*2862933555777941757 + 1
		jPos = int64(float64(b+1) * (float64(int64(1)<<31) / float64((hash>>33)+1)))
	}
	return int(b)
}

// AddBucket grows the working set by one bucket and returns its index.
func (j *Jump) AddBucket() int {
	b := j.numBuckets
	j.numBuckets++
	return b
}

// RemoveBucket shrinks the working set by one, always removing the
// highest-indexed bucket, and returns the index that was removed.
func (j *Jump) RemoveBucket() int {
	j.numBuckets--
	return j.numBuckets
}

// Size returns the current working set size.
func (j *Jump) Size() int { return j.numBuckets }
