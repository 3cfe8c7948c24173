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
	"strconv"
	"sync"

	"github.com/serialx/hashring"

	"github.com/msaia/gochash/internal/errs"
)

// Ring adapts github.com/serialx/hashring's consistent hash ring to the
// Engine interface. Buckets are identified by the integer index Engine
// expects; Ring keeps its own bijection between that index and the
// string node names hashring operates on.
type Ring struct {
	mu           sync.Mutex
	ring         *hashring.HashRing
	bucketToName map[int]string
	nameToBucket map[string]int
	next         int
}

// NewRing creates an empty Ring.
func NewRing() *Ring {
	return &Ring{
		ring:         hashring.New(nil),
		bucketToName: make(map[int]string),
		nameToBucket: make(map[string]int),
	}
}

// GetBucket returns the bucket that (key, seed) maps to on the ring.
func (r *Ring) GetBucket(key, seed uint64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.bucketToName) == 0 {
		return -1
	}

	name, ok := r.ring.GetNode(strconv.FormatUint(key^seed, 36))
	if !ok {
		return -1
	}
	return r.nameToBucket[name]
}

// AddBucket adds a bucket to the ring and returns its index.
func (r *Ring) AddBucket() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.next
	r.next++
	name := fmt.Sprintf("bucket-%d", b)

	r.ring = r.ring.AddNode(name)
	r.bucketToName[b] = name
	r.nameToBucket[name] = b
	return b, nil
}

// RemoveBucket removes bucket b from the ring.
func (r *Ring) RemoveBucket(b int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.bucketToName[b]
	if !ok {
		return 0, errs.Precondition("wrappers.Ring.RemoveBucket", fmt.Sprintf("bucket %d is not on the ring", b))
	}

	r.ring = r.ring.RemoveNode(name)
	delete(r.bucketToName, b)
	delete(r.nameToBucket, name)
	return b, nil
}

// Size returns the number of buckets currently on the ring.
func (r *Ring) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bucketToName)
}
