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
	"fmt"
	"sort"
	"sync"

	"github.com/msaia/gochash"
	"github.com/msaia/gochash/registry"
)

// WeightedCluster is the weighted counterpart of Cluster: each node owns
// a number of buckets proportional to its weight, assigned round-robin
// for interleaved distribution.
type WeightedCluster[N comparable] struct {
	mu       sync.RWMutex
	engine   gochash.Engine
	registry *registry.Weighted[N]
}

// NewWeighted creates an empty WeightedCluster over engine.
func NewWeighted[N comparable](engine gochash.Engine) *WeightedCluster[N] {
	return &WeightedCluster[N]{
		engine:   engine,
		registry: registry.NewWeighted[N](),
	}
}

// InitCluster bulk-initializes the cluster from a node-to-weight map,
// replacing any existing state, with interleaved (weighted round-robin)
// bucket assignment for balance.
func (w *WeightedCluster[N]) InitCluster(weights map[N]int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	total := 0
	nodes := make([]N, 0, len(weights))
	for node, weight := range weights {
		total += weight
		nodes = append(nodes, node)
	}

	w.registry = registry.NewWeighted[N]()
	for i := 0; i < total; i++ {
		if _, err := w.engine.AddBucket(); err != nil {
			return err
		}
	}

	sort.Slice(nodes, func(i, j int) bool {
		return fmt.Sprint(nodes[i]) < fmt.Sprint(nodes[j])
	})

	for _, node := range nodes {
		w.registry.InitNode(node, weights[node])
	}

	remaining := make(map[N]int, len(weights))
	for node, weight := range weights {
		remaining[node] = weight
	}

	b := 0
	for b < total {
		for _, node := range nodes {
			if remaining[node] > 0 {
				w.registry.AttachBucket(b, node)
				remaining[node]--
				b++
			}
		}
	}

	return nil
}

// Lookup finds the node that owns key.
func (w *WeightedCluster[N]) Lookup(key string) (N, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var zero N
	if w.engine.Size() == 0 {
		return zero, false
	}

	bucket := w.engine.GetBucket(hashKey(key), 0)
	return w.registry.GetNode(bucket)
}

// AddNode adds node with the given weight, attaching weight fresh
// buckets to it.
func (w *WeightedCluster[N]) AddNode(node N, weight int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.registry.HasNode(node) {
		return nil
	}

	w.registry.InitNode(node, weight)
	for i := 0; i < weight; i++ {
		bucket, err := w.engine.AddBucket()
		if err != nil {
			return err
		}
		w.registry.AttachBucket(bucket, node)
	}
	return nil
}

// RemoveNode removes node and every bucket it owns.
func (w *WeightedCluster[N]) RemoveNode(node N) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.registry.HasNode(node) {
		return nil
	}

	for _, bucket := range w.registry.BucketsForNode(node) {
		if _, err := w.engine.RemoveBucket(bucket); err != nil {
			return err
		}
	}
	w.registry.RemoveNode(node)
	return nil
}

// UpdateWeight changes node's weight, growing or shrinking its bucket
// set by the difference.
func (w *WeightedCluster[N]) UpdateWeight(node N, newWeight int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if newWeight < 0 {
		newWeight = 0
	}

	oldWeight, exists := w.registry.GetWeight(node)
	if !exists {
		w.registry.InitNode(node, newWeight)
		for i := 0; i < newWeight; i++ {
			bucket, err := w.engine.AddBucket()
			if err != nil {
				return err
			}
			w.registry.AttachBucket(bucket, node)
		}
		return nil
	}

	w.registry.UpdateWeight(node, newWeight)
	delta := newWeight - oldWeight

	switch {
	case delta > 0:
		for i := 0; i < delta; i++ {
			bucket, err := w.engine.AddBucket()
			if err != nil {
				return err
			}
			w.registry.AttachBucket(bucket, node)
		}
	case delta < 0:
		numToRemove := -delta
		owned := w.registry.BucketsForNode(node)
		if numToRemove > len(owned) {
			numToRemove = len(owned)
		}
		toRemove := append([]int{}, owned[len(owned)-numToRemove:]...)
		for _, bucket := range toRemove {
			w.registry.DetachBucket(bucket)
			if _, err := w.engine.RemoveBucket(bucket); err != nil {
				return err
			}
		}
	}

	return nil
}
