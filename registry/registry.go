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

// Package registry maintains the bijective mapping between cluster node
// identifiers and the integer bucket ids an Engine operates on.
package registry

import (
	"fmt"
	"sync"
)

// Registry is a one-to-one mapping between a node id and a bucket. It
// guarantees that no two nodes share a bucket and no two buckets share a
// node.
//
// Thread-safe: backed by sync.Map for concurrent access without external
// locking.
type Registry[N comparable] struct {
	nodeToBucket sync.Map // map[N]int
	bucketToNode sync.Map // map[int]N
}

// New creates an empty Registry.
func New[N comparable]() *Registry[N] {
	return &Registry[N]{}
}

// Put adds a mapping between node and bucket. bucket must be
// non-negative and neither node nor bucket may already be mapped.
func (r *Registry[N]) Put(node N, bucket int) error {
	if bucket < 0 {
		return fmt.Errorf("registry: bucket must be non-negative, got %d", bucket)
	}

	if existing, exists := r.nodeToBucket.Load(node); exists {
		return fmt.Errorf("registry: node %v already mapped to bucket %d", node, existing)
	}
	if existing, exists := r.bucketToNode.Load(bucket); exists {
		return fmt.Errorf("registry: bucket %d already mapped to node %v", bucket, existing)
	}

	r.nodeToBucket.Store(node, bucket)
	r.bucketToNode.Store(bucket, node)
	return nil
}

// GetBucket returns the bucket mapped to node.
func (r *Registry[N]) GetBucket(node N) (int, error) {
	bucket, exists := r.nodeToBucket.Load(node)
	if !exists {
		return -1, fmt.Errorf("registry: node %v is not mapped to any bucket", node)
	}
	return bucket.(int), nil
}

// GetNode returns the node mapped to bucket.
func (r *Registry[N]) GetNode(bucket int) (N, error) {
	var zero N
	node, exists := r.bucketToNode.Load(bucket)
	if !exists {
		return zero, fmt.Errorf("registry: bucket %d is not mapped to any node", bucket)
	}
	return node.(N), nil
}

// HasBucket reports whether bucket is currently mapped.
func (r *Registry[N]) HasBucket(bucket int) bool {
	_, exists := r.bucketToNode.Load(bucket)
	return exists
}

// HasNode reports whether node is currently mapped.
func (r *Registry[N]) HasNode(node N) bool {
	_, exists := r.nodeToBucket.Load(node)
	return exists
}

// RemoveNode removes node's mapping and returns the bucket it held.
func (r *Registry[N]) RemoveNode(node N) (int, error) {
	bucket, err := r.GetBucket(node)
	if err != nil {
		return -1, err
	}
	r.nodeToBucket.Delete(node)
	r.bucketToNode.Delete(bucket)
	return bucket, nil
}

// RemoveBucket removes bucket's mapping and returns the node it held.
func (r *Registry[N]) RemoveBucket(bucket int) (N, error) {
	node, err := r.GetNode(bucket)
	if err != nil {
		var zero N
		return zero, err
	}
	r.nodeToBucket.Delete(node)
	r.bucketToNode.Delete(bucket)
	return node, nil
}

// Size returns the number of mappings currently held. Approximate under
// concurrent modification, same caveat as sync.Map.Range.
func (r *Registry[N]) Size() int {
	count := 0
	r.nodeToBucket.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// Buckets returns every bucket currently mapped.
func (r *Registry[N]) Buckets() []int {
	buckets := make([]int, 0)
	r.bucketToNode.Range(func(key, _ any) bool {
		buckets = append(buckets, key.(int))
		return true
	})
	return buckets
}

// Nodes returns every node currently mapped.
func (r *Registry[N]) Nodes() []N {
	nodes := make([]N, 0)
	r.nodeToBucket.Range(func(key, _ any) bool {
		nodes = append(nodes, key.(N))
		return true
	})
	return nodes
}
