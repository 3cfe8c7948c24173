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

// Package cluster composes an Engine with a Registry to map string keys
// directly to application node identifiers, hiding bucket indices from
// callers.
package cluster

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/msaia/gochash"
	"github.com/msaia/gochash/registry"
)

// Cluster maps string keys onto application-defined node identifiers,
// using an Engine for bucket assignment and a Registry to translate
// buckets to nodes.
//
// Unlike the engines it wraps, Cluster serializes its own operations
// with an internal sync.RWMutex rather than requiring callers to hold an
// external lock.
type Cluster[N comparable] struct {
	mu       sync.RWMutex
	engine   gochash.Engine
	registry *registry.Registry[N]
}

// New creates an empty Cluster over engine.
func New[N comparable](engine gochash.Engine) *Cluster[N] {
	return &Cluster[N]{
		engine:   engine,
		registry: registry.New[N](),
	}
}

// Lookup returns the node that key currently maps to.
func (c *Cluster[N]) Lookup(key string) (N, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero N
	if c.registry.Size() == 0 {
		return zero, false
	}

	bucket := c.engine.GetBucket(hashKey(key), 0)
	node, err := c.registry.GetNode(bucket)
	if err != nil {
		return zero, false
	}
	return node, true
}

// AddNode adds node to the cluster. If node is already present, AddNode
// is a no-op.
func (c *Cluster[N]) AddNode(node N) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registry.HasNode(node) {
		return nil
	}

	bucket, err := c.engine.AddBucket()
	if err != nil {
		return fmt.Errorf("cluster: failed to add node %v: %w", node, err)
	}

	if err := c.registry.Put(node, bucket); err != nil {
		// Roll back the bucket addition so engine and registry stay in sync.
		_, _ = c.engine.RemoveBucket(bucket)
		return fmt.Errorf("cluster: failed to add node %v: %w", node, err)
	}

	return nil
}

// RemoveNode removes node from the cluster.
func (c *Cluster[N]) RemoveNode(node N) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, err := c.registry.GetBucket(node)
	if err != nil {
		return err
	}

	if _, err := c.registry.RemoveNode(node); err != nil {
		return fmt.Errorf("cluster: failed to remove node %v from registry: %w", node, err)
	}

	if _, err := c.engine.RemoveBucket(bucket); err != nil {
		return fmt.Errorf("cluster: failed to remove bucket %d: %w", bucket, err)
	}

	return nil
}

// Nodes returns every node currently in the cluster.
func (c *Cluster[N]) Nodes() []N {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry.Nodes()
}

// Size returns the number of nodes currently in the cluster.
func (c *Cluster[N]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry.Size()
}

// hashKey turns an application key into the uint64 an Engine expects.
func hashKey(key string) uint64 {
	h := xxhash.New()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}
