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

package registry

// Weighted is a many-to-one mapping between buckets and a node, where the
// number of buckets a node owns is determined by its weight.
//
// Not thread-safe; callers needing concurrent access must hold an
// external lock, as cluster.WeightedCluster does.
type Weighted[N comparable] struct {
	bucketOwner   map[int]N
	nodeBuckets   map[N][]int
	nodeBucketPos map[int]int
	weight        map[N]int
}

// NewWeighted creates an empty Weighted registry.
func NewWeighted[N comparable]() *Weighted[N] {
	return &Weighted[N]{
		bucketOwner:   make(map[int]N),
		nodeBuckets:   make(map[N][]int),
		nodeBucketPos: make(map[int]int),
		weight:        make(map[N]int),
	}
}

// AttachBucket assigns bucket to node.
func (w *Weighted[N]) AttachBucket(bucket int, node N) {
	w.bucketOwner[bucket] = node
	w.nodeBucketPos[bucket] = len(w.nodeBuckets[node])
	w.nodeBuckets[node] = append(w.nodeBuckets[node], bucket)
}

// DetachBucket removes bucket's assignment in O(1) via swap-and-pop.
func (w *Weighted[N]) DetachBucket(bucket int) {
	node := w.bucketOwner[bucket]
	idx := w.nodeBucketPos[bucket]

	buckets := w.nodeBuckets[node]
	last := buckets[len(buckets)-1]
	buckets[idx] = last
	w.nodeBucketPos[last] = idx

	w.nodeBuckets[node] = buckets[:len(buckets)-1]

	delete(w.bucketOwner, bucket)
	delete(w.nodeBucketPos, bucket)
}

// GetNode returns the node that owns bucket.
func (w *Weighted[N]) GetNode(bucket int) (N, bool) {
	node, ok := w.bucketOwner[bucket]
	return node, ok
}

// BucketsForNode returns a copy of the buckets owned by node.
func (w *Weighted[N]) BucketsForNode(node N) []int {
	return append([]int{}, w.nodeBuckets[node]...)
}

// GetWeight returns node's configured weight.
func (w *Weighted[N]) GetWeight(node N) (int, bool) {
	weight, ok := w.weight[node]
	return weight, ok
}

// HasNode reports whether node is registered.
func (w *Weighted[N]) HasNode(node N) bool {
	_, exists := w.weight[node]
	return exists
}

// InitNode registers node with the given weight and an empty bucket list.
func (w *Weighted[N]) InitNode(node N, weight int) {
	w.weight[node] = weight
	w.nodeBuckets[node] = make([]int, 0, weight)
}

// RemoveNode removes node and every bucket mapping it owned. Buckets must
// already have been released from the underlying Engine by the caller.
func (w *Weighted[N]) RemoveNode(node N) {
	for _, bucket := range w.nodeBuckets[node] {
		delete(w.bucketOwner, bucket)
		delete(w.nodeBucketPos, bucket)
	}
	delete(w.nodeBuckets, node)
	delete(w.weight, node)
}

// UpdateWeight changes node's stored weight.
func (w *Weighted[N]) UpdateWeight(node N, newWeight int) {
	w.weight[node] = newWeight
}
