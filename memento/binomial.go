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

package memento

import (
	"math/bits"

	"github.com/msaia/gochash/mixer"
)

// Binomial implements the BinomialHash algorithm described in
// https://arxiv.org/pdf/2406.19836 : buckets are laid out as the leaves of
// an implicit binary tree, so that growing or shrinking the cluster by one
// bucket only ever relocates keys within a single tree level.
//
// Author: Massimo Saia
type Binomial struct {
	size int

	// enclosingTreeFilter masks values into [0,enclosingTreeCapacity-1],
	// where enclosingTreeCapacity is the capacity of the smallest binary
	// tree able to contain the cluster.
	enclosingTreeFilter int

	// minorTreeFilter masks values into [0,minorTreeCapacity-1], where
	// minorTreeCapacity is the capacity of the largest binary tree unable
	// to contain the cluster.
	minorTreeFilter int
}

// NewBinomial creates a Binomial engine for a cluster of the given size.
func NewBinomial(size int) *Binomial {
	be := &Binomial{size: size}

	top := highestOneBit(size)
	if size > top {
		top <<= 1
	}
	be.enclosingTreeFilter = top - 1
	be.minorTreeFilter = be.enclosingTreeFilter >> 1

	return be
}

// GetBucket returns the bucket key maps to under seed.
func (be *Binomial) GetBucket(key, seed uint64) int {
	if be.size < 2 {
		return 0
	}

	hash := uint64(mixer.Mix(key, seed))

	bucket := int(hash) & be.enclosingTreeFilter
	bucket = be.relocateWithinLevel(bucket, hash)
	if bucket < be.size {
		return bucket
	}

	h := hash
	for i := 0; i < 4; i++ {
		h = be.rehash(h, be.enclosingTreeFilter)
		bucket = int(h) & be.enclosingTreeFilter

		if bucket <= be.minorTreeFilter {
			break
		}
		if bucket < be.size {
			return bucket
		}
	}

	bucket = int(hash) & be.minorTreeFilter
	return be.relocateWithinLevel(bucket, hash)
}

// AddBucket grows the cluster by one bucket and returns its index.
func (be *Binomial) AddBucket() int {
	newBucket := be.size
	be.size++

	if be.size == 1 {
		be.enclosingTreeFilter = 1
		be.minorTreeFilter = 0
	} else {
		top := highestOneBit(be.size)
		if be.size > top {
			top <<= 1
		}
		be.enclosingTreeFilter = top - 1
		be.minorTreeFilter = be.enclosingTreeFilter >> 1
	}

	return newBucket
}

// RemoveBucket shrinks the cluster by one bucket, always removing the
// highest-indexed one, and returns the index that was removed.
func (be *Binomial) RemoveBucket() int {
	be.size--

	if be.size <= be.minorTreeFilter {
		be.minorTreeFilter >>= 1
		be.enclosingTreeFilter >>= 1
	}

	return be.size
}

// Size returns the current cluster size.
func (be *Binomial) Size() int { return be.size }

// EnclosingTreeFilter returns the mask for the smallest binary tree
// enclosing the cluster.
func (be *Binomial) EnclosingTreeFilter() int { return be.enclosingTreeFilter }

// MinorTreeFilter returns the mask for the largest binary tree that the
// cluster does not fit in.
func (be *Binomial) MinorTreeFilter() int { return be.minorTreeFilter }

// rehash is a linear congruential step producing a uniformly distributed
// successor value.
func (be *Binomial) rehash(value uint64, seed int) uint64 {
	hash := 2862933555777941757*value + 1
	return (hash * hash * uint64(seed)) >> 32
}

// relocateWithinLevel returns a random position within the same tree level
// as bucket.
func (be *Binomial) relocateWithinLevel(bucket int, hash uint64) int {
	if bucket < 2 {
		return bucket
	}

	levelBaseIndex := highestOneBit(bucket)
	levelFilter := levelBaseIndex - 1

	levelHash := be.rehash(hash, levelFilter)
	levelIndex := int(levelHash) & levelFilter

	return levelBaseIndex + levelIndex
}

// highestOneBit returns the highest set bit of i, or 0 if i <= 0.
func highestOneBit(i int) int {
	if i <= 0 {
		return 0
	}
	return 1 << (bits.Len(uint(i)) - 1)
}
