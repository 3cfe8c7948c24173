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

// Package power implements PowerHash, a two-level power-of-two-choices
// consistent hash algorithm.
package power

import (
	"math"
	"math/bits"

	"github.com/msaia/gochash/mixer"
	"github.com/msaia/gochash/prng"
)

// Power maps keys onto [0,n) using the f/g dispatch from the PowerHash
// paper. Like Jump, it only supports removing the highest-indexed
// bucket.
//
// Author: Massimo Coluzzi
type Power struct {
	n    uint32 // number of working nodes
	m    uint32 // smallest power of two >= n
	mm1  uint32 // m - 1
	mh   uint32 // m / 2
	mhm1 uint32 // m/2 - 1
}

// New creates a Power engine with the given initial working set size.
func New(workingSet int) *Power {
	n := uint32(workingSet)
	p := &Power{n: n}
	p.recompute()
	return p
}

func (p *Power) recompute() {
	p.m = smallestPow2(p.n)
	p.mh = p.m >> 1
	p.mhm1 = p.mh - 1
	p.mm1 = p.m - 1
}

// GetBucket returns the bucket key maps to under seed.
func (p *Power) GetBucket(key, seed uint64) int {
	k := mixer.Mix(key, seed)

	r1 := f(k, p.mm1)
	if r1 < p.n {
		return int(r1)
	}

	r2 := g(k, p.n, p.mhm1)
	if r2 > p.mhm1 {
		return int(r2)
	}

	return int(f(k, p.mhm1))
}

// AddBucket grows the working set by one bucket and returns its index.
func (p *Power) AddBucket() int {
	b := p.n
	p.n++
	p.recompute()
	return int(b)
}

// RemoveBucket shrinks the working set by one, always removing the
// highest-indexed bucket, and returns the index that was removed.
func (p *Power) RemoveBucket() int {
	p.n--
	p.recompute()
	return int(p.n)
}

// Size returns the current working set size.
func (p *Power) Size() int { return int(p.n) }

func smallestPow2(x uint32) uint32 {
	if x == 0 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	return x + 1
}

// f extracts log2(m) bits from key and draws a uniform value in the
// half-open dyadic interval [2^j, 2^(j+1)) that those bits select, where j
// is the index of the highest set bit. A stack-local Rng, reseeded from
// (key, j), keeps the draw deterministic without any shared state.
func f(key, mm1 uint32) uint32 {
	kBits := key & mm1
	if kBits == 0 {
		return 0
	}
	j := uint32(bits.Len32(kBits)) - 1
	h := uint32(1) << j

	var rng prng.Rng
	rng.Seed2(uint64(key), uint64(j))
	r := h + (rng.Next() & (h - 1))
	return r
}

// g performs the bisection described in the PowerHash paper: starting
// from x=s, it repeatedly narrows x using a single uniform draw U(0,1)
// derived from key until the candidate falls at or beyond n, then
// returns the last value below n.
func g(key, n, s uint32) uint32 {
	var rng prng.Rng
	rng.Seed(uint64(key))
	u := float64(rng.Next()) / float64(rng.Max())

	x := s
	for {
		r := uint32(math.Ceil(float64(uint64(x)+1)/u)) - 1
		if r < n {
			x = r
			continue
		}
		return x
	}
}
