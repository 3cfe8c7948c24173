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

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/msaia/gochash"
)

// report is a flat metric/value table, written as a two-column CSV.
type report struct {
	rows [][2]string
}

func (r *report) add(metric string, value interface{}) {
	r.rows = append(r.rows, [2]string{metric, fmt.Sprint(value)})
}

func (r *report) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"metric", "value"}); err != nil {
		return err
	}
	for _, row := range r.rows {
		if err := cw.Write(row[:]); err != nil {
			return err
		}
	}
	return cw.Error()
}

// syntheticKey derives a deterministic uint64 key for index i.
func syntheticKey(i int) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("hashbench-key-%d", i))
}

func runBenchmarks(engine gochash.Engine, numKeys int) *report {
	r := &report{}
	r.add("buckets", engine.Size())

	runBalance(engine, numKeys, r)
	runMonotonicity(engine, numKeys, r)
	runLookupLatency(engine, numKeys, r)

	return r
}

func runBalance(engine gochash.Engine, numKeys int, r *report) {
	counts := make(map[int]int)
	for i := 0; i < numKeys; i++ {
		b := engine.GetBucket(syntheticKey(i), 0)
		counts[b]++
	}

	min, max := numKeys, 0
	for _, c := range counts {
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}

	r.add("balance_distinct_buckets", len(counts))
	r.add("balance_min_count", min)
	r.add("balance_max_count", max)
	if engine.Size() > 0 {
		r.add("balance_ideal_count", numKeys/engine.Size())
	}
}

func runMonotonicity(engine gochash.Engine, numKeys int, r *report) {
	before := make(map[uint64]int, numKeys)
	for i := 0; i < numKeys; i++ {
		key := syntheticKey(i)
		before[key] = engine.GetBucket(key, 0)
	}

	sizeBefore := engine.Size()
	if _, err := engine.AddBucket(); err != nil {
		r.add("monotonicity_error", err)
		return
	}

	moved := 0
	for key, bucket := range before {
		if engine.GetBucket(key, 0) != bucket {
			moved++
		}
	}

	r.add("monotonicity_buckets_before", sizeBefore)
	r.add("monotonicity_moved_fraction", float64(moved)/float64(numKeys))
	if sizeBefore+1 > 0 {
		r.add("monotonicity_ideal_fraction", 1.0/float64(sizeBefore+1))
	}
}

func runLookupLatency(engine gochash.Engine, numKeys int, r *report) {
	start := time.Now()
	for i := 0; i < numKeys; i++ {
		_ = engine.GetBucket(syntheticKey(i), 0)
	}
	elapsed := time.Since(start)

	r.add("lookup_total_ns", elapsed.Nanoseconds())
	if numKeys > 0 {
		r.add("lookup_ns_per_op", float64(elapsed.Nanoseconds())/float64(numKeys))
	}
}
