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

// Command hashbench loads a cluster descriptor and runs balance,
// monotonicity and lookup-latency checks against the resulting Engine,
// writing the results as CSV.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/msaia/gochash/config"
)

func main() {
	var configPath string
	var outPath string
	var numKeys int

	flag.StringVarP(&configPath, "config", "c", "", "path to a cluster YAML descriptor (required)")
	flag.StringVarP(&outPath, "out", "o", "hashbench_results.csv", "path to write the CSV report")
	flag.IntVarP(&numKeys, "keys", "n", 100000, "number of synthetic keys to exercise")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "hashbench -c cluster.yaml [-o out.csv] [-n 100000]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if configPath == "" {
		die("missing required -config flag")
	}

	f, err := os.Open(configPath)
	if err != nil {
		die("can't open %s: %s", configPath, err)
	}
	defer f.Close()

	cluster, err := config.Load(f)
	if err != nil {
		die("can't parse %s: %s", configPath, err)
	}

	engine, err := cluster.Engine()
	if err != nil {
		die("can't build engine: %s", err)
	}

	report := runBenchmarks(engine, numKeys)

	out, err := os.Create(outPath)
	if err != nil {
		die("can't create %s: %s", outPath, err)
	}
	defer out.Close()

	if err := report.writeCSV(out); err != nil {
		die("can't write %s: %s", outPath, err)
	}

	fmt.Printf("wrote %s\n", outPath)
}

func die(f string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, "hashbench: "+f+"\n", v...)
	os.Exit(1)
}
