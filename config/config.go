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

// Package config parses a declarative YAML description of a cluster into
// a running gochash.Engine plus the cluster.Cluster (or
// cluster.WeightedCluster) wrapping it, without depending on any HTTP
// server or other outer surface.
package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/msaia/gochash"
	"github.com/msaia/gochash/cluster"
)

// Cluster is the YAML-serializable description of one cluster: which
// engine backs it, its capacity, and its initial nodes.
type Cluster struct {
	// Kind selects the engine: one of "anchor", "jump", "power",
	// "binomial", "memento", "memento-one".
	Kind string `yaml:"kind"`

	// Capacity is the fixed anchor-array size; only meaningful when Kind
	// is "anchor". Defaults to twice the node count if unset.
	Capacity int `yaml:"capacity,omitempty"`

	// Nodes lists the initial cluster members.
	Nodes []string `yaml:"nodes"`

	// Weights optionally assigns a bucket weight per node. If present,
	// BuildCluster refuses and BuildWeightedCluster must be used instead.
	Weights map[string]int `yaml:"weights,omitempty"`
}

// Load decodes a single YAML document describing a Cluster.
func Load(r io.Reader) (Cluster, error) {
	var c Cluster
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Cluster{}, fmt.Errorf("config: decoding cluster: %w", err)
	}
	if err := c.validate(); err != nil {
		return Cluster{}, err
	}
	return c, nil
}

func (c Cluster) validate() error {
	if _, err := c.kind(); err != nil {
		return err
	}
	if len(c.Nodes) == 0 {
		return fmt.Errorf("config: cluster must declare at least one node")
	}
	return nil
}

func (c Cluster) kind() (gochash.Kind, error) {
	switch c.Kind {
	case "anchor":
		return gochash.KindAnchor, nil
	case "jump":
		return gochash.KindJump, nil
	case "power":
		return gochash.KindPower, nil
	case "binomial":
		return gochash.KindBinomial, nil
	case "memento":
		return gochash.KindMemento, nil
	case "memento-one":
		return gochash.KindMementoOne, nil
	default:
		return 0, fmt.Errorf("config: unknown engine kind %q", c.Kind)
	}
}

// Engine builds the raw gochash.Engine this descriptor selects, with its
// working set already grown to len(Nodes). Unlike BuildCluster, it does
// not track node identity through a registry; it is meant for driving
// the engine directly, as cmd/hashbench does.
func (c Cluster) Engine() (gochash.Engine, error) {
	kind, err := c.kind()
	if err != nil {
		return nil, err
	}
	capacity := c.Capacity
	if capacity == 0 {
		capacity = len(c.Nodes) * 2
		if capacity == 0 {
			capacity = 1
		}
	}
	return gochash.New(kind, capacity, len(c.Nodes))
}

func (c Cluster) buildEngine() (gochash.Engine, error) {
	kind, err := c.kind()
	if err != nil {
		return nil, err
	}
	capacity := c.Capacity
	if capacity == 0 {
		capacity = len(c.Nodes) * 2
		if capacity == 0 {
			capacity = 1
		}
	}
	// The engine starts empty; BuildCluster/BuildWeightedCluster grow it
	// node by node so the registry and the engine's working set never
	// drift out of sync.
	return gochash.New(kind, capacity, 0)
}

// BuildCluster constructs an unweighted cluster.Cluster[string] from the
// descriptor. It fails if Weights is non-empty; use BuildWeightedCluster
// for a weighted topology.
func (c Cluster) BuildCluster() (*cluster.Cluster[string], error) {
	if len(c.Weights) > 0 {
		return nil, fmt.Errorf("config: cluster declares weights; use BuildWeightedCluster")
	}

	engine, err := c.buildEngine()
	if err != nil {
		return nil, err
	}

	cl := cluster.New[string](engine)
	for _, node := range c.Nodes {
		if err := cl.AddNode(node); err != nil {
			return nil, fmt.Errorf("config: adding node %q: %w", node, err)
		}
	}
	return cl, nil
}

// BuildWeightedCluster constructs a cluster.WeightedCluster[string] from
// the descriptor. Nodes without an entry in Weights default to weight 1.
func (c Cluster) BuildWeightedCluster() (*cluster.WeightedCluster[string], error) {
	engine, err := c.buildEngine()
	if err != nil {
		return nil, err
	}

	weights := make(map[string]int, len(c.Nodes))
	for _, node := range c.Nodes {
		weights[node] = 1
	}
	for node, weight := range c.Weights {
		weights[node] = weight
	}

	wc := cluster.NewWeighted[string](engine)
	if err := wc.InitCluster(weights); err != nil {
		return nil, fmt.Errorf("config: initializing weighted cluster: %w", err)
	}
	return wc, nil
}
