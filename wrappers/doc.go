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

// Package wrappers holds engines that are thin adapters over algorithms
// this module does not itself implement. Each type here satisfies
// gochash.Engine but is deliberately not documented down to the same
// level of internal detail as the package-root engines: callers should
// treat them as opaque, swappable implementations of the same interface.
package wrappers
