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

package log

import (
	"testing"

	"go.uber.org/zap"
)

func TestNopDoesNotPanic(t *testing.T) {
	l := Nop()
	l.Debug("hello")
	l.Info("world", zap.Int("n", 1))
	l.Warn("careful")
	l.Error("oops", zap.Error(nil))
}

func TestNewWithNilFallsBackToNop(t *testing.T) {
	l := New(nil)
	l.Info("should not panic")
}

func TestWithAddsFields(t *testing.T) {
	l := Nop().With(zap.String("component", "test"))
	l.Info("tagged message")
}
