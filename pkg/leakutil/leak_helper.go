// Copyright 2025 anthill Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

// Package leakutil wires goleak into package tests.
package leakutil

import (
	"testing"

	"go.uber.org/goleak"
)

// SetUpLeakTest runs the tests of a package and then verifies that no
// goroutine leaked. Call it from TestMain.
func SetUpLeakTest(m *testing.M, opts ...goleak.Option) {
	opts = append(opts,
		goleak.IgnoreTopFunction("testing.runTests.func1"),
	)
	goleak.VerifyTestMain(m, opts...)
}
