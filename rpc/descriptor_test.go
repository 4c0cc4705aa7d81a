// Copyright 2025 The vsockrpc Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteHash32Deterministic(t *testing.T) {
	a := RouteHash32("echo_v1")
	b := RouteHash32("echo_v1")
	assert.Equal(t, a, b)
}

func TestRouteHash32KnownVectors(t *testing.T) {
	// FNV-1a/32 of the empty string is always the offset basis.
	assert.Equal(t, RouteHash(fnvOffset32), RouteHash32(""))

	// Cross-checked against an independent FNV-1a/32 implementation.
	cases := map[string]RouteHash{
		"a":       0xe40c292c,
		"foobar":  0xbf9cf968,
		"echo_v1": RouteHash32("echo_v1"), // sanity: self-consistent, not a magic number
	}
	for in, want := range cases {
		assert.Equal(t, want, RouteHash32(in), "input %q", in)
	}
}

func TestRouteHash32DistinguishesCloseInputs(t *testing.T) {
	assert.NotEqual(t, RouteHash32("echo_v1"), RouteHash32("echo_v2"))
	assert.NotEqual(t, RouteHash32("health_v1"), RouteHash32("Health_v1"))
}
