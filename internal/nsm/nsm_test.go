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

package nsm

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Init's sync.Once is package-global, so any test in this package that
// calls Init shares that state; this test only asserts properties that
// hold even if another Init call already consumed the Once.

func TestInitRunsOpenExactlyOnce(t *testing.T) {
	var calls int32
	hook := Init(func() (Handle, error) {
		atomic.AddInt32(&calls, 1)
		return "handle-value", nil
	})

	require.NoError(t, hook())
	require.NoError(t, hook())
	require.NoError(t, hook())

	h, ok := Get()
	assert.True(t, ok)
	assert.NotEmpty(t, h)
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}
