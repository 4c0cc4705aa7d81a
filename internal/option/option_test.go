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

package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetInt(t *testing.T) {
	o := New()
	o.Set("max_payload", 1024)

	v, err := o.GetInt("max_payload")
	require.NoError(t, err)
	assert.Equal(t, 1024, v)
}

func TestGetIntCoercesFromString(t *testing.T) {
	o := New()
	o.Set("retries", "3")

	v, err := o.GetInt("retries")
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestGetBool(t *testing.T) {
	o := New()
	o.Set("pprof", true)

	v, err := o.GetBool("pprof")
	require.NoError(t, err)
	assert.True(t, v)
}

func TestGetDuration(t *testing.T) {
	o := New()
	o.Set("timeout_ms", int64(500))

	v, err := o.GetDuration("timeout_ms")
	require.NoError(t, err)
	assert.EqualValues(t, 500, v)
}

func TestGetMissingKeyDefaultsToZero(t *testing.T) {
	// cast treats a nil source value as the type's zero value rather than
	// an error, so a key that was never Set reads back as 0, not a failure.
	o := New()
	v, err := o.GetInt("absent")
	require.NoError(t, err)
	assert.Zero(t, v)
}
