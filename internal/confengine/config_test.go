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

package confengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
transport: vsock
port: 9000
metrics:
  enabled: true
  address: "127.0.0.1:9100"
  pprof: false
log:
  stdout: true
  level: info
`

func TestLoadContentUnpack(t *testing.T) {
	conf, err := LoadContent([]byte(sampleYAML))
	require.NoError(t, err)

	var out struct {
		Transport string `config:"transport"`
		Port      int    `config:"port"`
	}
	require.NoError(t, conf.Unpack(&out))
	assert.Equal(t, "vsock", out.Transport)
	assert.Equal(t, 9000, out.Port)
}

func TestUnpackChild(t *testing.T) {
	conf, err := LoadContent([]byte(sampleYAML))
	require.NoError(t, err)

	var metrics struct {
		Enabled bool   `config:"enabled"`
		Address string `config:"address"`
		Pprof   bool   `config:"pprof"`
	}
	require.NoError(t, conf.UnpackChild("metrics", &metrics))
	assert.True(t, metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9100", metrics.Address)
	assert.False(t, metrics.Pprof)
}

func TestEnabledAndDisabled(t *testing.T) {
	conf, err := LoadContent([]byte(sampleYAML))
	require.NoError(t, err)

	assert.True(t, conf.Enabled("metrics"))
	assert.False(t, conf.Disabled("metrics"))
}

func TestHasAndChild(t *testing.T) {
	conf, err := LoadContent([]byte(sampleYAML))
	require.NoError(t, err)

	assert.True(t, conf.Has("log.level"))
	assert.False(t, conf.Has("nope.nope"))

	child, err := conf.Child("log")
	require.NoError(t, err)
	var log struct {
		Level string `config:"level"`
	}
	require.NoError(t, child.Unpack(&log))
	assert.Equal(t, "info", log.Level)
}
