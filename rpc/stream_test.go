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
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamWriteReadFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cs := newStream(client, 0)
	ss := newStream(server, 0)

	done := make(chan error, 1)
	go func() { done <- cs.WriteFrame([]byte("payload bytes")) }()

	n, err := ss.ReadU64()
	require.NoError(t, err)
	assert.EqualValues(t, len("payload bytes"), n)

	body, err := ss.ReadExact(n)
	require.NoError(t, err)
	assert.Equal(t, "payload bytes", string(body))
	require.NoError(t, <-done)
}

func TestStreamReadExactRejectsOversizeBeforeAllocating(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ss := newStream(server, 16)

	_, err := ss.ReadExact(17)
	require.Error(t, err)

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, KindOversizeLength, rerr.Kind)
}

func TestStreamReadU32ShortReadIsReadLengthError(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	go func() {
		_, _ = client.Write([]byte{0x01})
		client.Close()
	}()

	ss := newStream(server, 0)
	_, err := ss.ReadU32()
	require.Error(t, err)

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, KindReadLength, rerr.Kind)
}

func TestStreamIDIsStableAndNonEmpty(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	s := newStream(client, 0)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, s.ID(), s.ID())
}

func TestStreamCloseIsIdempotentOnPlainConn(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	s := newStream(client, 0)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
