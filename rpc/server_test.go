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
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingListener's Accept blocks until Close is called; acceptCalls
// counts invocations so a test can assert Serve never reached the accept
// loop at all.
type blockingListener struct {
	closed      chan struct{}
	acceptCalls int32
}

func newBlockingListener() *blockingListener {
	return &blockingListener{closed: make(chan struct{})}
}

func (l *blockingListener) Accept() (net.Conn, error) {
	atomic.AddInt32(&l.acceptCalls, 1)
	<-l.closed
	return nil, errors.New("blockingListener: closed")
}

func (l *blockingListener) Close() error {
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
	return nil
}

func (l *blockingListener) Addr() net.Addr { return blockingAddr{} }

type blockingAddr struct{}

func (blockingAddr) Network() string { return "test" }
func (blockingAddr) String() string  { return "test" }

func TestServeRunsInitHookBeforeAccepting(t *testing.T) {
	ln := newBlockingListener()
	r := newPingRouter(t)

	var hookRan int32
	hook := func() error {
		atomic.AddInt32(&hookRan, 1)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, r, ln, WithInitHook(hook)) }()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&ln.acceptCalls) >= 1
	}, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hookRan))

	cancel()
	_ = ln.Close()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestServeFailingInitHookNeverAccepts(t *testing.T) {
	ln := newBlockingListener()
	r := newPingRouter(t)

	hookErr := errors.New("attestation device unavailable")
	err := Serve(context.Background(), r, ln, WithInitHook(func() error { return hookErr }))
	require.Error(t, err)

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, KindNSMConnect, rerr.Kind)
	assert.ErrorIs(t, err, hookErr)
	assert.EqualValues(t, 0, atomic.LoadInt32(&ln.acceptCalls))
}
