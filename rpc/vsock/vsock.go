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

// Package vsock names one end of a hypervisor-mediated point-to-point
// socket as a (context-id, port) pair and adapts
// github.com/mdlayher/vsock's Dial/Listen to the net.Conn/net.Listener
// shapes the rpc package builds on.
package vsock

import (
	"context"
	"fmt"
	"net"

	mdvsock "github.com/mdlayher/vsock"
)

// WildcardContextID ("any local context") is used only when binding
// server-side; it is never a meaningful value to Dial.
const WildcardContextID uint32 = 0xFFFFFFFF

// HostContextID is the conventional context id naming the host, as seen
// from an enclave's perspective.
const HostContextID uint32 = 3

// Endpoint names one end of a point-to-point vsock socket.
type Endpoint struct {
	ContextID uint32
	Port      uint32
}

func (e Endpoint) String() string {
	return fmt.Sprintf("vsock:%d:%d", e.ContextID, e.Port)
}

// Dial opens one connection to e; the method value e.Dial is
// rpc.Dialer-shaped. It never retries (§4.1): every call either
// succeeds or reports a fresh connection error.
func (e Endpoint) Dial(ctx context.Context) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := mdvsock.Dial(e.ContextID, e.Port, nil)
		if err != nil {
			ch <- result{nil, err}
			return
		}
		ch <- result{conn, nil}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.conn, r.err
	}
}

// Listen binds a listener on (WildcardContextID, port): "any local
// context" is the only meaningful context id to bind server-side (§3).
func Listen(port uint32) (net.Listener, error) {
	ln, err := mdvsock.ListenContextID(WildcardContextID, port, nil)
	if err != nil {
		return nil, fmt.Errorf("vsock: bind port %d: %w", port, err)
	}
	return ln, nil
}
