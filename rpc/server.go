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
	"net"

	"github.com/enclaveio/vsockrpc/internal/logger"
)

// ServeOption configures a single Serve call.
type ServeOption func(*serveConfig)

type serveConfig struct {
	initHook func() error
}

// WithInitHook runs hook exactly once, before the accept loop starts. A
// non-nil error is terminal for Serve (KindNSMConnect). This is the
// runtime's only contract with the secure-module-init collaborator (§6):
// the hook's own semantics (talking to an attestation device, say) are
// entirely outside this package.
func WithInitHook(hook func() error) ServeOption {
	return func(c *serveConfig) { c.initHook = hook }
}

// Serve accepts streams from ln until Accept itself fails, dispatching
// each to router on its own goroutine. The main loop never waits on a
// dispatched goroutine (§4.4 step 3): one slow or stuck handler never
// blocks the accept loop or any other connection.
//
// An Accept failure is terminal and returned to the caller — this
// runtime pins the "fatal accept error" policy where upstream sources
// disagreed (§9 open questions) — while a handler's own failure is
// logged and ends only that one goroutine (§4.4 step 4).
//
// Serve takes no further Route registrations on router once called: the
// map is read concurrently by every dispatched goroutine without a lock,
// which is only safe because registration happens-before Serve (§4.4,
// §5).
func Serve[S any](ctx context.Context, router *Router[S], ln net.Listener, opts ...ServeOption) error {
	cfg := &serveConfig{}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.initHook != nil {
		if err := cfg.initHook(); err != nil {
			return newErr(KindNSMConnect, err)
		}
	}

	logger.Infof("vsockrpc: serving on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				// A caller-initiated shutdown closed the listener; report
				// the context error rather than the resulting Accept noise.
				return ctx.Err()
			default:
				return newErr(KindAccept, err)
			}
		}
		st := newStream(conn, router.maxLen)
		go router.handleConnection(ctx, st)
	}
}
