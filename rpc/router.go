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
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/enclaveio/vsockrpc/internal/bufpool"
	"github.com/enclaveio/vsockrpc/internal/logger"
)

// Observer receives per-dispatch metrics. *observability.Metrics
// satisfies this by structure; the rpc package never imports
// observability so the framing/dispatch core stays free of the ambient
// metrics stack (§1 scopes logging/metrics out of the core contract).
type Observer interface {
	ObserveDispatch(route string, outcome string, seconds float64)
	StreamStarted()
	StreamEnded()
}

const (
	outcomeOK             = "ok"
	outcomeUnknownRoute   = "unknown_route"
	outcomeDecodingFailed = "decoding_failed"
	outcomeHandlerFailed  = "handler_failed"
	outcomeEncodingFailed = "encoding_failed"
	outcomeIOFailed       = "io_failed"
)

// erasedHandler has lost its concrete request/response types at the map's
// interface; the closure built by Route retains them internally, along
// with the decode/invoke/encode sequence needed to run one request (§9).
type erasedHandler func(ctx context.Context, st *Stream) error

type registration struct {
	routeID string
	handle  erasedHandler
}

// Router maintains the route-hash -> handler mapping and, once Serve is
// called, accepts connections and dispatches each to the matching
// handler. S is the type of the application state passed to every
// handler invocation (§3, §5); each invocation receives a copy of the S
// value. Use a pointer or other cheap-to-copy type for S if handlers
// need to share mutable state;
// synchronizing access to it is the application's responsibility.
type Router[S any] struct {
	state    S
	routes   map[RouteHash]registration
	maxLen   uint64
	observer Observer
}

// NewRouter creates an empty router parameterized over a shared state S.
// Passing a zero-value S (e.g. struct{}{}) is the unit-state case.
func NewRouter[S any](state S) *Router[S] {
	return &Router[S]{
		state:  state,
		routes: make(map[RouteHash]registration),
		maxLen: DefaultMaxPayloadSize,
	}
}

// WithMaxPayloadSize overrides the per-frame payload ceiling (F1) applied
// to every stream this router accepts. Must be called before Serve.
func (r *Router[S]) WithMaxPayloadSize(n uint64) *Router[S] {
	r.maxLen = n
	return r
}

// WithObserver attaches a metrics sink. Must be called before Serve.
func (r *Router[S]) WithObserver(o Observer) *Router[S] {
	r.observer = o
	return r
}

// Route registers a handler for Req -> Resp. It is only valid before
// Serve is called; Serve takes no further registrations once it starts
// accepting (§4.4).
//
// Registration is rejected if the route id's hash collides with a
// different, already-registered route id (R2, a hash collision), or if
// the same route id is registered twice (a duplicate). Both are
// configuration errors the application must fix; the runtime does not
// silently replace the earlier registration (§4.4 step 3, §9 open
// questions).
func Route[S any, Req Request, Resp Response](r *Router[S], newReq func() Req, handle func(ctx context.Context, state S, req Req) (Resp, error)) error {
	sample := newReq()
	id := sample.RouteID()
	if id == "" {
		return errors.New("vsockrpc: route id must not be empty")
	}
	k := RouteHash32(id)

	if existing, ok := r.routes[k]; ok {
		if existing.routeID != id {
			return errors.Errorf("vsockrpc: route hash collision: hash=%#08x %q vs %q", uint32(k), existing.routeID, id)
		}
		return errors.Errorf("vsockrpc: duplicate route registration: %q", id)
	}

	r.routes[k] = registration{
		routeID: id,
		handle: func(ctx context.Context, st *Stream) error {
			n, err := st.ReadU64()
			if err != nil {
				return err
			}
			payload, err := st.ReadExact(n)
			if err != nil {
				return err
			}
			defer bufpool.Put(payload)

			req := newReq()
			if _, err := req.UnmarshalMsg(payload); err != nil {
				return &Error{Kind: KindDecoding, Fingerprint: bufpool.Fingerprint(payload), Err: err}
			}

			resp, err := handle(ctx, r.state, req)
			if err != nil {
				return newErr(KindHandler, err)
			}

			out, err := resp.MarshalMsg(nil)
			if err != nil {
				return newErr(KindEncoding, err)
			}
			return st.WriteFrame(out)
		},
	}
	return nil
}

// lookup returns the registration for hash, if any.
func (r *Router[S]) lookup(hash RouteHash) (registration, bool) {
	reg, ok := r.routes[hash]
	return reg, ok
}

// handleConnection runs the request/response exchange for one accepted
// stream to completion: read the route hash, look it up, delegate to the
// erased handler, and always close the stream on the way out (§4.4).
func (r *Router[S]) handleConnection(ctx context.Context, st *Stream) {
	defer func() { _ = st.Close() }()

	if r.observer != nil {
		r.observer.StreamStarted()
		defer r.observer.StreamEnded()
	}

	hash, err := st.ReadU32()
	if err != nil {
		logger.Debugf("stream %s: no route hash read: %v", st.ID(), err)
		return
	}

	reg, ok := r.lookup(RouteHash(hash))
	if !ok {
		logger.Warnf("stream %s: %s", st.ID(), (&Error{Kind: KindUnknownRoute, Hash: RouteHash(hash)}).Error())
		if r.observer != nil {
			r.observer.ObserveDispatch("", outcomeUnknownRoute, 0)
		}
		return
	}

	start := time.Now()
	err = reg.handle(ctx, st)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		logger.Warnf("stream %s: route %q: %v", st.ID(), reg.routeID, err)
	}
	if r.observer != nil {
		r.observer.ObserveDispatch(reg.routeID, outcomeFor(err), elapsed)
	}
}

func outcomeFor(err error) string {
	if err == nil {
		return outcomeOK
	}
	var rerr *Error
	if errors.As(err, &rerr) {
		switch rerr.Kind {
		case KindDecoding:
			return outcomeDecodingFailed
		case KindEncoding:
			return outcomeEncodingFailed
		case KindHandler:
			return outcomeHandlerFailed
		}
	}
	return outcomeIOFailed
}

func (r *Router[S]) String() string {
	return fmt.Sprintf("Router(%d routes)", len(r.routes))
}
