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

	"github.com/enclaveio/vsockrpc/internal/bufpool"
)

// Dialer opens a fresh connection to one endpoint. rpc/vsock.Endpoint
// implements this via its Dial method; tests commonly supply a closure
// over net.Pipe or a loopback net.Dialer instead.
type Dialer func(ctx context.Context) (net.Conn, error)

// Client sends requests to one fixed endpoint. Each call to Call opens a
// brand-new stream: there is no connection pool and no pipelining (§4.5).
// A Client is safe for concurrent use; concurrent calls race only on the
// underlying transport's own Accept queue at the server, never on any
// state inside Client.
type Client struct {
	dial   Dialer
	maxLen uint64
}

// NewClient builds a Client that dials dial for every Call.
func NewClient(dial Dialer) *Client {
	return &Client{dial: dial, maxLen: DefaultMaxPayloadSize}
}

// WithMaxPayloadSize overrides the response payload ceiling (F1).
func (c *Client) WithMaxPayloadSize(n uint64) *Client {
	c.maxLen = n
	return c
}

// Call performs one request/response round trip in the strict order
// fixed by §4.5: connect, write route hash, encode+write request,
// read+decode response. On return — success or failure — the stream has
// already been closed (P5).
func Call[Req Request, Resp Response](ctx context.Context, c *Client, req Req, newResp func() Resp) (resp Resp, err error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return resp, newErr(KindConnect, err)
	}
	st := newStream(conn, c.maxLen)
	defer func() { _ = st.Close() }()

	if err := st.WriteU32(uint32(RouteHash32(req.RouteID()))); err != nil {
		return resp, err
	}

	payload, err := req.MarshalMsg(nil)
	if err != nil {
		return resp, newErr(KindEncoding, err)
	}

	if err := st.WriteFrame(payload); err != nil {
		return resp, err
	}

	n, err := st.ReadU64()
	if err != nil {
		return resp, err
	}
	body, err := st.ReadExact(n)
	if err != nil {
		return resp, err
	}
	defer bufpool.Put(body)

	resp = newResp()
	if _, err := resp.UnmarshalMsg(body); err != nil {
		return resp, newErr(KindDecoding, err)
	}
	return resp, nil
}
