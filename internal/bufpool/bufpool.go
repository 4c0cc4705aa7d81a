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

// Package bufpool reuses the byte buffers the framing layer reads request
// and response payloads into, so a busy dispatch loop doesn't allocate one
// slice per frame.
package bufpool

import (
	"github.com/cespare/xxhash/v2"
	"github.com/valyala/bytebufferpool"
)

var pool bytebufferpool.Pool

// Get returns a buffer of exactly n bytes. The caller must return it with
// Put once the frame it holds has been decoded and is no longer needed.
func Get(n int) []byte {
	b := pool.Get()
	if cap(b.B) < n {
		b.B = make([]byte, n)
	} else {
		b.B = b.B[:n]
	}
	return b.B
}

// Put returns a buffer previously obtained from Get.
func Put(b []byte) {
	pool.Put(&bytebufferpool.ByteBuffer{B: b})
}

// Fingerprint returns a 64-bit, non-cryptographic hash of b for log
// correlation and metric-cardinality guards. It is never part of the
// wire format and must never be used for routing — route hashing is
// FNV-1a/32 over the route id, computed independently (see rpc.RouteHash).
func Fingerprint(b []byte) uint64 {
	return xxhash.Sum64(b)
}
