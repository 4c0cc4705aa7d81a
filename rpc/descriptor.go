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

import "github.com/enclaveio/vsockrpc/rpc/wire"

// RouteHash is the 32-bit FNV-1a digest of a route id. It identifies a
// route on the wire; it is never used as an integrity check (R1).
type RouteHash uint32

// fnv1a32 constants, RFC-free but well-known: offset basis and prime for
// the 32-bit variant of FNV-1a.
const (
	fnvOffset32 uint32 = 2166136261
	fnvPrime32  uint32 = 16777619
)

// RouteHash32 computes the FNV-1a/32 hash of routeID's UTF-8 bytes. This
// specific algorithm is part of the wire protocol: changing it breaks
// interop with any peer still running the old one (§4.3).
func RouteHash32(routeID string) RouteHash {
	h := fnvOffset32
	for i := 0; i < len(routeID); i++ {
		h ^= uint32(routeID[i])
		h *= fnvPrime32
	}
	return RouteHash(h)
}

// Request is the shape a request payload type must satisfy to be
// registered on a Router or sent by a Client: a stable route id plus the
// codec's Marshal/Unmarshal/Msgsize triad (C3).
type Request interface {
	wire.Value
	RouteID() string
}

// Response is the shape a response payload type must satisfy. It carries
// no route id of its own: the correlation with its request is positional,
// not named (one stream, one request, one response).
type Response interface {
	wire.Value
}
