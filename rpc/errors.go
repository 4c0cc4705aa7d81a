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

import "fmt"

// Kind distinguishes the structured failure modes the runtime must tell
// apart. Errors are never stringified at the point they're raised; Kind
// lets a caller branch on what happened without parsing a message.
type Kind int

const (
	// KindConnect means opening the client stream failed.
	KindConnect Kind = iota
	// KindBind means the server failed to bind its listener.
	KindBind
	// KindAccept means the listener's Accept call failed; terminal for Serve.
	KindAccept
	// KindReadLength means reading a length/hash prefix failed.
	KindReadLength
	// KindReadPayload means reading the frame's payload bytes failed.
	KindReadPayload
	// KindWriteLength means writing a length/hash prefix failed.
	KindWriteLength
	// KindWritePayload means writing the frame's payload bytes failed.
	KindWritePayload
	// KindEncoding means the codec could not serialize a value.
	KindEncoding
	// KindDecoding means the codec could not deserialize a value.
	KindDecoding
	// KindUnknownRoute means a request arrived for an unregistered route hash.
	KindUnknownRoute
	// KindHandler means the registered handler itself returned an error.
	KindHandler
	// KindNSMConnect means the optional secure-module-init hook failed.
	KindNSMConnect
	// KindOversizeLength means a frame declared a payload length the
	// receiver refuses to buffer.
	KindOversizeLength
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindBind:
		return "bind"
	case KindAccept:
		return "accept"
	case KindReadLength:
		return "reading(length)"
	case KindReadPayload:
		return "reading(payload)"
	case KindWriteLength:
		return "writing(length)"
	case KindWritePayload:
		return "writing(payload)"
	case KindEncoding:
		return "encoding"
	case KindDecoding:
		return "decoding"
	case KindUnknownRoute:
		return "unknown_request"
	case KindHandler:
		return "handler"
	case KindNSMConnect:
		return "nsm_connect"
	case KindOversizeLength:
		return "oversize_length"
	default:
		return "unknown"
	}
}

// Error is the structured error value returned by every fallible
// operation in this package. The underlying cause, when present, is
// preserved for unwrapping.
type Error struct {
	Kind        Kind
	Hash        RouteHash // populated only for KindUnknownRoute
	Fingerprint uint64    // populated only for KindDecoding; see bufpool.Fingerprint
	Err         error
}

func (e *Error) Error() string {
	if e.Kind == KindUnknownRoute {
		return fmt.Sprintf("vsockrpc: %s: hash=%#08x", e.Kind, uint32(e.Hash))
	}
	if e.Kind == KindDecoding && e.Fingerprint != 0 {
		return fmt.Sprintf("vsockrpc: %s: payload=%#016x: %v", e.Kind, e.Fingerprint, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("vsockrpc: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("vsockrpc: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, err error) *Error {
	return &Error{Kind: k, Err: err}
}
