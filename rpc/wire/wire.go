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

// Package wire implements the stateless MessagePack codec shared by the
// client send path and the server dispatch loop. It is deliberately thin:
// every request/response type supplies its own encode/decode by
// implementing Value, and this package only adapts that to and from the
// length-prefixed byte slices that travel over the stream.
package wire

import "github.com/tinylib/msgp/msgp"

// Value is the shape a request or response payload must satisfy to
// participate in the runtime. It mirrors msgp's generated-code triad
// (Marshal/Unmarshal/Msgsize) rather than inventing a new one, so that
// concrete types can be authored exactly as `msgp -file` would emit them.
type Value interface {
	msgp.Marshaler
	msgp.Unmarshaler
	msgp.Sizer
}

// Encode appends the MessagePack encoding of v to buf and returns the
// extended slice. Encoding the same logical value twice yields identical
// bytes: msgp's map/array/scalar encodings carry no nondeterministic
// padding or field ordering ambiguity.
func Encode(buf []byte, v Value) ([]byte, error) {
	return v.MarshalMsg(buf)
}

// Decode unmarshals b into v, returning any trailing bytes msgp left
// unconsumed (always empty for a well-formed single-value frame; a
// non-empty remainder indicates trailing garbage past the payload).
func Decode(b []byte, v Value) ([]byte, error) {
	return v.UnmarshalMsg(b)
}

// Empty is the codec's representation of a request or response with no
// fields, e.g. a health check. It encodes as a zero-length msgpack map.
type Empty struct{}

func (Empty) Msgsize() int { return msgp.MapHeaderSize }

func (Empty) MarshalMsg(b []byte) ([]byte, error) {
	return msgp.AppendMapHeader(b, 0), nil
}

func (e *Empty) UnmarshalMsg(b []byte) ([]byte, error) {
	sz, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return b, err
	}
	for i := uint32(0); i < sz; i++ {
		// Tolerate and skip unknown fields rather than failing closed;
		// this keeps Empty usable as a "no additional fields" marker.
		_, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return b, err
		}
		b, err = msgp.Skip(b)
		if err != nil {
			return b, err
		}
	}
	*e = Empty{}
	return b, nil
}
