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
	"encoding/binary"
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/enclaveio/vsockrpc/internal/bufpool"
	"github.com/enclaveio/vsockrpc/internal/logger"
)

// DefaultMaxPayloadSize bounds how many bytes a single frame's length
// prefix may declare before the receiver refuses to buffer it (F1). It
// applies to every Stream built with a zero maximum; Router and Client
// can override it with WithMaxPayloadSize.
const DefaultMaxPayloadSize = 64 << 20 // 64 MiB

// halfCloser is satisfied by transports that support shutting down one
// direction independently, e.g. *net.TCPConn and *vsock.Conn. Transports
// that don't implement it fall back to a single full Close.
type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

// Stream wraps one bidirectional byte channel and exposes the
// length-prefixed primitives the framing protocol is built from. All
// integer fields on the wire are big-endian (P3).
//
// A Stream is scoped to a single request/response exchange: callers
// must defer Close immediately after acquiring one, on every exit path
// including panics, so that the underlying connection is always
// half-closed in both directions before its resources are released (P5).
type Stream struct {
	conn net.Conn
	id   string // correlation id for logs; never sent on the wire
	max  uint64
}

// newStream wraps conn. max bounds ReadExact; zero means DefaultMaxPayloadSize.
func newStream(conn net.Conn, max uint64) *Stream {
	if max == 0 {
		max = DefaultMaxPayloadSize
	}
	return &Stream{conn: conn, id: uuid.NewString(), max: max}
}

// ID returns the stream's log-correlation identifier. It never appears
// on the wire and has no bearing on routing or framing.
func (s *Stream) ID() string { return s.id }

// ReadU32 reads one big-endian uint32, failing with KindReadLength on a
// short read (including a clean EOF with zero bytes consumed).
func (s *Stream) ReadU32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(s.conn, b[:]); err != nil {
		return 0, newErr(KindReadLength, err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// ReadU64 reads one big-endian uint64, failing with KindReadLength on a
// short read.
func (s *Stream) ReadU64() (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(s.conn, b[:]); err != nil {
		return 0, newErr(KindReadLength, err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// ReadExact reads exactly n bytes, or fails with KindReadPayload. A
// length exceeding the stream's configured maximum is rejected with
// KindOversizeLength before any allocation is attempted (F1).
func (s *Stream) ReadExact(n uint64) ([]byte, error) {
	if n > s.max {
		return nil, &Error{Kind: KindOversizeLength, Err: io.ErrShortBuffer}
	}
	buf := bufpool.Get(int(n))
	if _, err := io.ReadFull(s.conn, buf); err != nil {
		bufpool.Put(buf)
		return nil, newErr(KindReadPayload, err)
	}
	return buf, nil
}

// WriteU32 writes one big-endian uint32, failing with KindWriteLength.
func (s *Stream) WriteU32(v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	if _, err := s.conn.Write(b[:]); err != nil {
		return newErr(KindWriteLength, err)
	}
	return nil
}

// WriteU64 writes one big-endian uint64, failing with KindWriteLength.
func (s *Stream) WriteU64(v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	if _, err := s.conn.Write(b[:]); err != nil {
		return newErr(KindWriteLength, err)
	}
	return nil
}

// WriteAll writes every byte of b, failing with KindWritePayload.
func (s *Stream) WriteAll(b []byte) error {
	if _, err := s.conn.Write(b); err != nil {
		return newErr(KindWritePayload, err)
	}
	return nil
}

// WriteFrame writes a u64 length prefix followed by b, as both the
// request and response frame bodies do after their respective headers.
func (s *Stream) WriteFrame(b []byte) error {
	if err := s.WriteU64(uint64(len(b))); err != nil {
		return err
	}
	return s.WriteAll(b)
}

// Close performs the full-duplex shutdown required on every exit path
// (P5): half-close both directions before releasing the connection, so a
// peer blocked on a read or write observes a clean EOF rather than a
// reset. Every exit path calls this with `defer`, including panics, so
// the underlying resources are never leaked regardless of how the
// request/response exchange ended. Any failures along the way are
// combined rather than discarded, so a caller that cares can inspect
// them with errors.As against *multierror.Error; Close itself logs each
// failure at debug level, and every existing call site ignores the
// result (P5 asks only that Close be called, not that its error be
// handled).
func (s *Stream) Close() error {
	var result *multierror.Error
	if hc, ok := s.conn.(halfCloser); ok {
		if err := hc.CloseWrite(); err != nil {
			logger.Debugf("stream %s: close write: %v", s.id, err)
			result = multierror.Append(result, err)
		}
		if err := hc.CloseRead(); err != nil {
			logger.Debugf("stream %s: close read: %v", s.id, err)
			result = multierror.Append(result, err)
		}
	}
	if err := s.conn.Close(); err != nil {
		logger.Debugf("stream %s: close: %v", s.id, err)
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
