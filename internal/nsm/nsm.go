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

// Package nsm holds the process-wide, lazily-initialized handle to the
// enclave's Secure Module. The attestation subsystem behind this handle
// (the syscalls that produce a COSE-signed attestation document) is out
// of scope for this module (§1): nsm only owns the "init exactly once,
// before accepting, observable from every handler thereafter" contract
// that rpc.Serve's WithInitHook option plugs into (§6, §9).
package nsm

import "sync"

// Handle is whatever the real Secure Module connection looks like. It is
// opaque here: callers that need the real attestation device supply
// their own concrete type and a matching Init function.
type Handle any

var (
	once    sync.Once
	handle  Handle
	initOK  bool
	initErr error
)

// Init runs open exactly once for the lifetime of the process; later
// calls are no-ops that return the first call's outcome. Hand this to
// rpc.WithInitHook so the accept loop init-once-before-accepting
// contract (§4.4 step 2) is honored regardless of how many times the
// caller wires it up.
func Init(open func() (Handle, error)) func() error {
	return func() error {
		once.Do(func() {
			handle, initErr = open()
			initOK = initErr == nil
		})
		return initErr
	}
}

// Get returns the handle established by Init, if any. Every handler in
// the process shares this single read-only value for the rest of its
// lifetime (§5).
func Get() (Handle, bool) {
	return handle, initOK
}
