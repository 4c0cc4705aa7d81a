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

// Package option is a small flexible value bag used for the handful of
// knobs (buffer sizes, timeouts) that a registered route may want to
// tune without widening the Router/Route generic signatures.
package option

import "github.com/spf13/cast"

type Options map[string]any

func New() Options {
	return make(Options)
}

func (o Options) GetInt(k string) (int, error) {
	return cast.ToIntE(o[k])
}

func (o Options) GetBool(k string) (bool, error) {
	return cast.ToBoolE(o[k])
}

func (o Options) GetDuration(k string) (int64, error) {
	return cast.ToInt64E(o[k])
}

func (o Options) Set(k string, v any) {
	o[k] = v
}
