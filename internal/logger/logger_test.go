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

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToZapLevelKnownAndUnknown(t *testing.T) {
	assert.Equal(t, 0, int(toZapLevel("info"))) // zapcore.InfoLevel == 0
	assert.NotPanics(t, func() { toZapLevel("not-a-level") })
}

func TestNewAndSetLevelDoNotPanicOnStdout(t *testing.T) {
	l := New(Options{Stdout: true, Level: "debug"})
	assert.NotPanics(t, func() {
		l.Debugf("probe %d", 1)
		l.Infof("probe %d", 2)
		l.Warnf("probe %d", 3)
		l.Errorf("probe %d", 4)
	})
}

func TestSetOptionsAndSetLevel(t *testing.T) {
	SetOptions(Options{Stdout: true, Level: "warn"})
	assert.Equal(t, "warn", stdOpt.Level)

	SetLevel("ERROR")
	assert.Equal(t, "error", stdOpt.Level)

	assert.NotPanics(t, func() {
		Infof("package-level probe")
	})
}
