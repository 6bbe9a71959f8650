// Copyright 2026 The Witness Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	buf := &bytes.Buffer{}
	l, err := NewLogrusLogger(buf, "debug")
	require.NoError(t, err)
	SetLogger(l)

	Debugf("(test) decoded %d chains", 2)
	Warn("fallback")
	Errorf("failed: %v", "boom")
	assert.Contains(t, buf.String(), "(test) decoded 2 chains")
	assert.Contains(t, buf.String(), "fallback")
	assert.Contains(t, buf.String(), "failed: boom")
	assert.NotContains(t, buf.String(), "\x1b[")

	SetLogger(nil)
	assert.IsType(t, SilentLogger{}, GetLogger())
}

func TestNewLogrusLoggerInvalidLevel(t *testing.T) {
	_, err := NewLogrusLogger(&bytes.Buffer{}, "chatty")
	assert.Error(t, err)
}
