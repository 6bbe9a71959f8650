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

package cryptoutil

import (
	"crypto"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		oid      string
		expected string
	}{
		{OIDSHA1, "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{OIDSHA256, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{OIDRIPEMD160, "8eb208f7e05d987a9b044a8e98c6b087f15a0bfc"},
		{OIDSHA3_256, "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
	}

	for _, tt := range tests {
		t.Run(AlgorithmName(tt.oid), func(t *testing.T) {
			d, err := Digest([]byte("abc"), tt.oid)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, hex.EncodeToString(d))
		})
	}
}

func TestDigestUnknownAlgorithm(t *testing.T) {
	_, err := Digest([]byte("abc"), "1.2.3.4")
	require.Error(t, err)

	var unknown ErrUnknownAlgorithm
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "1.2.3.4", unknown.OID)
	assert.False(t, IsSupported("1.2.3.4"))
}

func TestHashMapping(t *testing.T) {
	h, err := HashFromOID(OIDSHA384)
	require.NoError(t, err)
	assert.Equal(t, crypto.SHA384, h)

	oid, err := OIDFromHash(crypto.SHA512)
	require.NoError(t, err)
	assert.Equal(t, OIDSHA512, oid)

	_, err = OIDFromHash(crypto.MD5)
	assert.Error(t, err)
}

func TestConcat(t *testing.T) {
	a := []byte{1, 2}
	b := []byte{3}
	c := Concat(a, b, nil)
	assert.Equal(t, []byte{1, 2, 3}, c)

	c[0] = 9
	assert.Equal(t, byte(1), a[0])
	assert.Empty(t, Concat())
}
