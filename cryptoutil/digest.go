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
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"slices"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
	"golang.org/x/crypto/sha3"
)

// Object identifiers of the digest algorithms go-ers can compute.
const (
	OIDRIPEMD160 = "1.3.36.3.2.1"
	OIDSHA1      = "1.3.14.3.2.26"
	OIDSHA224    = "2.16.840.1.101.3.4.2.4"
	OIDSHA256    = "2.16.840.1.101.3.4.2.1"
	OIDSHA384    = "2.16.840.1.101.3.4.2.2"
	OIDSHA512    = "2.16.840.1.101.3.4.2.3"
	OIDSHA3_256  = "2.16.840.1.101.3.4.2.8"
	OIDSHA3_384  = "2.16.840.1.101.3.4.2.9"
	OIDSHA3_512  = "2.16.840.1.101.3.4.2.10"
)

type ErrUnknownAlgorithm struct {
	OID string
}

func (e ErrUnknownAlgorithm) Error() string {
	return fmt.Sprintf("unsupported digest algorithm: %v", e.OID)
}

type digestAlgorithm struct {
	name string
	hash crypto.Hash
	new  func() hash.Hash
}

var digestAlgorithms = map[string]digestAlgorithm{
	OIDRIPEMD160: {"RIPEMD-160", crypto.RIPEMD160, ripemd160.New},
	OIDSHA1:      {"SHA-1", crypto.SHA1, sha1.New},
	OIDSHA224:    {"SHA-224", crypto.SHA224, sha256.New224},
	OIDSHA256:    {"SHA-256", crypto.SHA256, sha256.New},
	OIDSHA384:    {"SHA-384", crypto.SHA384, sha512.New384},
	OIDSHA512:    {"SHA-512", crypto.SHA512, sha512.New},
	OIDSHA3_256:  {"SHA3-256", crypto.SHA3_256, sha3.New256},
	OIDSHA3_384:  {"SHA3-384", crypto.SHA3_384, sha3.New384},
	OIDSHA3_512:  {"SHA3-512", crypto.SHA3_512, sha3.New512},
}

// Digest hashes data with the algorithm identified by oid.
func Digest(data []byte, oid string) ([]byte, error) {
	h, err := NewHash(oid)
	if err != nil {
		return nil, err
	}

	h.Write(data)
	return h.Sum(nil), nil
}

// NewHash returns a fresh hash.Hash for oid.
func NewHash(oid string) (hash.Hash, error) {
	alg, ok := digestAlgorithms[oid]
	if !ok {
		return nil, ErrUnknownAlgorithm{OID: oid}
	}

	return alg.new(), nil
}

// IsSupported reports whether Digest can compute oid.
func IsSupported(oid string) bool {
	_, ok := digestAlgorithms[oid]
	return ok
}

// HashFromOID maps a digest OID to its crypto.Hash.
func HashFromOID(oid string) (crypto.Hash, error) {
	alg, ok := digestAlgorithms[oid]
	if !ok {
		return 0, ErrUnknownAlgorithm{OID: oid}
	}

	return alg.hash, nil
}

// OIDFromHash is the inverse of HashFromOID.
func OIDFromHash(h crypto.Hash) (string, error) {
	for oid, alg := range digestAlgorithms {
		if alg.hash == h {
			return oid, nil
		}
	}

	return "", ErrUnknownAlgorithm{OID: h.String()}
}

// AlgorithmName returns a readable name for oid, or oid itself when it is unknown.
func AlgorithmName(oid string) string {
	if alg, ok := digestAlgorithms[oid]; ok {
		return alg.name
	}

	return oid
}

// SupportedOIDs returns the OIDs of every supported digest algorithm in sorted order.
func SupportedOIDs() []string {
	oids := make([]string, 0, len(digestAlgorithms))
	for oid := range digestAlgorithms {
		oids = append(oids, oid)
	}

	slices.Sort(oids)
	return oids
}

// Concat joins byte slices into a newly allocated slice.
func Concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}

	result := make([]byte, 0, n)
	for _, p := range parts {
		result = append(result, p...)
	}

	return result
}
