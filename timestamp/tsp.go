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

package timestamp

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/digitorus/pkcs7"
	"github.com/digitorus/timestamp"
	"github.com/in-toto/go-ers/cryptoutil"
	"github.com/in-toto/go-ers/log"
	"github.com/jellydator/ttlcache/v3"
)

const defaultCacheTTL = 10 * time.Minute

// TSPVerifier verifies RFC 3161 tokens against a set of trusted TSA roots.
// Outcomes are cached by token digest.
type TSPVerifier struct {
	roots         []*x509.Certificate
	intermediates []*x509.Certificate
	cacheTTL      time.Duration
	cache         *ttlcache.Cache[string, verifyResult]
}

type verifyResult struct {
	genTime time.Time
	err     error
}

type VerifyOption func(*TSPVerifier)

func VerifyWithCerts(certs []*x509.Certificate) VerifyOption {
	return func(v *TSPVerifier) {
		v.roots = certs
	}
}

func VerifyWithIntermediates(certs []*x509.Certificate) VerifyOption {
	return func(v *TSPVerifier) {
		v.intermediates = certs
	}
}

// VerifyWithCacheTTL sets how long verification outcomes are remembered.
// A zero duration disables caching.
func VerifyWithCacheTTL(ttl time.Duration) VerifyOption {
	return func(v *TSPVerifier) {
		v.cacheTTL = ttl
	}
}

func NewVerifier(opts ...VerifyOption) *TSPVerifier {
	v := &TSPVerifier{cacheTTL: defaultCacheTTL}
	for _, opt := range opts {
		opt(v)
	}

	if v.cacheTTL > 0 {
		v.cache = ttlcache.New(ttlcache.WithTTL[string, verifyResult](v.cacheTTL))
	}

	return v
}

// VerifyToken checks the token signature and that the signing certificate
// chains to a trusted root at the token's genTime.
func (v *TSPVerifier) VerifyToken(ctx context.Context, token []byte) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	sum := sha256.Sum256(token)
	key := hex.EncodeToString(sum[:])
	if v.cache != nil {
		if item := v.cache.Get(key); item != nil {
			log.Debugf("(timestamp) using cached verification result for token %s", key[:16])
			res := item.Value()
			return res.genTime, res.err
		}
	}

	genTime, err := v.verifyToken(token)
	if v.cache != nil {
		v.cache.Set(key, verifyResult{genTime: genTime, err: err}, ttlcache.DefaultTTL)
	}

	return genTime, err
}

func (v *TSPVerifier) verifyToken(token []byte) (time.Time, error) {
	ts, err := timestamp.Parse(token)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp token: %w", err)
	}

	if len(ts.Certificates) == 0 {
		return time.Time{}, errors.New("timestamp token carries no certificates")
	}

	p7, err := pkcs7.Parse(token)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp token: %w", err)
	}

	// The certificate named by the SignerInfo, not any bundled TSA certificate.
	signer := p7.GetOnlySigner()
	if signer == nil {
		return time.Time{}, errors.New("timestamp token must carry exactly one signer and its certificate")
	}

	intermediates := append([]*x509.Certificate{}, v.intermediates...)
	for _, cert := range p7.Certificates {
		if !cert.Equal(signer) {
			intermediates = append(intermediates, cert)
		}
	}

	if err := cryptoutil.VerifyCertificateChain(signer, intermediates, v.roots, ts.Time, x509.ExtKeyUsageTimeStamping); err != nil {
		return time.Time{}, fmt.Errorf("timestamp signer is not trusted: %w", err)
	}

	return ts.Time, nil
}

// Verify checks that the token read from tsrData is authentic and that its
// message imprint is the digest of signedData.
func (v *TSPVerifier) Verify(ctx context.Context, tsrData, signedData io.Reader) (time.Time, error) {
	token, err := io.ReadAll(tsrData)
	if err != nil {
		return time.Time{}, err
	}

	data, err := io.ReadAll(signedData)
	if err != nil {
		return time.Time{}, err
	}

	genTime, err := v.VerifyToken(ctx, token)
	if err != nil {
		return time.Time{}, err
	}

	parsed, err := ParseToken(token)
	if err != nil {
		return time.Time{}, err
	}

	digest, err := cryptoutil.Digest(data, parsed.HashAlgorithm)
	if err != nil {
		return time.Time{}, err
	}

	if !bytes.Equal(digest, parsed.HashedMessage) {
		return time.Time{}, errors.New("message imprint does not match the timestamped data")
	}

	return genTime, nil
}
