// Copyright 2022 The Witness Contributors
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
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/digitorus/timestamp"
)

var fakePolicy = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 57264, 2}

// FakeTimestamper is an in-process TSA. Every token it issues carries genTime
// T and is signed by a throw-away certificate valid for decades around T.
type FakeTimestamper struct {
	T    time.Time
	Hash crypto.Hash
	// Chain is bundled into every token after the TSA certificate.
	Chain []*x509.Certificate

	mu     sync.Mutex
	serial int64
	cert   *x509.Certificate
	key    crypto.Signer
}

func NewFakeTimestamper(t time.Time) (*FakeTimestamper, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	notBefore, notAfter := t, now
	if now.Before(t) {
		notBefore, notAfter = now, t
	}

	certSerial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, err
	}

	tmpl := &x509.Certificate{
		SerialNumber:          certSerial,
		Subject:               pkix.Name{CommonName: "fake tsa", Organization: []string{"go-ers"}},
		NotBefore:             notBefore.AddDate(-20, 0, 0),
		NotAfter:              notAfter.AddDate(20, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageTimeStamping},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, key.Public(), key)
	if err != nil {
		return nil, err
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}

	return &FakeTimestamper{T: t, Hash: crypto.SHA256, cert: cert, key: key}, nil
}

// Certificate returns the TSA certificate. It is its own root.
func (ft *FakeTimestamper) Certificate() *x509.Certificate {
	return ft.cert
}

// Timestamp hashes the data read from r with ft.Hash and returns the token.
func (ft *FakeTimestamper) Timestamp(_ context.Context, r io.Reader) ([]byte, error) {
	h := ft.Hash.New()
	if _, err := io.Copy(h, r); err != nil {
		return nil, err
	}

	return ft.TimestampDigest(ft.Hash, h.Sum(nil))
}

// TimestampDigest issues a token whose message imprint is digest.
func (ft *FakeTimestamper) TimestampDigest(hash crypto.Hash, digest []byte) ([]byte, error) {
	ft.mu.Lock()
	ft.serial++
	serial := ft.serial
	ft.mu.Unlock()

	ts := &timestamp.Timestamp{
		HashAlgorithm:     hash,
		HashedMessage:     digest,
		Time:              ft.T,
		SerialNumber:      big.NewInt(serial),
		Policy:            fakePolicy,
		AddTSACertificate: true,
		Certificates:      ft.Chain,
	}

	resp, err := ts.CreateResponseWithOpts(ft.cert, ft.key, crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("failed to create timestamp response: %w", err)
	}

	parsed, err := timestamp.ParseResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp response: %w", err)
	}

	return parsed.RawToken, nil
}

func (ft *FakeTimestamper) Verify(ctx context.Context, ts io.Reader, sig io.Reader) (time.Time, error) {
	return NewVerifier(VerifyWithCerts([]*x509.Certificate{ft.cert})).Verify(ctx, ts, sig)
}
