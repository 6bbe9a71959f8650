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
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"time"
)

// VerifyCertificateChain checks that cert chains up to one of roots at trustedTime
// and carries one of the wanted extended key usages.
func VerifyCertificateChain(cert *x509.Certificate, intermediates, roots []*x509.Certificate, trustedTime time.Time, usages ...x509.ExtKeyUsage) error {
	if len(roots) == 0 {
		return errors.New("no trusted roots provided")
	}

	if len(usages) == 0 {
		usages = []x509.ExtKeyUsage{x509.ExtKeyUsageAny}
	}

	_, err := cert.Verify(x509.VerifyOptions{
		CurrentTime:   trustedTime,
		Roots:         certificatesToPool(roots),
		Intermediates: certificatesToPool(intermediates),
		KeyUsages:     usages,
	})

	return err
}

func certificatesToPool(certs []*x509.Certificate) *x509.CertPool {
	pool := x509.NewCertPool()
	for _, cert := range certs {
		pool.AddCert(cert)
	}

	return pool
}

// TryParseCertificate parses a single PEM or DER encoded certificate.
func TryParseCertificate(data []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return x509.ParseCertificate(data)
	}

	if block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("expected CERTIFICATE pem block, got %v", block.Type)
	}

	return x509.ParseCertificate(block.Bytes)
}

// LoadCertificates reads every CERTIFICATE block of a PEM bundle.
func LoadCertificates(r io.Reader) ([]*x509.Certificate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	certs := make([]*x509.Certificate, 0)
	rest := bytes.TrimSpace(data)
	for len(rest) > 0 {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, errors.New("could not decode pem block")
		}

		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("could not parse certificate: %w", err)
		}

		certs = append(certs, cert)
		rest = bytes.TrimSpace(rest)
	}

	if len(certs) == 0 {
		return nil, errors.New("no certificates found")
	}

	return certs, nil
}
