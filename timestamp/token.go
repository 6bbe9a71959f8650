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
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/digitorus/pkcs7"
)

var (
	OIDSignedData = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}
	OIDTSTInfo    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 1, 4}
)

// Token is the part of an RFC 3161 timestamp token that evidence record
// validation needs.
type Token struct {
	// Raw is the DER encoded ContentInfo.
	Raw []byte
	// HashAlgorithm is the dotted OID of the message imprint algorithm.
	HashAlgorithm string
	HashedMessage []byte
	GenTime       time.Time
	SerialNumber  *big.Int
	Policy        asn1.ObjectIdentifier
	Certificates  []*x509.Certificate
}

type messageImprint struct {
	HashAlgorithm pkix.AlgorithmIdentifier
	HashedMessage []byte
}

type accuracy struct {
	Seconds int64 `asn1:"optional"`
	Millis  int64 `asn1:"tag:0,optional"`
	Micros  int64 `asn1:"tag:1,optional"`
}

type tstInfo struct {
	Version        int
	Policy         asn1.ObjectIdentifier
	MessageImprint messageImprint
	SerialNumber   *big.Int
	GenTime        time.Time        `asn1:"generalized"`
	Accuracy       accuracy         `asn1:"optional"`
	Ordering       bool             `asn1:"optional,default:false"`
	Nonce          *big.Int         `asn1:"optional"`
	TSA            asn1.RawValue    `asn1:"tag:0,optional"`
	Extensions     []pkix.Extension `asn1:"tag:1,optional"`
}

// ParseToken decodes a timestamp token without checking its signature.
func ParseToken(raw []byte) (*Token, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty timestamp token")
	}

	p7, err := pkcs7.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp token: %w", err)
	}

	var info tstInfo
	rest, err := asn1.Unmarshal(p7.Content, &info)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TSTInfo: %w", err)
	}

	if len(rest) > 0 {
		return nil, errors.New("trailing data after TSTInfo")
	}

	return &Token{
		Raw:           raw,
		HashAlgorithm: info.MessageImprint.HashAlgorithm.Algorithm.String(),
		HashedMessage: info.MessageImprint.HashedMessage,
		GenTime:       info.GenTime,
		SerialNumber:  info.SerialNumber,
		Policy:        info.Policy,
		Certificates:  p7.Certificates,
	}, nil
}
