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
	"encoding/asn1"
	"errors"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Layout describes the CMS envelope of a timestamp token. Some profiles
// restrict the envelope beyond what RFC 3161 requires.
type Layout struct {
	ContentType asn1.ObjectIdentifier
	// The remaining fields are only filled for SignedData content.
	Version          int64
	DigestAlgorithms int
	EContentType     asn1.ObjectIdentifier
	Certificates     bool
	CRLs             bool
	SignerInfos      []SignerInfoLayout
}

type SignerInfoLayout struct {
	Version       int64
	UnsignedAttrs bool
}

var errBadLayout = errors.New("malformed CMS structure")

var (
	tagContent0 = cbasn1.Tag(0).ContextSpecific().Constructed()
	tagContent1 = cbasn1.Tag(1).ContextSpecific().Constructed()
)

// ParseLayout reads the envelope of a DER encoded ContentInfo.
func ParseLayout(raw []byte) (*Layout, error) {
	input := cryptobyte.String(raw)
	var contentInfo cryptobyte.String
	if !input.ReadASN1(&contentInfo, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, errBadLayout
	}

	l := &Layout{}
	if !contentInfo.ReadASN1ObjectIdentifier(&l.ContentType) {
		return nil, errBadLayout
	}

	if !l.ContentType.Equal(OIDSignedData) {
		return l, nil
	}

	var explicit, signedData cryptobyte.String
	if !contentInfo.ReadASN1(&explicit, tagContent0) || !explicit.ReadASN1(&signedData, cbasn1.SEQUENCE) {
		return nil, errBadLayout
	}

	var digestAlgs, encap cryptobyte.String
	if !signedData.ReadASN1Int64WithTag(&l.Version, cbasn1.INTEGER) ||
		!signedData.ReadASN1(&digestAlgs, cbasn1.SET) ||
		!signedData.ReadASN1(&encap, cbasn1.SEQUENCE) ||
		!encap.ReadASN1ObjectIdentifier(&l.EContentType) {
		return nil, errBadLayout
	}

	for !digestAlgs.Empty() {
		if !digestAlgs.SkipASN1(cbasn1.SEQUENCE) {
			return nil, errBadLayout
		}

		l.DigestAlgorithms++
	}

	var ok bool
	if l.Certificates, ok = skipOptional(&signedData, tagContent0); !ok {
		return nil, errBadLayout
	}

	if l.CRLs, ok = skipOptional(&signedData, tagContent1); !ok {
		return nil, errBadLayout
	}

	var signerInfos cryptobyte.String
	if !signedData.ReadASN1(&signerInfos, cbasn1.SET) {
		return nil, errBadLayout
	}

	for !signerInfos.Empty() {
		var si cryptobyte.String
		if !signerInfos.ReadASN1(&si, cbasn1.SEQUENCE) {
			return nil, errBadLayout
		}

		sil := SignerInfoLayout{}
		if !si.ReadASN1Int64WithTag(&sil.Version, cbasn1.INTEGER) {
			return nil, errBadLayout
		}

		for !si.Empty() {
			var elem cryptobyte.String
			var tag cbasn1.Tag
			if !si.ReadAnyASN1(&elem, &tag) {
				return nil, errBadLayout
			}

			if tag == tagContent1 {
				sil.UnsignedAttrs = true
			}
		}

		l.SignerInfos = append(l.SignerInfos, sil)
	}

	return l, nil
}

// skipOptional consumes an optional element and reports whether it was
// present and non-empty.
func skipOptional(s *cryptobyte.String, tag cbasn1.Tag) (bool, bool) {
	var content cryptobyte.String
	var present bool
	if !s.ReadOptionalASN1(&content, &present, tag) {
		return false, false
	}

	return present && !content.Empty(), true
}
