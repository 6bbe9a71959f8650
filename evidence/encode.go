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

package evidence

import (
	"encoding/asn1"
	"errors"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// MarshalBinary encodes the record as DER. Decoding a DER record and marshaling
// it again yields the original bytes.
func (er *EvidenceRecord) MarshalBinary() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(int64(er.Version))
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			for _, alg := range er.DigestAlgorithms {
				addAlgorithmIdentifier(b, alg)
			}
		})

		if er.CryptoInfo != nil {
			b.AddASN1(tagCryptoInfo, func(b *cryptobyte.Builder) {
				addAttributes(b, er.CryptoInfo)
			})
		}

		if er.EncryptionInfo != nil {
			b.AddASN1(tagEncryptionInfo, func(b *cryptobyte.Builder) {
				b.AddASN1ObjectIdentifier(er.EncryptionInfo.Type)
				b.AddBytes(er.EncryptionInfo.Value)
			})
		}

		er.Sequence.add(b)
	})

	return b.Bytes()
}

func (s ArchiveTimeStampSequence) MarshalBinary() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	s.add(b)
	return b.Bytes()
}

func (c ArchiveTimeStampChain) MarshalBinary() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	c.add(b)
	return b.Bytes()
}

func (a *ArchiveTimeStamp) MarshalBinary() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	a.add(b)
	return b.Bytes()
}

func (s ArchiveTimeStampSequence) add(b *cryptobyte.Builder) {
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, chain := range s {
			chain.add(b)
		}
	})
}

func (c ArchiveTimeStampChain) add(b *cryptobyte.Builder) {
	if len(c) == 0 {
		b.SetError(errors.New("ArchiveTimeStampChain must not be empty"))
		return
	}

	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for i := range c {
			c[i].add(b)
		}
	})
}

func (a *ArchiveTimeStamp) add(b *cryptobyte.Builder) {
	if len(a.TimeStamp) == 0 {
		b.SetError(errors.New("ArchiveTimeStamp without timeStamp"))
		return
	}

	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		if alg := a.DigestAlgorithm; alg != nil {
			switch a.digestForm {
			case formBareOID:
				contents, err := oidContents(alg.OID)
				if err != nil {
					b.SetError(err)
					return
				}

				b.AddASN1(tagDigestAlgorithmID, func(b *cryptobyte.Builder) {
					b.AddBytes(contents)
				})
			case formExplicit:
				b.AddASN1(tagDigestAlgorithm, func(b *cryptobyte.Builder) {
					addAlgorithmIdentifier(b, *alg)
				})
			default:
				b.AddASN1(tagDigestAlgorithm, func(b *cryptobyte.Builder) {
					b.AddASN1ObjectIdentifier(alg.OID)
					b.AddBytes(alg.Parameters)
				})
			}
		}

		if a.Attributes != nil {
			b.AddASN1(tagAttributes, func(b *cryptobyte.Builder) {
				addAttributes(b, a.Attributes)
			})
		}

		if a.ReducedHashtree != nil {
			b.AddASN1(tagReducedHashtree, func(b *cryptobyte.Builder) {
				for _, group := range a.ReducedHashtree {
					b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
						for _, h := range group {
							b.AddASN1OctetString(h)
						}
					})
				}
			})
		}

		b.AddBytes(a.TimeStamp)
	})
}

func addAlgorithmIdentifier(b *cryptobyte.Builder, alg AlgorithmIdentifier) {
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(alg.OID)
		b.AddBytes(alg.Parameters)
	})
}

func addAttributes(b *cryptobyte.Builder, attrs *Attributes) {
	if attrs.single && len(attrs.Items) == 1 {
		b.AddASN1ObjectIdentifier(attrs.Items[0].Type)
		b.AddBytes(attrs.Items[0].Values)
		return
	}

	for _, attr := range attrs.Items {
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(attr.Type)
			b.AddBytes(attr.Values)
		})
	}
}

func oidContents(oid asn1.ObjectIdentifier) ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1ObjectIdentifier(oid)
	der, err := b.Bytes()
	if err != nil {
		return nil, err
	}

	s := cryptobyte.String(der)
	var contents cryptobyte.String
	if !s.ReadASN1(&contents, cbasn1.OBJECT_IDENTIFIER) {
		return nil, errors.New("could not encode object identifier")
	}

	return contents, nil
}
