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
	"bytes"
	"encoding/asn1"
	"fmt"
	"math"

	"github.com/in-toto/go-ers/log"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	tagCryptoInfo        = cbasn1.Tag(0).ContextSpecific().Constructed()
	tagEncryptionInfo    = cbasn1.Tag(1).ContextSpecific().Constructed()
	tagDigestAlgorithm   = cbasn1.Tag(0).ContextSpecific().Constructed()
	tagDigestAlgorithmID = cbasn1.Tag(0).ContextSpecific()
	tagAttributes        = cbasn1.Tag(1).ContextSpecific().Constructed()
	tagReducedHashtree   = cbasn1.Tag(2).ContextSpecific().Constructed()
)

// ErrMalformedEvidenceRecord is returned for any input that is not a
// structurally valid DER Evidence Record.
type ErrMalformedEvidenceRecord struct {
	Offset int
	Reason string
}

func (e ErrMalformedEvidenceRecord) Error() string {
	return fmt.Sprintf("malformed evidence record at offset %d: %s", e.Offset, e.Reason)
}

type decoder struct {
	buf []byte
}

// offset works because every cryptobyte.String handed out by the decoder is
// a subslice of buf and slicing from the front only shrinks the capacity.
func (d *decoder) offset(s cryptobyte.String) int {
	return cap(d.buf) - cap(s)
}

func (d *decoder) errorf(at cryptobyte.String, format string, args ...interface{}) error {
	return ErrMalformedEvidenceRecord{
		Offset: d.offset(at),
		Reason: fmt.Sprintf(format, args...),
	}
}

// Decode parses a DER encoded Evidence Record. Only structure is checked here,
// semantic problems such as an unexpected version are left to validation.
func Decode(data []byte) (*EvidenceRecord, error) {
	d := &decoder{buf: data}
	s := cryptobyte.String(data)

	var body cryptobyte.String
	if !s.ReadASN1(&body, cbasn1.SEQUENCE) {
		return nil, d.errorf(cryptobyte.String(data), "expected EvidenceRecord SEQUENCE")
	}

	if !s.Empty() {
		return nil, d.errorf(s, "trailing data after EvidenceRecord")
	}

	er := &EvidenceRecord{}
	var version int64
	pos := body
	if !body.ReadASN1Integer(&version) {
		return nil, d.errorf(pos, "expected INTEGER version")
	}

	if version < math.MinInt32 || version > math.MaxInt32 {
		return nil, d.errorf(pos, "version %d out of range", version)
	}

	er.Version = int(version)

	var algs cryptobyte.String
	pos = body
	if !body.ReadASN1(&algs, cbasn1.SEQUENCE) {
		return nil, d.errorf(pos, "expected SEQUENCE of digest algorithms")
	}

	if algs.Empty() {
		return nil, d.errorf(algs, "empty digest algorithm sequence")
	}

	for !algs.Empty() {
		alg, err := d.readAlgorithmIdentifier(&algs)
		if err != nil {
			return nil, err
		}

		er.DigestAlgorithms = append(er.DigestAlgorithms, alg)
	}

	if body.PeekASN1Tag(tagCryptoInfo) {
		var content cryptobyte.String
		body.ReadASN1(&content, tagCryptoInfo)
		attrs, err := d.readAttributes(content, false)
		if err != nil {
			return nil, err
		}

		er.CryptoInfo = attrs
	}

	if body.PeekASN1Tag(tagEncryptionInfo) {
		var content cryptobyte.String
		body.ReadASN1(&content, tagEncryptionInfo)
		info, err := d.readEncryptionInfo(content)
		if err != nil {
			return nil, err
		}

		er.EncryptionInfo = info
	}

	seq, err := d.readSequence(&body)
	if err != nil {
		return nil, err
	}

	er.Sequence = seq
	if !body.Empty() {
		return nil, d.errorf(body, "unexpected element after ArchiveTimeStampSequence")
	}

	log.Debugf("(evidence) decoded evidence record version %d with %d digest algorithms and %d chains", er.Version, len(er.DigestAlgorithms), len(er.Sequence))
	return er, nil
}

func (d *decoder) readAlgorithmIdentifier(s *cryptobyte.String) (AlgorithmIdentifier, error) {
	var seq cryptobyte.String
	pos := *s
	if !s.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return AlgorithmIdentifier{}, d.errorf(pos, "expected AlgorithmIdentifier SEQUENCE")
	}

	return d.readAlgorithmIdentifierBody(seq)
}

func (d *decoder) readAlgorithmIdentifierBody(seq cryptobyte.String) (AlgorithmIdentifier, error) {
	alg := AlgorithmIdentifier{}
	pos := seq
	if !seq.ReadASN1ObjectIdentifier(&alg.OID) {
		return alg, d.errorf(pos, "expected algorithm OBJECT IDENTIFIER")
	}

	if !seq.Empty() {
		var params cryptobyte.String
		var tag cbasn1.Tag
		pos = seq
		if !seq.ReadAnyASN1Element(&params, &tag) {
			return alg, d.errorf(pos, "truncated algorithm parameters")
		}

		alg.Parameters = bytes.Clone(params)
	}

	if !seq.Empty() {
		return alg, d.errorf(seq, "unexpected data in AlgorithmIdentifier")
	}

	return alg, nil
}

func (d *decoder) readAttributes(content cryptobyte.String, allowSingle bool) (*Attributes, error) {
	attrs := &Attributes{}
	if allowSingle && content.PeekASN1Tag(cbasn1.OBJECT_IDENTIFIER) {
		attr, err := d.readAttributeBody(&content)
		if err != nil {
			return nil, err
		}

		if !content.Empty() {
			return nil, d.errorf(content, "unexpected data after attribute")
		}

		attrs.Items = append(attrs.Items, attr)
		attrs.single = true
		return attrs, nil
	}

	if content.Empty() {
		return nil, d.errorf(content, "empty attribute sequence")
	}

	for !content.Empty() {
		var seq cryptobyte.String
		pos := content
		if !content.ReadASN1(&seq, cbasn1.SEQUENCE) {
			return nil, d.errorf(pos, "expected Attribute SEQUENCE")
		}

		attr, err := d.readAttributeBody(&seq)
		if err != nil {
			return nil, err
		}

		if !seq.Empty() {
			return nil, d.errorf(seq, "unexpected data after attribute values")
		}

		attrs.Items = append(attrs.Items, attr)
	}

	return attrs, nil
}

func (d *decoder) readAttributeBody(s *cryptobyte.String) (Attribute, error) {
	attr := Attribute{}
	pos := *s
	if !s.ReadASN1ObjectIdentifier(&attr.Type) {
		return attr, d.errorf(pos, "expected attribute type OBJECT IDENTIFIER")
	}

	var values cryptobyte.String
	pos = *s
	if !s.ReadASN1Element(&values, cbasn1.SET) {
		return attr, d.errorf(pos, "expected attribute values SET")
	}

	attr.Values = bytes.Clone(values)
	return attr, nil
}

func (d *decoder) readEncryptionInfo(content cryptobyte.String) (*EncryptionInfo, error) {
	info := &EncryptionInfo{}
	pos := content
	if !content.ReadASN1ObjectIdentifier(&info.Type) {
		return nil, d.errorf(pos, "expected encryptionInfoType OBJECT IDENTIFIER")
	}

	var value cryptobyte.String
	var tag cbasn1.Tag
	pos = content
	if !content.ReadAnyASN1Element(&value, &tag) {
		return nil, d.errorf(pos, "expected encryptionInfoValue")
	}

	if !content.Empty() {
		return nil, d.errorf(content, "EncryptionInfo must contain exactly two elements")
	}

	info.Value = bytes.Clone(value)
	return info, nil
}

func (d *decoder) readSequence(s *cryptobyte.String) (ArchiveTimeStampSequence, error) {
	var chains cryptobyte.String
	pos := *s
	if !s.ReadASN1(&chains, cbasn1.SEQUENCE) {
		return nil, d.errorf(pos, "expected ArchiveTimeStampSequence SEQUENCE")
	}

	seq := ArchiveTimeStampSequence{}
	for !chains.Empty() {
		var nodes cryptobyte.String
		pos := chains
		if !chains.ReadASN1(&nodes, cbasn1.SEQUENCE) {
			return nil, d.errorf(pos, "expected ArchiveTimeStampChain SEQUENCE")
		}

		if nodes.Empty() {
			return nil, d.errorf(pos, "empty ArchiveTimeStampChain")
		}

		chain := ArchiveTimeStampChain{}
		for !nodes.Empty() {
			ats, err := d.readArchiveTimeStamp(&nodes)
			if err != nil {
				return nil, err
			}

			chain = append(chain, ats)
		}

		seq = append(seq, chain)
	}

	return seq, nil
}

func (d *decoder) readArchiveTimeStamp(s *cryptobyte.String) (ArchiveTimeStamp, error) {
	ats := ArchiveTimeStamp{}
	start := *s
	var body cryptobyte.String
	if !s.ReadASN1(&body, cbasn1.SEQUENCE) {
		return ats, d.errorf(start, "expected ArchiveTimeStamp SEQUENCE")
	}

	// elements must appear as [0], [1], [2], timeStamp
	last := -1
	for !body.Empty() {
		pos := body
		var elem cryptobyte.String
		var tag cbasn1.Tag
		if !body.ReadAnyASN1Element(&elem, &tag) {
			return ats, d.errorf(pos, "truncated ArchiveTimeStamp element")
		}

		var order int
		var err error
		switch tag {
		case tagDigestAlgorithmID, tagDigestAlgorithm:
			order = 0
			err = d.readNodeDigestAlgorithm(&ats, elem, tag)
		case tagAttributes:
			order = 1
			var content cryptobyte.String
			elem.ReadASN1(&content, tag)
			ats.Attributes, err = d.readAttributes(content, true)
		case tagReducedHashtree:
			order = 2
			var content cryptobyte.String
			elem.ReadASN1(&content, tag)
			ats.ReducedHashtree, err = d.readReducedHashtree(content)
		case cbasn1.SEQUENCE:
			order = 3
			ats.TimeStamp = bytes.Clone(elem)
		default:
			return ats, d.errorf(pos, "unexpected tag 0x%02x in ArchiveTimeStamp", uint8(tag))
		}

		if err != nil {
			return ats, err
		}

		if order <= last {
			return ats, d.errorf(pos, "ArchiveTimeStamp element 0x%02x out of order", uint8(tag))
		}

		last = order
	}

	if ats.TimeStamp == nil {
		return ats, d.errorf(start, "ArchiveTimeStamp without timeStamp")
	}

	return ats, nil
}

func (d *decoder) readNodeDigestAlgorithm(ats *ArchiveTimeStamp, elem cryptobyte.String, tag cbasn1.Tag) error {
	var content cryptobyte.String
	elem.ReadASN1(&content, tag)

	if tag == tagDigestAlgorithmID {
		oid, ok := parseOIDContents(content)
		if !ok {
			return d.errorf(content, "invalid digestAlgorithm OBJECT IDENTIFIER")
		}

		ats.DigestAlgorithm = &AlgorithmIdentifier{OID: oid}
		ats.digestForm = formBareOID
		return nil
	}

	if content.PeekASN1Tag(cbasn1.SEQUENCE) {
		alg, err := d.readAlgorithmIdentifier(&content)
		if err != nil {
			return err
		}

		if !content.Empty() {
			return d.errorf(content, "unexpected data after digestAlgorithm")
		}

		ats.DigestAlgorithm = &alg
		ats.digestForm = formExplicit
		return nil
	}

	alg, err := d.readAlgorithmIdentifierBody(content)
	if err != nil {
		return err
	}

	ats.DigestAlgorithm = &alg
	ats.digestForm = formImplicit
	return nil
}

func (d *decoder) readReducedHashtree(content cryptobyte.String) (ReducedHashtree, error) {
	tree := ReducedHashtree{}
	for !content.Empty() {
		var group cryptobyte.String
		pos := content
		if !content.ReadASN1(&group, cbasn1.SEQUENCE) {
			return nil, d.errorf(pos, "expected PartialHashtree SEQUENCE")
		}

		partial := PartialHashtree{}
		for !group.Empty() {
			var h cryptobyte.String
			pos := group
			if !group.ReadASN1(&h, cbasn1.OCTET_STRING) {
				return nil, d.errorf(pos, "expected OCTET STRING hash value")
			}

			partial = append(partial, bytes.Clone(h))
		}

		tree = append(tree, partial)
	}

	return tree, nil
}

func parseOIDContents(content []byte) (asn1.ObjectIdentifier, bool) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.OBJECT_IDENTIFIER, func(b *cryptobyte.Builder) {
		b.AddBytes(content)
	})

	der, err := b.Bytes()
	if err != nil {
		return nil, false
	}

	var oid asn1.ObjectIdentifier
	s := cryptobyte.String(der)
	if !s.ReadASN1ObjectIdentifier(&oid) || !s.Empty() {
		return nil, false
	}

	return oid, true
}
