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

package ers

import (
	"context"
	"crypto/x509"
	"testing"
	"time"

	"github.com/in-toto/go-ers/cryptoutil"
	"github.com/in-toto/go-ers/evidence"
	"github.com/in-toto/go-ers/internal/erstest"
	"github.com/in-toto/go-ers/report"
	"github.com/in-toto/go-ers/timestamp"
	"github.com/in-toto/go-ers/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	genTime = time.Date(2022, time.July, 1, 12, 0, 0, 0, time.UTC)
	now     = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	doc     = []byte("archived document")
)

func fixedClock() time.Time {
	return now
}

func encodedRecord(t *testing.T) (*erstest.Builder, []byte) {
	t.Helper()
	b := erstest.New(t, cryptoutil.OIDSHA256)
	node := b.Node(evidence.ReducedHashtree{b.Leaves(doc)}, genTime)
	er := erstest.Record([]string{cryptoutil.OIDSHA256}, evidence.ArchiveTimeStampChain{node})
	return b, erstest.Encode(t, er)
}

func protectedDoc() []validation.ProtectedElement {
	return []validation.ProtectedElement{{Ref: report.NewReference("doc"), Data: doc}}
}

func TestSchedulerIsolation(t *testing.T) {
	_, raw := encodedRecord(t)
	s := NewScheduler(WithClock(fixedClock))

	rep := s.Validate(context.Background(), []Request{
		{Data: raw, ProtectedData: protectedDoc()},
		{Data: []byte{0x30, 0x03, 0x02, 0x01, 0x01}},
		{Data: raw, ProtectedData: protectedDoc()},
	})

	assert.Equal(t, RootReference, rep.Reference().String())
	assert.Equal(t, report.Invalid, rep.Major())
	require.Len(t, rep.Children(), 3)

	names := make([]string, 0, 3)
	for _, c := range rep.Children() {
		names = append(names, c.Reference().String())
	}
	assert.Equal(t, []string{"validation/er0", "validation/er1", "validation/er2"}, names)

	assert.Equal(t, report.Indeterminate, rep.Children()[0].Major())
	assert.Equal(t, report.Invalid, rep.Children()[1].Major())
	assert.Equal(t, report.MinorInvalidFormat, rep.Children()[1].Minor())
	assert.Contains(t, rep.Children()[1].Message(), "evidence record cannot be parsed")
	assert.Equal(t, report.Indeterminate, rep.Children()[2].Major())
}

func TestSchedulerUnsupportedProfile(t *testing.T) {
	_, raw := encodedRecord(t)
	rep := NewScheduler(WithClock(fixedClock)).Validate(context.Background(), []Request{
		{Name: "first", Profile: "nope", Data: raw},
		{Name: "second", Data: raw, ProtectedData: protectedDoc()},
	})

	require.Len(t, rep.Children(), 2)
	first := rep.Children()[0]
	assert.Equal(t, report.Indeterminate, first.Major())
	assert.Equal(t, report.MinorParameterError, first.Minor())
	assert.Contains(t, first.Message(), "unsupported profile: nope")
	assert.Empty(t, first.Children())
	assert.Equal(t, report.Indeterminate, rep.Children()[1].Major())
}

func TestSchedulerXMLRecord(t *testing.T) {
	rep := NewScheduler().Validate(context.Background(), []Request{
		{Data: []byte(`<?xml version="1.0" encoding="UTF-8"?><EvidenceRecord Version="1"></EvidenceRecord>`)},
	})

	require.Len(t, rep.Children(), 1)
	assert.Equal(t, report.Indeterminate, rep.Children()[0].Major())
	assert.Equal(t, report.MinorNotSupported, rep.Children()[0].Minor())
}

func TestSchedulerOnlineVerification(t *testing.T) {
	b, raw := encodedRecord(t)
	verifier := timestamp.NewVerifier(timestamp.VerifyWithCerts([]*x509.Certificate{b.TSA.Certificate()}))
	s := NewScheduler(WithClock(fixedClock), WithTokenVerifier(verifier))

	rep := s.Validate(context.Background(), []Request{
		{Profile: validation.ProfileTRESOR, Data: raw, ProtectedData: protectedDoc()},
		{Data: raw, ProtectedData: protectedDoc()},
	})

	require.Len(t, rep.Children(), 2)
	assert.Equal(t, report.Valid, rep.Children()[0].Major(), rep.Children()[0].SummarizedMessage())
	assert.Equal(t, report.Indeterminate, rep.Children()[1].Major())
	assert.Equal(t, report.Indeterminate, rep.Major())
}

func TestSchedulerProfiles(t *testing.T) {
	s := NewScheduler(
		WithHashSortingMode(validation.Both),
		WithProfileOptions(map[string]map[string]any{
			validation.ProfileBasisERS: {"allow-attributes": true, "hash-sorting-mode": "sorted"},
		}),
	)

	p, err := s.Profile(validation.ProfileRFC4998)
	require.NoError(t, err)
	assert.Equal(t, validation.Both, p.HashSorting)

	p, err = s.Profile(validation.ProfileBasisERS)
	require.NoError(t, err)
	assert.Equal(t, validation.Sorted, p.HashSorting)
	assert.True(t, p.AllowAttributes)
	assert.False(t, p.AllowCryptoInfo)

	_, err = s.Profile("nope")
	assert.ErrorIs(t, err, ErrUnsupportedProfile("nope"))
}

func TestSchedulerMisconfiguredProfile(t *testing.T) {
	_, raw := encodedRecord(t)
	s := NewScheduler(WithProfileOptions(map[string]map[string]any{
		validation.DefaultProfile: {"allowed-digests": []string{"["}},
	}))

	rep := s.Validate(context.Background(), []Request{{Data: raw}})
	require.Len(t, rep.Children(), 1)
	assert.Equal(t, report.Indeterminate, rep.Children()[0].Major())
	assert.Equal(t, report.MinorParameterError, rep.Children()[0].Minor())
}

func TestDetectFormat(t *testing.T) {
	_, raw := encodedRecord(t)
	assert.Equal(t, FormatASN1, DetectFormat(raw))
	assert.Equal(t, FormatXML, DetectFormat([]byte(`<?xml version="1.0"?><EvidenceRecord/>`)))
	assert.Equal(t, FormatUnknown, DetectFormat([]byte("just some text")))
	assert.Equal(t, FormatUnknown, DetectFormat(nil))
	assert.Equal(t, "asn1", FormatASN1.String())
}
