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

// Package erstest builds genuine evidence records for tests. Timestamps are
// issued by an in-process TSA so that every token parses and verifies.
package erstest

import (
	"bytes"
	"encoding/asn1"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/in-toto/go-ers/cryptoutil"
	"github.com/in-toto/go-ers/evidence"
	"github.com/in-toto/go-ers/timestamp"
	"github.com/stretchr/testify/require"
)

// Builder creates nodes whose hash trees are computed with OID.
type Builder struct {
	T      testing.TB
	OID    string
	TSA    *timestamp.FakeTimestamper
	Sorted bool
}

func New(t testing.TB, oid string) *Builder {
	t.Helper()
	tsa, err := timestamp.NewFakeTimestamper(time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return &Builder{T: t, OID: oid, TSA: tsa}
}

// WithOID returns a builder sharing the TSA that hashes with oid.
func (b *Builder) WithOID(oid string) *Builder {
	c := *b
	c.OID = oid
	return &c
}

func (b *Builder) Digest(data []byte) []byte {
	b.T.Helper()
	d, err := cryptoutil.Digest(data, b.OID)
	require.NoError(b.T, err)
	return d
}

// Root folds tree the way RFC 4998 describes: each group hash is appended to
// the next group, single member groups are passed on as they are.
func (b *Builder) Root(tree evidence.ReducedHashtree) []byte {
	b.T.Helper()
	var prev []byte
	for _, partial := range tree {
		group := slices.Clone([][]byte(partial))
		if prev != nil {
			group = append(group, prev)
		}

		if len(group) == 1 {
			prev = group[0]
			continue
		}

		if b.Sorted {
			slices.SortFunc(group, bytes.Compare)
		}

		prev = b.Digest(bytes.Join(group, nil))
	}

	return prev
}

// Token issues a timestamp over imprint at genTime.
func (b *Builder) Token(imprint []byte, genTime time.Time) []byte {
	b.T.Helper()
	h, err := cryptoutil.HashFromOID(b.OID)
	require.NoError(b.T, err)

	b.TSA.T = genTime
	token, err := b.TSA.TimestampDigest(h, imprint)
	require.NoError(b.T, err)
	return token
}

// Node creates an ArchiveTimeStamp whose token covers the root of tree.
func (b *Builder) Node(tree evidence.ReducedHashtree, genTime time.Time) evidence.ArchiveTimeStamp {
	b.T.Helper()
	return evidence.ArchiveTimeStamp{
		ReducedHashtree: tree,
		TimeStamp:       b.Token(b.Root(tree), genTime),
	}
}

// Renew creates the node that renews the timestamp of prev. Its leaf group
// holds the digest of prev's token and the optional siblings.
func (b *Builder) Renew(prev evidence.ArchiveTimeStamp, genTime time.Time, siblings ...[]byte) evidence.ArchiveTimeStamp {
	b.T.Helper()
	leaf := evidence.PartialHashtree{b.Digest(prev.TimeStamp)}
	leaf = append(leaf, siblings...)
	return b.Node(evidence.ReducedHashtree{leaf}, genTime)
}

// Leaves returns the digests of data as one leaf group.
func (b *Builder) Leaves(data ...[]byte) evidence.PartialHashtree {
	b.T.Helper()
	group := make(evidence.PartialHashtree, 0, len(data))
	for _, d := range data {
		group = append(group, b.Digest(d))
	}

	return group
}

// Record wraps chains into a version 1 record declaring oids.
func Record(oids []string, chains ...evidence.ArchiveTimeStampChain) *evidence.EvidenceRecord {
	er := &evidence.EvidenceRecord{Version: 1, Sequence: evidence.ArchiveTimeStampSequence{}}
	for _, oid := range oids {
		er.DigestAlgorithms = append(er.DigestAlgorithms, evidence.AlgorithmIdentifier{OID: OID(oid)})
	}

	er.Sequence = append(er.Sequence, chains...)
	return er
}

// Encode marshals er and fails the test on error.
func Encode(t testing.TB, er *evidence.EvidenceRecord) []byte {
	t.Helper()
	der, err := er.MarshalBinary()
	require.NoError(t, err)
	return der
}

// OID converts a dotted object identifier.
func OID(dotted string) asn1.ObjectIdentifier {
	parts := strings.Split(dotted, ".")
	oid := make(asn1.ObjectIdentifier, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil
		}

		oid = append(oid, n)
	}

	return oid
}
