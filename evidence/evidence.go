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

// Package evidence models RFC 4998 Evidence Records and converts them from
// and to their DER encoding.
package evidence

import (
	"encoding/asn1"
	"fmt"
)

// EvidenceRecord is the decoded root structure. Values returned by Decode
// must be treated as immutable.
type EvidenceRecord struct {
	Version          int
	DigestAlgorithms []AlgorithmIdentifier
	CryptoInfo       *Attributes
	EncryptionInfo   *EncryptionInfo
	Sequence         ArchiveTimeStampSequence
}

// ArchiveTimeStampSequence is the list of chains. Chain i+1 renews the hash
// algorithm of chain i.
type ArchiveTimeStampSequence []ArchiveTimeStampChain

// ArchiveTimeStampChain is a non-empty list of nodes where node j+1 renews the
// timestamp of node j.
type ArchiveTimeStampChain []ArchiveTimeStamp

// ArchiveTimeStamp binds a reduced hash tree to a timestamp token.
type ArchiveTimeStamp struct {
	DigestAlgorithm *AlgorithmIdentifier
	Attributes      *Attributes
	// ReducedHashtree is nil when the element is absent. A present but empty
	// tree is a non-nil empty slice.
	ReducedHashtree ReducedHashtree
	// TimeStamp is the DER encoded ContentInfo of the RFC 3161 token.
	TimeStamp []byte

	digestForm algorithmForm
}

// ReducedHashtree holds the proof material of a node, leaf group first.
type ReducedHashtree []PartialHashtree

// PartialHashtree is one group of sibling hash values.
type PartialHashtree [][]byte

type AlgorithmIdentifier struct {
	OID asn1.ObjectIdentifier
	// Parameters is the raw DER of the parameters element, nil if absent.
	Parameters []byte
}

func (a AlgorithmIdentifier) String() string {
	return a.OID.String()
}

// Attributes is a sequence of attributes. It serves both as CryptoInfo and as
// the attributes of an ArchiveTimeStamp.
type Attributes struct {
	Items []Attribute

	single bool
}

type Attribute struct {
	Type asn1.ObjectIdentifier
	// Values is the raw DER of the attribute values SET.
	Values []byte
}

// EncryptionInfo is parsed for presence checks only.
type EncryptionInfo struct {
	Type asn1.ObjectIdentifier
	// Value is the raw DER of encryptionInfoValue.
	Value []byte
}

// algorithmForm records how the digestAlgorithm of an ArchiveTimeStamp was
// encoded so that it can be written back unchanged.
type algorithmForm int

const (
	formImplicit algorithmForm = iota
	formBareOID
	formExplicit
)

// NodeID addresses an ArchiveTimeStamp by chain and position within the chain.
type NodeID struct {
	Chain int
	Index int
}

func (n NodeID) String() string {
	return fmt.Sprintf("%d/%d", n.Chain, n.Index)
}

// DigestOID returns the dotted OID of the node's declared digest algorithm or
// an empty string when it relies on the chain's algorithm.
func (a *ArchiveTimeStamp) DigestOID() string {
	if a.DigestAlgorithm == nil {
		return ""
	}

	return a.DigestAlgorithm.OID.String()
}

// Node returns the ArchiveTimeStamp at id, or nil when id is out of range.
func (s ArchiveTimeStampSequence) Node(id NodeID) *ArchiveTimeStamp {
	if id.Chain < 0 || id.Chain >= len(s) || id.Index < 0 || id.Index >= len(s[id.Chain]) {
		return nil
	}

	return &s[id.Chain][id.Index]
}

// NodeIDs lists every node in record order: chain by chain, node by node.
func (s ArchiveTimeStampSequence) NodeIDs() []NodeID {
	ids := make([]NodeID, 0)
	for i, chain := range s {
		for j := range chain {
			ids = append(ids, NodeID{Chain: i, Index: j})
		}
	}

	return ids
}

// DeclaredDigestOIDs returns the dotted OIDs listed in digestAlgorithms.
func (er *EvidenceRecord) DeclaredDigestOIDs() []string {
	oids := make([]string, 0, len(er.DigestAlgorithms))
	for _, alg := range er.DigestAlgorithms {
		oids = append(oids, alg.OID.String())
	}

	return oids
}
