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

package validation

import (
	"time"

	"github.com/in-toto/go-ers/evidence"
	"github.com/in-toto/go-ers/report"
)

type RecordTarget struct {
	Record *evidence.EvidenceRecord
}

func (RecordTarget) TypeTag() TypeTag { return TypeEvidenceRecord }

type SequenceTarget struct {
	Sequence evidence.ArchiveTimeStampSequence
}

func (SequenceTarget) TypeTag() TypeTag { return TypeSequence }

type ChainTarget struct {
	Chain evidence.ArchiveTimeStampChain
	// Index is the position of the chain in its sequence.
	Index int
	// PrevChainToken is the timestamp of the last node of the previous chain,
	// nil for the first chain.
	PrevChainToken []byte
}

func (ChainTarget) TypeTag() TypeTag { return TypeChain }

// CoveredDigest is a hash value a node must cover, labelled with the element
// it was computed from.
type CoveredDigest struct {
	Ref    *report.Reference
	Digest []byte
}

// DigestsToCover lists the hash values a node's leaf group must contain.
type DigestsToCover struct {
	Digests []CoveredDigest
	// CheckForAdditionalHashes rejects leaf group members that are not in
	// Digests.
	CheckForAdditionalHashes bool
}

type NodeTarget struct {
	Node *evidence.ArchiveTimeStamp
	ID   evidence.NodeID
	// Digests must appear in the node's leaf group.
	Digests DigestsToCover
	// ChainDigestOID is the digest algorithm every node of the chain must use.
	ChainDigestOID string
}

func (NodeTarget) TypeTag() TypeTag { return TypeArchiveTimeStamp }

type TokenTarget struct {
	Raw []byte
	ID  evidence.NodeID
}

func (TokenTarget) TypeTag() TypeTag { return TypeTimeStampToken }

// AlgorithmUsageTarget asks whether OID may be relied upon at At.
type AlgorithmUsageTarget struct {
	OID string
	At  time.Time
}

func (AlgorithmUsageTarget) TypeTag() TypeTag { return TypeAlgorithmUsage }
