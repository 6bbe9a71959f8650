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
	"context"
	"fmt"
	"strconv"

	"github.com/in-toto/go-ers/cryptoutil"
	"github.com/in-toto/go-ers/evidence"
	"github.com/in-toto/go-ers/report"
)

type chainValidator struct{}

func (chainValidator) Validate(ctx context.Context, vctx *Context, ref *report.Reference, target Target) *report.ReportPart {
	t, ok := target.(ChainTarget)
	if !ok {
		return wrongTarget(ref, target)
	}

	rep := report.New(ref)
	if len(t.Chain) == 0 {
		return rep
	}

	oid, err := chainDigestOID(vctx, t)
	if err != nil {
		rep.UpdateCodes(report.Invalid, report.MinorInvalidFormat, report.PriorityMostImportant, err.Error(), ref.Child("0").Child("tsp"))
		return rep
	}

	if !cryptoutil.IsSupported(oid) {
		rep.UpdateCodes(report.Indeterminate, report.MinorParameterError, report.PriorityMostImportant, "unsupported digest oid: "+oid, ref)
		return rep
	}

	var digests DigestsToCover
	if t.PrevChainToken == nil {
		required, err := vctx.RequiredDigests(oid)
		if err != nil {
			rep.UpdateCodes(report.Indeterminate, report.MinorParameterError, report.PriorityMostImportant, "unsupported digest oid: "+oid, ref)
			return rep
		}

		digests = DigestsToCover{Digests: required, CheckForAdditionalHashes: vctx.CheckForAdditionalHashes}
	} else {
		d, err := cryptoutil.Digest(t.PrevChainToken, oid)
		if err != nil {
			rep.UpdateCodes(report.Indeterminate, report.MinorParameterError, report.PriorityMostImportant, "unsupported digest oid: "+oid, ref)
			return rep
		}

		digests = DigestsToCover{Digests: []CoveredDigest{{Ref: report.NewReference("last TSP of previous chain"), Digest: d}}}
	}

	if len(digests.Digests) == 0 {
		rep.UpdateCodes(report.Indeterminate, report.MinorParameterError, report.PriorityMostImportant, "no protected data to check", ref)
	}

	for j := range t.Chain {
		node := &t.Chain[j]
		nodeTarget := NodeTarget{
			Node:           node,
			ID:             evidence.NodeID{Chain: t.Index, Index: j},
			Digests:        digests,
			ChainDigestOID: oid,
		}

		rep.Merge(vctx.Call(ctx, ref.Child(strconv.Itoa(j)), nodeTarget, ReportArchiveTimeStamp))

		// oid is supported, so digesting cannot fail
		d, _ := cryptoutil.Digest(node.TimeStamp, oid)
		digests = DigestsToCover{Digests: []CoveredDigest{{Ref: report.NewReference("prev TSP of chain"), Digest: d}}}
	}

	return rep
}

// chainDigestOID is the imprint algorithm of the chain's first token, or the
// declared algorithm of its first node when the token cannot be read.
func chainDigestOID(vctx *Context, t ChainTarget) (string, error) {
	first := &t.Chain[0]
	tok, err := vctx.Token(evidence.NodeID{Chain: t.Index, Index: 0}, first.TimeStamp)
	if err == nil {
		return tok.HashAlgorithm, nil
	}

	if oid := first.DigestOID(); oid != "" {
		return oid, nil
	}

	return "", fmt.Errorf("timestamp token cannot be parsed: %w", err)
}
