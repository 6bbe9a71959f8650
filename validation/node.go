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
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/in-toto/go-ers/log"
	"github.com/in-toto/go-ers/report"
	"github.com/in-toto/go-ers/timestamp"
)

type archiveTimeStampValidator struct{}

func (archiveTimeStampValidator) Validate(ctx context.Context, vctx *Context, ref *report.Reference, target Target) *report.ReportPart {
	t, ok := target.(NodeTarget)
	if !ok || t.Node == nil {
		return wrongTarget(ref, target)
	}

	rep := report.New(ref)
	node := t.Node

	if node.Attributes != nil && !vctx.Profile.AllowAttributes {
		vctx.FormatOk.Invalidate("attributes must be omitted", ref.Child("attributes"))
	}

	tok, err := vctx.Token(t.ID, node.TimeStamp)
	if err != nil {
		vctx.FormatOk.Invalidate("timestamp token cannot be parsed: "+err.Error(), ref.Child("tsp"))
		return rep
	}

	secured := vctx.SecuredDate(t.ID)
	if !tok.GenTime.Before(secured) {
		vctx.FormatOk.Invalidate("The time of ArchiveTimeStamp is before the time of the previous ArchiveTimeStamp!", ref)
	}

	hashOID := checkDigestAlgorithm(ctx, vctx, rep, t, tok, secured)
	checkHashTree(vctx, rep, t, tok, hashOID)
	rep.Merge(vctx.Call(ctx, ref.Child("tsp"), TokenTarget{Raw: node.TimeStamp, ID: t.ID}, ReportTimeStamp))
	return rep
}

func invalidFormat(p *report.ReportPart, ref *report.Reference, msg string) {
	p.UpdateCodes(report.Invalid, report.MinorInvalidFormat, report.PriorityImportant, msg, ref)
}

// checkDigestAlgorithm verifies that the node uses one declared algorithm
// consistently and that the algorithm was suitable when the node was secured.
// It returns the algorithm the hash tree is computed with.
func checkDigestAlgorithm(ctx context.Context, vctx *Context, rep *report.ReportPart, t NodeTarget, tok *timestamp.Token, secured time.Time) string {
	ref := rep.Reference()
	oidFromToken := tok.HashAlgorithm
	hashOID := oidFromToken
	vctx.SetPossibleAlgorithmUsage(oidFromToken, secured)

	oidRef := ref.Child("tsp.messageImprintAlgOid")
	if t.Node.DigestAlgorithm != nil {
		oidRef = ref.Child("attributeDigestAlgorithm")
		hashOID = t.Node.DigestOID()
		if hashOID != oidFromToken {
			invalidFormat(rep, ref, "Algorithm attribute of ATS does not match the digest algorithm used in the TSP")
		}
	}

	if !vctx.IsAlgorithmDeclared(oidFromToken) {
		invalidFormat(rep, ref, "Digest algorithm not declared in evidence record/algorithms")
	}

	if t.ChainDigestOID != "" && t.ChainDigestOID != oidFromToken {
		invalidFormat(rep, ref, "Digest algorithm does not match digest of previous ATs in same chain")
	}

	rep.Merge(vctx.Call(ctx, oidRef, AlgorithmUsageTarget{OID: hashOID, At: secured}, ReportAlgorithm))
	return hashOID
}

// checkHashTree verifies that the required digests are covered by the leaf
// group, or by the imprint itself when the node has no tree, and that the
// tree folds into the imprint.
func checkHashTree(vctx *Context, rep *report.ReportPart, t NodeTarget, tok *timestamp.Token, hashOID string) {
	ref := rep.Reference()
	tree := t.Node.ReducedHashtree

	covered := [][]byte{tok.HashedMessage}
	if len(tree) > 0 {
		covered = tree[0]
	}

	if missing := missingDigests(t.Digests.Digests, covered); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, m := range missing {
			names = append(names, m.String())
		}

		rep.UpdateCodes(report.Invalid, report.MinorHashValueMismatch, report.PriorityMostImportant,
			"Missing digest(s) for: ["+strings.Join(names, ", ")+"]", ref.Child("protectedElements"))
	}

	if t.Digests.CheckForAdditionalHashes && len(t.Digests.Digests) > 0 && len(tree) > 0 {
		if extra := additionalHashes(t.Digests.Digests, covered); len(extra) > 0 {
			encoded := make([]string, 0, len(extra))
			for _, e := range extra {
				encoded = append(encoded, hex.EncodeToString(e))
			}

			rep.UpdateCodes(report.Invalid, report.MinorHashValueMismatch, report.PriorityImportant,
				fmt.Sprintf("additional protected hash values found. Additional hashes:[%s]", strings.Join(encoded, ", ")), ref.Child("protectedElements"))
		}
	}

	if len(tree) == 0 {
		return
	}

	mode := vctx.Profile.HashSorting
	match, matched, err := MatchRoot(tree, hashOID, mode, tok.HashedMessage)
	switch {
	case err != nil:
		rep.UpdateCodes(report.Indeterminate, report.MinorParameterError, report.PriorityMostImportant, "unsupported digest oid: "+hashOID, ref.Child("hashTree"))
		return
	case !matched:
		rep.UpdateCodes(report.Invalid, report.MinorHashValueMismatch, report.PriorityMostImportant, "hash tree root hash does not match timestamp", ref.Child("hashTree"))
		return
	}

	if mode == Both {
		log.Debugf("(validation) hash tree of %v matched with %v ordering", ref, match.Ordering)
		rep.SetDetail("hashOrdering", strings.ToLower(match.Ordering.String()))
	}

	if match.Form != (TreeForm{}) {
		log.Debugf("(validation) hash tree of %v only matched in %v form", ref, match.Form)
		rep.SetDetail("hashTreeForm", match.Form.String())
	}
}
