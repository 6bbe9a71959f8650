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
	"strconv"

	"github.com/in-toto/go-ers/evidence"
	"github.com/in-toto/go-ers/log"
	"github.com/in-toto/go-ers/report"
)

type sequenceValidator struct{}

func (sequenceValidator) Validate(ctx context.Context, vctx *Context, ref *report.Reference, target Target) *report.ReportPart {
	t, ok := target.(SequenceTarget)
	if !ok {
		return wrongTarget(ref, target)
	}

	rep := report.New(ref)
	if len(t.Sequence) == 0 {
		if vctx.Profile.RequireChain {
			vctx.FormatOk.Invalidate("must contain at least one ArchiveTimeStampChain", ref.Child("number chains"))
		}

		return rep
	}

	setupSecuredDates(vctx, t.Sequence)

	var prevChainToken []byte
	for i, chain := range t.Sequence {
		chainTarget := ChainTarget{Chain: chain, Index: i, PrevChainToken: prevChainToken}
		rep.Merge(vctx.Call(ctx, ref.Child(strconv.Itoa(i)), chainTarget, ReportChain))
		if len(chain) > 0 {
			prevChainToken = chain[len(chain)-1].TimeStamp
		}
	}

	return rep
}

// setupSecuredDates assigns every node the genTime of the node following it
// in the record. The last node is secured by now.
func setupSecuredDates(vctx *Context, seq evidence.ArchiveTimeStampSequence) {
	ids := seq.NodeIDs()
	for i, id := range ids {
		secured := vctx.Now()
		if i+1 < len(ids) {
			next := ids[i+1]
			tok, err := vctx.Token(next, seq.Node(next).TimeStamp)
			if err == nil {
				secured = tok.GenTime
			} else {
				log.Debugf("(validation) cannot read genTime of node %v: %v", next, err)
			}
		}

		vctx.SetSecuredDate(id, secured)
	}
}
