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

	"github.com/in-toto/go-ers/report"
)

func wrongTarget(ref *report.Reference, target Target) *report.ReportPart {
	p := report.New(ref)
	p.UpdateCodes(report.Indeterminate, report.MinorInternalError, report.PriorityMostImportant, fmt.Sprintf("unexpected validation target %T", target), ref)
	return p
}

type recordValidator struct{}

func (recordValidator) Validate(ctx context.Context, vctx *Context, ref *report.Reference, target Target) *report.ReportPart {
	t, ok := target.(RecordTarget)
	if !ok || t.Record == nil {
		return wrongTarget(ref, target)
	}

	er := t.Record
	profile := vctx.Profile
	rep := report.New(ref)

	if er.Version != profile.RequiredVersion {
		vctx.FormatOk.Invalidate(profile.VersionViolation, ref.Child("version"))
	}

	if er.CryptoInfo != nil && !profile.AllowCryptoInfo {
		vctx.FormatOk.Invalidate("must be omitted", ref.Child("cryptoInfo"))
	}

	if er.EncryptionInfo != nil && !profile.AllowEncryptionInfo {
		vctx.FormatOk.Invalidate("must be omitted", ref.Child("encryptionInfo"))
	}

	declared := er.DeclaredDigestOIDs()
	vctx.SetDeclaredDigestOIDs(declared)
	rep.Merge(vctx.Call(ctx, ref.Child("atss"), SequenceTarget{Sequence: er.Sequence}, ReportSequence))

	for _, oid := range declared {
		usage := AlgorithmUsageTarget{OID: oid, At: vctx.LatestPossibleUsage(oid)}
		rep.Merge(vctx.Call(ctx, ref.Child("digestAlgorithms:"+oid), usage, ReportAlgorithm))
	}

	rep.Merge(vctx.FormatOk.ReportPart)
	return rep
}
