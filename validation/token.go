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
	"time"

	"github.com/in-toto/go-ers/log"
	"github.com/in-toto/go-ers/report"
	"github.com/in-toto/go-ers/timestamp"
)

// tokenValidator does not verify the token cryptographically. It reports
// INDETERMINATE and, where the profile asks for it, checks the CMS envelope.
type tokenValidator struct{}

func (tokenValidator) Validate(_ context.Context, vctx *Context, ref *report.Reference, target Target) *report.ReportPart {
	t, ok := target.(TokenTarget)
	if !ok {
		return wrongTarget(ref, target)
	}

	if vctx.Profile.CheckTokenLayout {
		checkTokenLayout(vctx.FormatOk, ref, t.Raw)
	}

	rep := report.New(ref)
	rep.UpdateCodes(report.Indeterminate, "", report.PriorityNormal, "no online validation of time stamp done", ref)
	return rep
}

// onlineTokenValidator verifies signature and signer chain with the
// context's token verifier.
type onlineTokenValidator struct {
	offline tokenValidator
}

func (v onlineTokenValidator) Validate(ctx context.Context, vctx *Context, ref *report.Reference, target Target) *report.ReportPart {
	t, ok := target.(TokenTarget)
	if !ok {
		return wrongTarget(ref, target)
	}

	if vctx.TokenVerifier == nil {
		log.Debugf("(validation) no token verifier configured, skipping online validation of %v", ref)
		return v.offline.Validate(ctx, vctx, ref, target)
	}

	if vctx.Profile.CheckTokenLayout {
		checkTokenLayout(vctx.FormatOk, ref, t.Raw)
	}

	rep := report.New(ref)
	genTime, err := vctx.TokenVerifier.VerifyToken(ctx, t.Raw)
	if err != nil {
		rep.UpdateCodes(report.Invalid, report.MinorInvalidSignature, report.PriorityMostImportant, "time stamp verification failed: "+err.Error(), ref)
		return rep
	}

	rep.SetDetail("genTime", genTime.UTC().Format(time.RFC3339))
	return rep
}

func checkTokenLayout(formatOk *report.FormatOk, ref *report.Reference, raw []byte) {
	l, err := timestamp.ParseLayout(raw)
	if err != nil {
		formatOk.Invalidate("time stamp is not a valid ContentInfo", ref)
		return
	}

	if !l.ContentType.Equal(timestamp.OIDSignedData) {
		formatOk.Invalidate(fmt.Sprintf("contentType OID of time stamp is not %v", timestamp.OIDSignedData), ref.Child("contentType"))
		return
	}

	content := ref.Child("content")
	if l.Version != 3 {
		formatOk.Invalidate("version must be 3", content.Child("version"))
	}

	if l.DigestAlgorithms == 0 {
		formatOk.Invalidate("digestAlgorithms must be filled", content.Child("digestAlgorithms"))
	}

	if !l.EContentType.Equal(timestamp.OIDTSTInfo) {
		formatOk.Invalidate(fmt.Sprintf("content-type must be %v", timestamp.OIDTSTInfo), content.Child("encapContentInfo").Child("eContentType"))
	}

	if !l.Certificates {
		formatOk.Invalidate("certificates must be filled", content.Child("certificates"))
	}

	if !l.CRLs {
		formatOk.Invalidate("CRLs must be filled", content.Child("crls"))
	}

	signerInfos := content.Child("signerInfos")
	if len(l.SignerInfos) != 1 {
		formatOk.Invalidate("signerInfos must contain exactly one element", signerInfos)
		return
	}

	si := l.SignerInfos[0]
	siRef := signerInfos.Child("signerInfo")
	if si.Version != 1 {
		formatOk.Invalidate("version must be 1", siRef.Child("version"))
	}

	if si.UnsignedAttrs {
		formatOk.Invalidate("unsignedAttrs must be omitted", siRef.Child("unsignedAttrs"))
	}
}
