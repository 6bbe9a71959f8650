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

	"github.com/in-toto/go-ers/cryptoutil"
	"github.com/in-toto/go-ers/report"
)

// algorithmUsageValidator checks a digest algorithm against the catalog and
// the profile's allow-list.
type algorithmUsageValidator struct{}

func (algorithmUsageValidator) Validate(_ context.Context, vctx *Context, ref *report.Reference, target Target) *report.ReportPart {
	t, ok := target.(AlgorithmUsageTarget)
	if !ok {
		return wrongTarget(ref, target)
	}

	rep := report.New(ref)
	entry, known := vctx.Catalog.Lookup(t.OID)
	if !known {
		rep.UpdateCodes(report.Invalid, report.MinorHashAlgorithmNotSupported, report.PriorityImportant,
			"unknown hash algorithm: "+t.OID, ref)
		return rep
	}

	if !vctx.Profile.DigestAllowed(t.OID) {
		rep.UpdateCodes(report.Invalid, report.MinorHashAlgorithmNotSuitable, report.PriorityImportant,
			fmt.Sprintf("hash algorithm %v is not allowed in profile %v", cryptoutil.AlgorithmName(t.OID), vctx.Profile.Name), ref)
		return rep
	}

	if !vctx.Catalog.IsSuitable(t.OID, t.At) {
		rep.UpdateCodes(report.Indeterminate, report.MinorHashAlgorithmNotSuitable, report.PriorityImportant,
			fmt.Sprintf("hash algorithm %v is not suitable at %v, valid until %v", entry.Name, t.At.UTC().Format(time.RFC3339), entry.ValidUntil.UTC().Format(time.DateOnly)), ref)
	}

	return rep
}
