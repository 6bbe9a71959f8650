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

// Package report holds the result model of a verification: a three valued
// verdict per position in the evidence record and the rule for merging them.
package report

import (
	"fmt"
)

// Major is the overall verdict. Worse verdicts compare greater.
type Major int

const (
	Valid Major = iota
	Indeterminate
	Invalid
)

const (
	MajorValidURI         = "urn:oasis:names:tc:dss:1.0:detail:valid"
	MajorIndeterminateURI = "urn:oasis:names:tc:dss:1.0:detail:indetermined"
	MajorInvalidURI       = "urn:oasis:names:tc:dss:1.0:detail:invalid"
)

func (m Major) String() string {
	switch m {
	case Valid:
		return "valid"
	case Indeterminate:
		return "indeterminate"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("major(%d)", int(m))
	}
}

// URI returns the OASIS DSS result major URI of m.
func (m Major) URI() string {
	switch m {
	case Valid:
		return MajorValidURI
	case Invalid:
		return MajorInvalidURI
	default:
		return MajorIndeterminateURI
	}
}

// Worse returns the worse of a and b.
func Worse(a, b Major) Major {
	if b > a {
		return b
	}

	return a
}

// Priority decides whether a minor code may replace the one already recorded.
type Priority int

const (
	// PriorityNone never replaces a minor code unless the major code worsens.
	PriorityNone Priority = iota
	PriorityNormal
	PriorityImportant
	PriorityMostImportant
)

// Minor codes used by the engine.
const (
	MinorParameterError            = "http://www.bsi.bund.de/ecard/api/1.1/resultminor/al/common#parameterError"
	MinorInternalError             = "http://www.bsi.bund.de/ecard/api/1.1/resultminor/al/common#internalError"
	MinorInvalidFormat             = "http://www.bsi.bund.de/tr-esor/api/1.3/resultminor/invalidFormat"
	MinorHashValueMismatch         = "http://www.bsi.bund.de/tr-esor/api/1.3/resultminor/hashValueMismatch"
	MinorNotSupported              = "http://www.bsi.bund.de/tr-esor/api/1.3/resultminor/arl/notSupported"
	MinorHashAlgorithmNotSuitable  = "http://www.bsi.bund.de/ecard/api/1.1/resultminor/il/algorithm#hashAlgorithmNotSuitable"
	MinorHashAlgorithmNotSupported = "http://www.bsi.bund.de/ecard/api/1.1/resultminor/il/algorithm#hashAlgorithmNotSupported"
	MinorInvalidSignature          = "http://www.bsi.bund.de/ecard/api/1.1/resultminor/il/signature#invalidSignature"
)
