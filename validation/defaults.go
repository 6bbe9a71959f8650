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

// DefaultRegistry returns the validators for RFC 4998 evidence records.
// Profiles that verify tokens online get their own token validator.
func DefaultRegistry() *Registry {
	r := NewRegistry(DefaultTypeTree())
	general := []Registration{
		{Name: "evidence record", Target: TypeEvidenceRecord, Report: ReportEvidenceRecord, Factory: func() Validator { return recordValidator{} }},
		{Name: "archive timestamp sequence", Target: TypeSequence, Report: ReportSequence, Factory: func() Validator { return sequenceValidator{} }},
		{Name: "archive timestamp chain", Target: TypeChain, Report: ReportChain, Factory: func() Validator { return chainValidator{} }},
		{Name: "archive timestamp", Target: TypeArchiveTimeStamp, Report: ReportArchiveTimeStamp, Factory: func() Validator { return archiveTimeStampValidator{} }},
		{Name: "timestamp token", Target: TypeTimeStampToken, Report: ReportTimeStamp, Factory: func() Validator { return tokenValidator{} }},
		{Name: "algorithm usage", Target: TypeAlgorithmUsage, Report: ReportAlgorithm, Factory: func() Validator { return algorithmUsageValidator{} }},
	}

	for _, reg := range general {
		reg.Context = ContextEvidenceRecord
		r.Register("", reg)
	}

	r.Register(ProfileTRESOR, Registration{
		Name:    "online timestamp token",
		Target:  TypeTimeStampToken,
		Context: ContextEvidenceRecord,
		Report:  ReportTimeStamp,
		Factory: func() Validator { return onlineTokenValidator{} },
	})

	return r
}
