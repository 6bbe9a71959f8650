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

package report

// FormatOk collects structural findings. Every finding makes it INVALID with
// the invalid format minor code.
type FormatOk struct {
	*ReportPart
}

func NewFormatOk(ref *Reference) *FormatOk {
	return &FormatOk{ReportPart: New(ref)}
}

// Invalidate records a format violation at ref.
func (f *FormatOk) Invalidate(message string, ref *Reference) {
	f.UpdateCodes(Invalid, MinorInvalidFormat, PriorityMostImportant, message, ref)
}
