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

package ers

import (
	"github.com/gabriel-vasile/mimetype"
	"github.com/in-toto/go-ers/evidence"
)

type Format int

const (
	FormatUnknown Format = iota
	FormatASN1
	FormatXML
)

func (f Format) String() string {
	switch f {
	case FormatASN1:
		return "asn1"
	case FormatXML:
		return "xml"
	default:
		return "unknown"
	}
}

// DetectFormat guesses the encoding of an evidence record from its leading bytes.
func DetectFormat(data []byte) Format {
	if evidence.Sniff(data) {
		return FormatASN1
	}

	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/xml") {
			return FormatXML
		}
	}

	return FormatUnknown
}
