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

package evidence

// sniffPrefix is the number of bytes Sniff needs to look at.
const sniffPrefix = 133

// Sniff cheaply checks whether data looks like a DER Evidence Record: an outer
// SEQUENCE whose first element is an INTEGER and whose second is a SEQUENCE.
// It does not decode anything and may accept data that Decode rejects.
func Sniff(data []byte) bool {
	if len(data) < sniffPrefix || data[0] != 0x30 {
		return false
	}

	versionOffset := 2
	if data[1]&0x80 != 0 {
		versionOffset += int(data[1] & 0x7f)
	}

	if versionOffset+3 >= len(data) {
		return false
	}

	return data[versionOffset] == 0x02 && data[versionOffset+3] == 0x30
}
