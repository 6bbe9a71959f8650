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

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// ReportPart accumulates the findings for one position of the object tree.
// A part is only changed through UpdateCodes, AddMessage and Merge and is
// treated as read only once the validator that created it has returned.
type ReportPart struct {
	ref         *Reference
	major       Major
	minor       string
	priority    Priority
	message     string
	subMessages map[string]*subMessages
	children    []*ReportPart
	details     map[string]string
}

type subMessages struct {
	ref      *Reference
	messages []string
}

// New returns a VALID part for ref.
func New(ref *Reference) *ReportPart {
	return &ReportPart{
		ref:         ref,
		major:       Valid,
		subMessages: make(map[string]*subMessages),
		details:     make(map[string]string),
	}
}

// ForNoProfile reports that the requested profile is unknown.
func ForNoProfile(ref *Reference, profile string) *ReportPart {
	p := New(ref)
	p.UpdateCodes(Indeterminate, MinorParameterError, PriorityMostImportant, "unsupported profile: "+profile, ref)
	return p
}

// ForNoValidator reports that dispatch found no validator.
func ForNoValidator(ref *Reference, err error) *ReportPart {
	msg := "no validator available"
	if err != nil {
		msg = err.Error()
	}

	p := New(ref)
	p.UpdateCodes(Indeterminate, MinorInternalError, PriorityMostImportant, msg, ref)
	return p
}

// ForUnparsable reports an object that could not be decoded.
func ForUnparsable(ref *Reference, what string, err error) *ReportPart {
	msg := what + " cannot be parsed"
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}

	p := New(ref)
	p.UpdateCodes(Invalid, MinorInvalidFormat, PriorityMostImportant, msg, ref)
	return p
}

func (p *ReportPart) Reference() *Reference {
	return p.ref
}

func (p *ReportPart) Major() Major {
	return p.major
}

func (p *ReportPart) Minor() string {
	return p.minor
}

func (p *ReportPart) Priority() Priority {
	return p.priority
}

// Message returns the messages recorded for the part's own reference.
func (p *ReportPart) Message() string {
	return p.message
}

// Children returns the parts merged into p that address other positions.
func (p *ReportPart) Children() []*ReportPart {
	return p.children
}

// SetDetail attaches a named fact to the part, for example which hash
// ordering reproduced a root hash.
func (p *ReportPart) SetDetail(key, value string) {
	p.details[key] = value
}

func (p *ReportPart) Detail(key string) (string, bool) {
	v, ok := p.details[key]
	return v, ok
}

// UpdateCodes records a finding located at subRef.
//
// The major code only ever gets worse. The minor code follows the finding if
// the major code got worse, or if the finding has the same major code and a
// priority at least as high as the recorded one. Messages of VALID findings
// are dropped.
func (p *ReportPart) UpdateCodes(major Major, minor string, priority Priority, message string, subRef *Reference) {
	old := p.major
	p.major = Worse(p.major, major)

	if p.major != old || (major == old && p.notLessImportant(priority)) {
		p.minor = minor
		p.priority = priority
	}

	if message != "" && major != Valid {
		p.AddMessage(message, subRef)
	}
}

func (p *ReportPart) notLessImportant(priority Priority) bool {
	return priority != PriorityNone && (p.priority == PriorityNone || priority >= p.priority)
}

// AddMessage records a message without touching the codes.
func (p *ReportPart) AddMessage(message string, ref *Reference) {
	if ref == nil || ref.Equal(p.ref) {
		if p.message == "" {
			p.message = message
		} else {
			p.message += ", " + message
		}

		return
	}

	p.addSubMessages(ref, message)
}

func (p *ReportPart) addSubMessages(ref *Reference, messages ...string) {
	key := ref.String()
	sm, ok := p.subMessages[key]
	if !ok {
		sm = &subMessages{ref: ref}
		p.subMessages[key] = sm
	}

	sm.messages = append(sm.messages, messages...)
}

// Merge folds child into p. Child messages are kept under the child's
// reference unless it equals p's own.
func (p *ReportPart) Merge(child *ReportPart) {
	if child == nil {
		return
	}

	p.UpdateCodes(child.major, child.minor, child.priority, child.message, child.ref)
	for _, key := range sortedKeys(child.subMessages) {
		sm := child.subMessages[key]
		if sm.ref.Equal(p.ref) {
			for _, m := range sm.messages {
				p.AddMessage(m, p.ref)
			}

			continue
		}

		p.addSubMessages(sm.ref, sm.messages...)
	}

	if !child.ref.Equal(p.ref) {
		p.children = append(p.children, child)
	} else {
		p.children = append(p.children, child.children...)
		for k, v := range child.details {
			p.details[k] = v
		}
	}
}

// SummarizedMessage renders the part's own message followed by one line per
// descendant position, "relative/path: message", sorted by path.
func (p *ReportPart) SummarizedMessage() string {
	b := &strings.Builder{}
	b.WriteString(p.message)

	byRel := make(map[string][]string)
	for _, key := range sortedKeys(p.subMessages) {
		sm := p.subMessages[key]
		rel := sm.ref.Relativize(p.ref)
		byRel[rel] = append(byRel[rel], sm.messages...)
	}

	for _, rel := range sortedKeys(byRel) {
		if b.Len() > 0 {
			b.WriteString("\n")
		}

		if rel != "" {
			b.WriteString(rel)
			b.WriteString(": ")
		}

		b.WriteString(strings.Join(byRel[rel], ", "))
	}

	return b.String()
}

func (p *ReportPart) String() string {
	return fmt.Sprintf("%v {major: %v, minor: %v, summarizedMessage: %v}", p.ref, p.major, p.minor, p.SummarizedMessage())
}

// Summary is the serializable form of a ReportPart tree.
type Summary struct {
	Reference string            `json:"reference" jsonschema:"title=reference,description=Path of the checked element"`
	Major     string            `json:"major" jsonschema:"enum=urn:oasis:names:tc:dss:1.0:detail:valid,enum=urn:oasis:names:tc:dss:1.0:detail:indetermined,enum=urn:oasis:names:tc:dss:1.0:detail:invalid"`
	Minor     string            `json:"minor,omitempty"`
	Message   string            `json:"message,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Children  []Summary         `json:"children,omitempty"`
}

func (p *ReportPart) Summary() Summary {
	s := Summary{
		Reference: p.ref.String(),
		Major:     p.major.URI(),
		Minor:     p.minor,
		Message:   p.message,
	}

	if len(p.details) > 0 {
		s.Details = make(map[string]string, len(p.details))
		for k, v := range p.details {
			s.Details[k] = v
		}
	}

	for _, c := range p.children {
		s.Children = append(s.Children, c.Summary())
	}

	return s
}

func (p *ReportPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Summary())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)
	return keys
}
