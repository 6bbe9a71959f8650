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
	"fmt"
)

// TypeTag names a validation target, context or report type. Validators are
// registered against tags instead of Go types so that the dispatch table can
// express specialization explicitly.
type TypeTag string

const (
	TypeObject           TypeTag = "Object"
	TypeEvidenceRecord   TypeTag = "EvidenceRecord"
	TypeSequence         TypeTag = "ArchiveTimeStampSequence"
	TypeChain            TypeTag = "ArchiveTimeStampChain"
	TypeArchiveTimeStamp TypeTag = "ArchiveTimeStamp"
	TypeTimeStampToken   TypeTag = "TimeStampToken"
	TypeAlgorithmUsage   TypeTag = "AlgorithmUsage"

	ContextValidation     TypeTag = "ValidationContext"
	ContextEvidenceRecord TypeTag = "ErValidationContext"

	ReportPart             TypeTag = "ReportPart"
	ReportEvidenceRecord   TypeTag = "EvidenceRecordReport"
	ReportSequence         TypeTag = "ATSSequenceReport"
	ReportChain            TypeTag = "ATSChainReport"
	ReportArchiveTimeStamp TypeTag = "ArchiveTimeStampReport"
	ReportTimeStamp        TypeTag = "TimeStampReport"
	ReportAlgorithm        TypeTag = "AlgorithmValidityReport"
)

type ErrCyclicType struct {
	Sub, Super TypeTag
}

func (e ErrCyclicType) Error() string {
	return fmt.Sprintf("declaring %v as subtype of %v creates a cycle", e.Sub, e.Super)
}

// TypeTree records single inheritance between tags.
type TypeTree struct {
	parents map[TypeTag]TypeTag
}

func NewTypeTree() *TypeTree {
	return &TypeTree{parents: make(map[TypeTag]TypeTag)}
}

// DefaultTypeTree knows the target, context and report types of evidence
// record validation.
func DefaultTypeTree() *TypeTree {
	t := NewTypeTree()
	for _, target := range []TypeTag{TypeEvidenceRecord, TypeSequence, TypeChain, TypeArchiveTimeStamp, TypeTimeStampToken, TypeAlgorithmUsage} {
		_ = t.Extend(target, TypeObject)
	}

	_ = t.Extend(ContextEvidenceRecord, ContextValidation)
	for _, rep := range []TypeTag{ReportEvidenceRecord, ReportSequence, ReportChain, ReportArchiveTimeStamp, ReportTimeStamp, ReportAlgorithm} {
		_ = t.Extend(rep, ReportPart)
	}

	return t
}

// Extend declares sub a direct subtype of super, replacing any earlier parent.
func (t *TypeTree) Extend(sub, super TypeTag) error {
	if _, ok := t.Distance(sub, super); ok {
		return ErrCyclicType{Sub: sub, Super: super}
	}

	t.parents[sub] = super
	return nil
}

// Distance returns the number of inheritance steps from sub up to super.
func (t *TypeTree) Distance(super, sub TypeTag) (int, bool) {
	steps := 0
	for cur := sub; ; steps++ {
		if cur == super {
			return steps, true
		}

		parent, ok := t.parents[cur]
		if !ok {
			return 0, false
		}

		cur = parent
	}
}

// AssignableFrom reports whether a value of type sub may be used where super
// is expected.
func (t *TypeTree) AssignableFrom(super, sub TypeTag) bool {
	_, ok := t.Distance(super, sub)
	return ok
}
