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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMajorOnlyWorsens(t *testing.T) {
	majors := []Major{Valid, Indeterminate, Invalid}
	for _, first := range majors {
		for _, second := range majors {
			p := New(NewReference("er"))
			p.UpdateCodes(first, "", PriorityNormal, "", nil)
			p.UpdateCodes(second, "", PriorityNormal, "", nil)
			assert.Equal(t, Worse(first, second), p.Major())
			assert.GreaterOrEqual(t, p.Major(), first)
		}
	}
}

func TestMinorReplacement(t *testing.T) {
	ref := NewReference("er")

	t.Run("major worsens", func(t *testing.T) {
		p := New(ref)
		p.UpdateCodes(Indeterminate, MinorParameterError, PriorityMostImportant, "a", ref)
		p.UpdateCodes(Invalid, MinorInvalidFormat, PriorityNone, "b", ref)
		assert.Equal(t, Invalid, p.Major())
		assert.Equal(t, MinorInvalidFormat, p.Minor())
	})

	t.Run("same major higher priority", func(t *testing.T) {
		p := New(ref)
		p.UpdateCodes(Invalid, MinorInvalidFormat, PriorityImportant, "", ref)
		p.UpdateCodes(Invalid, MinorHashValueMismatch, PriorityMostImportant, "", ref)
		assert.Equal(t, MinorHashValueMismatch, p.Minor())
		assert.Equal(t, PriorityMostImportant, p.Priority())
	})

	t.Run("same major equal priority keeps newest", func(t *testing.T) {
		p := New(ref)
		p.UpdateCodes(Invalid, MinorInvalidFormat, PriorityImportant, "", ref)
		p.UpdateCodes(Invalid, MinorHashValueMismatch, PriorityImportant, "", ref)
		assert.Equal(t, MinorHashValueMismatch, p.Minor())
	})

	t.Run("same major lower priority", func(t *testing.T) {
		p := New(ref)
		p.UpdateCodes(Invalid, MinorHashValueMismatch, PriorityMostImportant, "", ref)
		p.UpdateCodes(Invalid, MinorInvalidFormat, PriorityNormal, "", ref)
		assert.Equal(t, MinorHashValueMismatch, p.Minor())
	})

	t.Run("better major is ignored", func(t *testing.T) {
		p := New(ref)
		p.UpdateCodes(Invalid, MinorHashValueMismatch, PriorityNormal, "", ref)
		p.UpdateCodes(Indeterminate, MinorParameterError, PriorityMostImportant, "", ref)
		assert.Equal(t, Invalid, p.Major())
		assert.Equal(t, MinorHashValueMismatch, p.Minor())
	})
}

func TestMessages(t *testing.T) {
	root := NewReference("er")
	p := New(root)
	p.UpdateCodes(Valid, "", PriorityNormal, "ignored", root)
	p.UpdateCodes(Invalid, MinorInvalidFormat, PriorityNormal, "first", root)
	p.UpdateCodes(Invalid, MinorInvalidFormat, PriorityNormal, "second", root)
	p.UpdateCodes(Invalid, MinorInvalidFormat, PriorityNormal, "deep", root.Child("atss").Child("0"))
	p.UpdateCodes(Invalid, MinorInvalidFormat, PriorityNormal, "version", root.Child("version"))

	assert.Equal(t, "first, second", p.Message())
	assert.Equal(t, "first, second\natss/0: deep\nversion: version", p.SummarizedMessage())
}

func TestMerge(t *testing.T) {
	root := NewReference("er")
	seq := root.Child("atss")
	chain := seq.Child("0")

	chainPart := New(chain)
	chainPart.UpdateCodes(Invalid, MinorHashValueMismatch, PriorityMostImportant, "bad root", chain.Child("0").Child("hashTree"))
	chainPart.SetDetail("hashOrdering", "sorted")

	seqPart := New(seq)
	seqPart.Merge(chainPart)

	erPart := New(root)
	erPart.Merge(seqPart)

	assert.Equal(t, Invalid, erPart.Major())
	assert.Equal(t, MinorHashValueMismatch, erPart.Minor())
	assert.Equal(t, "atss/0/0/hashTree: bad root", erPart.SummarizedMessage())
	require.Len(t, erPart.Children(), 1)
	assert.Same(t, seqPart, erPart.Children()[0])

	t.Run("same reference folds in", func(t *testing.T) {
		fo := NewFormatOk(root)
		fo.Invalidate("must be omitted", root.Child("cryptoInfo"))
		fo.Invalidate("broken", root)

		p := New(root)
		p.Merge(fo.ReportPart)
		assert.Empty(t, p.Children())
		assert.Equal(t, Invalid, p.Major())
		assert.Equal(t, MinorInvalidFormat, p.Minor())
		assert.Equal(t, "broken\ncryptoInfo: must be omitted", p.SummarizedMessage())
	})

	t.Run("nil child", func(t *testing.T) {
		p := New(root)
		p.Merge(nil)
		assert.Equal(t, Valid, p.Major())
	})
}

func TestConstructors(t *testing.T) {
	ref := NewReference("request")

	p := ForNoProfile(ref, "unknown")
	assert.Equal(t, Indeterminate, p.Major())
	assert.Equal(t, MinorParameterError, p.Minor())
	assert.Equal(t, "unsupported profile: unknown", p.Message())

	p = ForNoValidator(ref, errors.New("no validator for x"))
	assert.Equal(t, MinorInternalError, p.Minor())
	assert.Equal(t, "no validator for x", p.Message())

	p = ForUnparsable(ref, "evidence record", errors.New("eof"))
	assert.Equal(t, Invalid, p.Major())
	assert.Equal(t, MinorInvalidFormat, p.Minor())
	assert.Equal(t, "evidence record cannot be parsed: eof", p.Message())
}

func TestReference(t *testing.T) {
	root := NewReference("er")
	node := root.Child("atss").Child("0").Child("1")

	assert.Equal(t, "er/atss/0/1", node.String())
	assert.True(t, node.Equal(NewReference("er").Child("atss").Child("0").Child("1")))
	assert.False(t, node.Equal(root))
	assert.True(t, root.IsAncestorOf(node))
	assert.True(t, node.IsAncestorOf(node))
	assert.False(t, node.IsAncestorOf(root))
	assert.Equal(t, "atss/0/1", node.Relativize(root))
	assert.Equal(t, "", node.Relativize(node))
	assert.Equal(t, "er", root.Relativize(node))
}

func TestSummaryJSON(t *testing.T) {
	root := NewReference("er")
	p := New(root)
	child := New(root.Child("atss"))
	child.UpdateCodes(Indeterminate, MinorNotSupported, PriorityNormal, "no online validation", root.Child("atss"))
	p.Merge(child)

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var s Summary
	require.NoError(t, json.Unmarshal(b, &s))
	assert.Equal(t, MajorIndeterminateURI, s.Major)
	require.Len(t, s.Children, 1)
	assert.Equal(t, "er/atss", s.Children[0].Reference)
	assert.Equal(t, "no online validation", s.Children[0].Message)
}
