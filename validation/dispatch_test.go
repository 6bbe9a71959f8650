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
	"errors"
	"testing"

	"github.com/in-toto/go-ers/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	typeS TypeTag = "S"
	typeT TypeTag = "T"
	typeU TypeTag = "U"
)

func namedValidator(name string) Factory {
	return func() Validator {
		return ValidatorFunc(func(_ context.Context, _ *Context, ref *report.Reference, _ Target) *report.ReportPart {
			p := report.New(ref)
			p.SetDetail("validator", name)
			return p
		})
	}
}

func validatorName(t *testing.T, v Validator) string {
	t.Helper()
	p := v.Validate(context.Background(), nil, report.NewReference("x"), nil)
	name, ok := p.Detail("validator")
	require.True(t, ok)
	return name
}

func testTypeTree(t *testing.T) *TypeTree {
	types := DefaultTypeTree()
	require.NoError(t, types.Extend(typeS, TypeObject))
	require.NoError(t, types.Extend(typeT, typeS))
	require.NoError(t, types.Extend(typeU, typeT))
	return types
}

func TestTypeTree(t *testing.T) {
	types := testTypeTree(t)

	d, ok := types.Distance(typeS, typeU)
	require.True(t, ok)
	assert.Equal(t, 2, d)

	d, ok = types.Distance(typeT, typeT)
	require.True(t, ok)
	assert.Equal(t, 0, d)

	_, ok = types.Distance(typeU, typeS)
	assert.False(t, ok)

	assert.True(t, types.AssignableFrom(TypeObject, typeU))
	assert.True(t, types.AssignableFrom(ReportPart, ReportChain))
	assert.False(t, types.AssignableFrom(ReportChain, ReportPart))
	assert.True(t, types.AssignableFrom(ContextValidation, ContextEvidenceRecord))

	err := types.Extend(typeS, typeU)
	var cyclic ErrCyclicType
	require.True(t, errors.As(err, &cyclic))
	assert.Equal(t, typeS, cyclic.Sub)
	assert.Error(t, types.Extend(typeS, typeS))
}

func TestLookup(t *testing.T) {
	r := NewRegistry(testTypeTree(t))
	r.Register("", Registration{Name: "general S", Target: typeS, Context: ContextValidation, Report: ReportPart, Factory: namedValidator("general S")})
	r.Register("P", Registration{Name: "P T", Target: typeT, Context: ContextValidation, Report: ReportPart, Factory: namedValidator("P T")})

	t.Run("profile pool wins", func(t *testing.T) {
		v, err := r.Lookup("P", typeT, ContextEvidenceRecord, ReportPart)
		require.NoError(t, err)
		assert.Equal(t, "P T", validatorName(t, v))
	})

	t.Run("subtype served by profile pool", func(t *testing.T) {
		v, err := r.Lookup("P", typeU, ContextEvidenceRecord, ReportPart)
		require.NoError(t, err)
		assert.Equal(t, "P T", validatorName(t, v))
	})

	t.Run("other profile falls back to general pool", func(t *testing.T) {
		v, err := r.Lookup("Q", typeT, ContextEvidenceRecord, ReportPart)
		require.NoError(t, err)
		assert.Equal(t, "general S", validatorName(t, v))
	})

	t.Run("profile pool without match falls back", func(t *testing.T) {
		v, err := r.Lookup("P", typeS, ContextEvidenceRecord, ReportPart)
		require.NoError(t, err)
		assert.Equal(t, "general S", validatorName(t, v))
	})

	t.Run("no validator", func(t *testing.T) {
		_, err := r.Lookup("P", TypeEvidenceRecord, ContextEvidenceRecord, ReportPart)
		var noValidator ErrNoValidatorAvailable
		require.True(t, errors.As(err, &noValidator))
		assert.Equal(t, TypeEvidenceRecord, noValidator.Target)
		assert.Equal(t, "P", noValidator.Profile)
	})

	t.Run("context must be assignable", func(t *testing.T) {
		_, err := r.Lookup("Q", typeT, TypeObject, ReportPart)
		assert.Error(t, err)
	})
}

func TestLookupReportTypes(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("", Registration{Name: "chain", Target: TypeChain, Context: ContextEvidenceRecord, Report: ReportChain, Factory: namedValidator("chain")})

	_, err := r.Lookup("", TypeChain, ContextEvidenceRecord, ReportPart)
	assert.NoError(t, err)

	_, err = r.Lookup("", TypeChain, ContextEvidenceRecord, ReportSequence)
	assert.Error(t, err)

	_, err = r.Lookup("", TypeChain, ContextValidation, ReportChain)
	assert.Error(t, err)
}

func TestLookupTieGoesToFirst(t *testing.T) {
	r := NewRegistry(testTypeTree(t))
	r.Register("", Registration{Name: "first", Target: typeS, Context: ContextValidation, Report: ReportPart, Factory: namedValidator("first")})
	r.Register("", Registration{Name: "second", Target: typeS, Context: ContextValidation, Report: ReportPart, Factory: namedValidator("second")})
	r.Register("", Registration{Name: "object", Target: TypeObject, Context: ContextValidation, Report: ReportPart, Factory: namedValidator("object")})

	v, err := r.Lookup("", typeU, ContextEvidenceRecord, ReportPart)
	require.NoError(t, err)
	assert.Equal(t, "first", validatorName(t, v))

	v, err = r.Lookup("", TypeChain, ContextEvidenceRecord, ReportPart)
	require.NoError(t, err)
	assert.Equal(t, "object", validatorName(t, v))
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	for _, target := range []TypeTag{TypeEvidenceRecord, TypeSequence, TypeChain, TypeArchiveTimeStamp, TypeTimeStampToken, TypeAlgorithmUsage} {
		_, err := r.Lookup(DefaultProfile, target, ContextEvidenceRecord, ReportPart)
		assert.NoError(t, err, target)
	}

	general, err := r.Lookup(DefaultProfile, TypeTimeStampToken, ContextEvidenceRecord, ReportTimeStamp)
	require.NoError(t, err)
	assert.IsType(t, tokenValidator{}, general)

	online, err := r.Lookup(ProfileTRESOR, TypeTimeStampToken, ContextEvidenceRecord, ReportTimeStamp)
	require.NoError(t, err)
	assert.IsType(t, onlineTokenValidator{}, online)
}
