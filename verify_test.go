// Copyright 2021 The Witness Contributors
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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/in-toto/go-ers/report"
	"github.com/in-toto/go-ers/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}

func TestVerify(t *testing.T) {
	_, raw := encodedRecord(t)

	t.Run("covered document", func(t *testing.T) {
		rep, err := Verify(context.Background(), bytes.NewReader(raw),
			VerifyWithName("record"),
			VerifyWithProtectedData("doc", doc),
			VerifyWithSchedulerOptions(WithClock(fixedClock)),
		)
		require.NoError(t, err)
		assert.Equal(t, report.Indeterminate, rep.Major())
		require.Len(t, rep.Children(), 1)
		assert.Equal(t, "validation/record", rep.Children()[0].Reference().String())
	})

	t.Run("document not covered", func(t *testing.T) {
		rep, err := Verify(context.Background(), bytes.NewReader(raw),
			VerifyWithProtectedData("doc", []byte("tampered")),
			VerifyWithSchedulerOptions(WithClock(fixedClock)),
		)
		require.NoError(t, err)
		assert.Equal(t, report.Invalid, rep.Major())
		assert.Equal(t, report.MinorHashValueMismatch, rep.Minor())
	})

	t.Run("basis-ers profile", func(t *testing.T) {
		rep, err := Verify(context.Background(), bytes.NewReader(raw),
			VerifyWithProfile(validation.ProfileBasisERS),
			VerifyWithProtectedData("doc", doc),
			VerifyWithSchedulerOptions(WithClock(fixedClock)),
		)
		require.NoError(t, err)
		assert.Equal(t, report.Invalid, rep.Major())
		assert.Contains(t, rep.SummarizedMessage(), "CRLs must be filled")
	})

	t.Run("read error", func(t *testing.T) {
		_, err := Verify(context.Background(), failingReader{})
		assert.Error(t, err)
	})
}

func TestLoadProtectedData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contract.pdf")
	require.NoError(t, os.WriteFile(path, doc, 0o600))

	elems, err := LoadProtectedData(path)
	require.NoError(t, err)
	require.Len(t, elems, 1)
	assert.Equal(t, "contract.pdf", elems[0].Ref.String())
	assert.Equal(t, doc, elems[0].Data)

	_, err = LoadProtectedData(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
