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

package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type policy struct {
	limit  int
	name   string
	tags   []string
	strict bool
	ttl    time.Duration
}

func testRegistry() Registry[*policy] {
	r := New[*policy]()
	r.Register("b", func() *policy { return &policy{} })
	r.Register("a", func() *policy { return &policy{} },
		IntConfigOption("limit", "maximum", 3, func(p *policy, v int) (*policy, error) { p.limit = v; return p, nil }),
		StringConfigOption("name", "display name", "alpha", func(p *policy, v string) (*policy, error) { p.name = v; return p, nil }),
		StringSliceConfigOption("tags", "tags", []string{"x"}, func(p *policy, v []string) (*policy, error) { p.tags = v; return p, nil }),
		BoolConfigOption("strict", "strict mode", false, func(p *policy, v bool) (*policy, error) { p.strict = v; return p, nil }),
		DurationConfigOption("ttl", "cache ttl", time.Minute, func(p *policy, v time.Duration) (*policy, error) { p.ttl = v; return p, nil }),
	)

	return r
}

func TestNewEntity(t *testing.T) {
	r := testRegistry()

	p, err := r.NewEntity("a")
	require.NoError(t, err)
	assert.Equal(t, &policy{limit: 3, name: "alpha", tags: []string{"x"}, ttl: time.Minute}, p)

	second, err := r.NewEntity("a")
	require.NoError(t, err)
	assert.NotSame(t, p, second)

	_, err = r.NewEntity("missing")
	assert.Error(t, err)

	entry, ok := r.Entry("a")
	require.True(t, ok)
	require.Len(t, entry.Options, 5)
	assert.Equal(t, "limit", entry.Options[0].Name())
	assert.Equal(t, "maximum", entry.Options[0].Description())
}

func TestNamesAndResolve(t *testing.T) {
	r := testRegistry()
	r.Register("TR-ESOR", func() *policy { return &policy{} })
	r.Register("tr-esor", func() *policy { return &policy{} })

	assert.Equal(t, []string{"TR-ESOR", "a", "b", "tr-esor"}, r.Names())

	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{key: "a", want: "a", ok: true},
		{key: "A", want: "a", ok: true},
		{key: "tr-esor", want: "tr-esor", ok: true},
		{key: "Tr-Esor", want: "TR-ESOR", ok: true},
		{key: "c"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			name, ok := r.Resolve(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestOptionForOtherEntityType(t *testing.T) {
	r := New[*policy]()
	r.Register("mismatch", func() *policy { return &policy{} },
		BoolConfigOption("strict", "strict mode", true, func(s *struct{}, _ bool) (*struct{}, error) { return s, nil }),
	)

	_, err := r.NewEntity("mismatch")
	assert.Error(t, err)
}

func TestSetterErrors(t *testing.T) {
	r := New[*policy]()
	r.Register("failing", func() *policy { return &policy{} },
		IntConfigOption("limit", "maximum", 1, func(p *policy, v int) (*policy, error) {
			if v < 0 {
				return p, assert.AnError
			}
			p.limit = v
			return p, nil
		}),
	)

	_, err := r.NewEntityFromConfigMap("failing", map[string]any{"limit": -1})
	assert.ErrorIs(t, err, assert.AnError)

	p, err := r.NewEntityFromConfigMap("failing", map[string]any{"limit": 4})
	require.NoError(t, err)
	assert.Equal(t, 4, p.limit)
}

func TestNewEntityFromConfigMap(t *testing.T) {
	r := testRegistry()

	p, err := r.NewEntityFromConfigMap("a", map[string]any{
		"limit":   "7",
		"tags":    []interface{}{"one", "two"},
		"strict":  "true",
		"ttl":     "30s",
		"unknown": 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, p.limit)
	assert.Equal(t, "alpha", p.name)
	assert.Equal(t, []string{"one", "two"}, p.tags)
	assert.True(t, p.strict)
	assert.Equal(t, 30*time.Second, p.ttl)

	_, err = r.NewEntityFromConfigMap("a", map[string]any{"strict": "perhaps"})
	assert.Error(t, err)

	_, err = r.NewEntityFromConfigMap("missing", nil)
	assert.Error(t, err)
}
