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

import "strings"

// Reference addresses a position in the validated object tree, such as
// "er/atss/0/1/tsp". References are immutable and compared by path.
type Reference struct {
	parent *Reference
	name   string
}

func NewReference(name string) *Reference {
	return &Reference{name: name}
}

// Child returns a new reference one level below r.
func (r *Reference) Child(name string) *Reference {
	return &Reference{parent: r, name: name}
}

func (r *Reference) Name() string {
	return r.name
}

func (r *Reference) Parent() *Reference {
	return r.parent
}

func (r *Reference) String() string {
	if r == nil {
		return ""
	}

	if r.parent == nil {
		return r.name
	}

	return r.parent.String() + "/" + r.name
}

// Equal reports whether r and other denote the same position.
func (r *Reference) Equal(other *Reference) bool {
	for a, b := r, other; ; a, b = a.parent, b.parent {
		if a == nil || b == nil {
			return a == b
		}

		if a == b {
			return true
		}

		if a.name != b.name {
			return false
		}
	}
}

// IsAncestorOf reports whether r is other or one of its ancestors.
func (r *Reference) IsAncestorOf(other *Reference) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if r.Equal(cur) {
			return true
		}
	}

	return false
}

// Relativize returns r's path relative to ancestor. It is empty when both are
// equal and r's full path when ancestor is not an ancestor of r.
func (r *Reference) Relativize(ancestor *Reference) string {
	path := r.String()
	if !ancestor.IsAncestorOf(r) {
		return path
	}

	return strings.TrimPrefix(strings.TrimPrefix(path, ancestor.String()), "/")
}
