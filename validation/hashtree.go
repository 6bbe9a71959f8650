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
	"bytes"
	"slices"

	"github.com/in-toto/go-ers/cryptoutil"
	"github.com/in-toto/go-ers/evidence"
	"github.com/in-toto/go-ers/report"
)

// TreeForm selects how the groups of a reduced hash tree are combined. The
// zero value is the RFC 4998 form.
type TreeForm struct {
	// Set drops repeated members of a group, so a previous group hash that is
	// already listed in the next group counts once.
	Set bool
	// HashSingle hashes a group with one member instead of passing it on.
	HashSingle bool
}

// treeForms is the order in which MatchRoot tries the forms.
var treeForms = []TreeForm{{}, {Set: true}, {HashSingle: true}, {Set: true, HashSingle: true}}

func (f TreeForm) String() string {
	switch {
	case f.Set && f.HashSingle:
		return "set, single groups hashed"
	case f.Set:
		return "set"
	case f.HashSingle:
		return "single groups hashed"
	default:
		return "standard"
	}
}

// RootMatch describes how a reduced hash tree reproduced a timestamp imprint.
type RootMatch struct {
	Ordering HashSortingMode
	Form     TreeForm
}

// ComputeRoot folds a reduced hash tree into its root hash. The hash of each
// group is appended to the next group before that one is hashed. Unless form
// says otherwise a group with a single value passes the value on unchanged.
// With sorted set the members of a group are ordered by byte value before
// concatenation.
func ComputeRoot(tree evidence.ReducedHashtree, oid string, sorted bool, form TreeForm) ([]byte, error) {
	var prev []byte
	for _, partial := range tree {
		group := make([][]byte, 0, len(partial)+1)
		group = append(group, partial...)
		if prev != nil {
			group = append(group, prev)
		}

		if form.Set {
			group = dedupHashes(group)
		}

		switch {
		case len(group) == 0:
			continue
		case len(group) == 1 && !form.HashSingle:
			prev = group[0]
			continue
		}

		if sorted {
			slices.SortFunc(group, bytes.Compare)
		}

		d, err := cryptoutil.Digest(cryptoutil.Concat(group...), oid)
		if err != nil {
			return nil, err
		}

		prev = d
	}

	return prev, nil
}

// MatchRoot reports whether the root of tree equals imprint under mode and
// which ordering and form produced the match. BOTH tries SORTED first. The
// standard form is tried before the lenient ones for every ordering.
func MatchRoot(tree evidence.ReducedHashtree, oid string, mode HashSortingMode, imprint []byte) (RootMatch, bool, error) {
	orders := []HashSortingMode{mode}
	if mode == Both {
		orders = []HashSortingMode{Sorted, Unsorted}
	}

	for _, form := range treeForms {
		for _, order := range orders {
			root, err := ComputeRoot(tree, oid, order == Sorted, form)
			if err != nil {
				return RootMatch{Ordering: mode}, false, err
			}

			if bytes.Equal(root, imprint) {
				return RootMatch{Ordering: order, Form: form}, true, nil
			}
		}
	}

	return RootMatch{Ordering: mode}, false, nil
}

// dedupHashes keeps the first occurrence of every hash in group.
func dedupHashes(group [][]byte) [][]byte {
	out := group[:0:0]
	for _, g := range group {
		if !containsHash(out, g) {
			out = append(out, g)
		}
	}

	return out
}

// missingDigests returns the references of wanted digests absent from covered.
func missingDigests(want []CoveredDigest, covered [][]byte) []*report.Reference {
	var missing []*report.Reference
	for _, w := range want {
		if !containsHash(covered, w.Digest) {
			missing = append(missing, w.Ref)
		}
	}

	return missing
}

// additionalHashes returns the members of covered that no wanted digest
// accounts for.
func additionalHashes(want []CoveredDigest, covered [][]byte) [][]byte {
	wanted := make([][]byte, 0, len(want))
	for _, w := range want {
		wanted = append(wanted, w.Digest)
	}

	var extra [][]byte
	for _, c := range covered {
		if !containsHash(wanted, c) {
			extra = append(extra, c)
		}
	}

	return extra
}

func containsHash(hashes [][]byte, h []byte) bool {
	return slices.ContainsFunc(hashes, func(x []byte) bool {
		return bytes.Equal(x, h)
	})
}
