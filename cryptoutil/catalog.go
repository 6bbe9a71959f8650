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

package cryptoutil

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"go.yaml.in/yaml/v3"
)

// CatalogEntry describes how long an algorithm may be relied upon and which
// construction parameters it requires, such as DSA key and subgroup sizes.
type CatalogEntry struct {
	Name       string            `yaml:"name" json:"name"`
	OIDs       []string          `yaml:"oids" json:"oids"`
	ValidUntil time.Time         `yaml:"validity" json:"validity"`
	Parameters map[string]string `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// AlgorithmCatalog is the read-only table of suitable algorithms. It is safe
// for concurrent use once constructed.
type AlgorithmCatalog struct {
	entries []CatalogEntry
	byOID   map[string]int
}

type ErrDuplicateAlgorithm string

func (e ErrDuplicateAlgorithm) Error() string {
	return fmt.Sprintf("algorithm %v is listed more than once in the catalog", string(e))
}

// NewAlgorithmCatalog builds a catalog from entries. Every entry needs at least one OID
// and an OID may only appear once.
func NewAlgorithmCatalog(entries ...CatalogEntry) (*AlgorithmCatalog, error) {
	c := &AlgorithmCatalog{
		entries: make([]CatalogEntry, 0, len(entries)),
		byOID:   make(map[string]int),
	}

	for _, e := range entries {
		if len(e.OIDs) == 0 {
			return nil, fmt.Errorf("catalog entry %q has no oids", e.Name)
		}

		if e.ValidUntil.IsZero() {
			return nil, fmt.Errorf("catalog entry %q has no validity", e.Name)
		}

		for _, oid := range e.OIDs {
			if _, ok := c.byOID[oid]; ok {
				return nil, ErrDuplicateAlgorithm(oid)
			}

			c.byOID[oid] = len(c.entries)
		}

		c.entries = append(c.entries, e)
	}

	return c, nil
}

var defaultCatalogEntries = []CatalogEntry{
	{Name: "RIPEMD-160", OIDs: []string{OIDRIPEMD160}, ValidUntil: endOfYear(2010)},
	{Name: "SHA-1", OIDs: []string{OIDSHA1}, ValidUntil: endOfYear(2015)},
	{Name: "SHA-224", OIDs: []string{OIDSHA224}, ValidUntil: endOfYear(2025)},
	{Name: "SHA-256", OIDs: []string{OIDSHA256}, ValidUntil: endOfYear(2031)},
	{Name: "SHA-384", OIDs: []string{OIDSHA384}, ValidUntil: endOfYear(2031)},
	{Name: "SHA-512", OIDs: []string{OIDSHA512}, ValidUntil: endOfYear(2031)},
	{Name: "SHA3-256", OIDs: []string{OIDSHA3_256}, ValidUntil: endOfYear(2031)},
	{Name: "SHA3-384", OIDs: []string{OIDSHA3_384}, ValidUntil: endOfYear(2031)},
	{Name: "SHA3-512", OIDs: []string{OIDSHA3_512}, ValidUntil: endOfYear(2031)},
}

func endOfYear(year int) time.Time {
	return time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
}

// DefaultAlgorithmCatalog returns the built in catalog of digest algorithms.
func DefaultAlgorithmCatalog() *AlgorithmCatalog {
	c, err := NewAlgorithmCatalog(defaultCatalogEntries...)
	if err != nil {
		panic(err)
	}

	return c
}

type catalogFile struct {
	Algorithms []CatalogEntry `yaml:"algorithms"`
}

// LoadAlgorithmCatalog reads a YAML catalog of the form
//
//	algorithms:
//	  - name: SHA-256
//	    oids: [2.16.840.1.101.3.4.2.1]
//	    validity: 2031-12-31T23:59:59Z
func LoadAlgorithmCatalog(r io.Reader) (*AlgorithmCatalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("algorithm catalog is empty")
		}

		return nil, fmt.Errorf("could not parse algorithm catalog: %w", err)
	}

	return NewAlgorithmCatalog(f.Algorithms...)
}

// Lookup returns the entry registered for oid.
func (c *AlgorithmCatalog) Lookup(oid string) (CatalogEntry, bool) {
	i, ok := c.byOID[oid]
	if !ok {
		return CatalogEntry{}, false
	}

	return c.entries[i], true
}

// IsSuitable is true iff oid is registered and asOf is on or before its validity end.
func (c *AlgorithmCatalog) IsSuitable(oid string, asOf time.Time) bool {
	e, ok := c.Lookup(oid)
	if !ok {
		return false
	}

	return !asOf.After(e.ValidUntil)
}

// Entries returns a copy of all catalog entries.
func (c *AlgorithmCatalog) Entries() []CatalogEntry {
	return slices.Clone(c.entries)
}
