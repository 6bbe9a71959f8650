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
	"time"

	"github.com/in-toto/go-ers/cryptoutil"
	"github.com/in-toto/go-ers/evidence"
	"github.com/in-toto/go-ers/report"
	"github.com/in-toto/go-ers/timestamp"
)

// ProtectedElement is a piece of data an evidence record is expected to
// protect.
type ProtectedElement struct {
	Ref  *report.Reference
	Data []byte
}

type parsedToken struct {
	token *timestamp.Token
	err   error
}

// Context carries the state of one evidence record validation. A Context must
// not be shared between concurrent validations.
type Context struct {
	Reference     *report.Reference
	Record        *evidence.EvidenceRecord
	Profile       *Profile
	Catalog       *cryptoutil.AlgorithmCatalog
	Registry      *Registry
	TokenVerifier timestamp.TokenVerifier
	FormatOk      *report.FormatOk
	// CheckForAdditionalHashes applies to the first node of the first chain.
	CheckForAdditionalHashes bool

	now          time.Time
	protected    []ProtectedElement
	declaredOIDs map[string]struct{}
	latestUsage  map[string]time.Time
	securedBy    map[evidence.NodeID]time.Time
	tokens       map[evidence.NodeID]parsedToken
}

type ContextOption func(*Context)

func WithCatalog(catalog *cryptoutil.AlgorithmCatalog) ContextOption {
	return func(c *Context) {
		c.Catalog = catalog
	}
}

func WithRegistry(r *Registry) ContextOption {
	return func(c *Context) {
		c.Registry = r
	}
}

func WithTokenVerifier(v timestamp.TokenVerifier) ContextOption {
	return func(c *Context) {
		c.TokenVerifier = v
	}
}

// WithClock fixes the time used for the last node of a record and for
// algorithms without recorded usage.
func WithClock(now func() time.Time) ContextOption {
	return func(c *Context) {
		c.now = now()
	}
}

func WithProtectedData(elements ...ProtectedElement) ContextOption {
	return func(c *Context) {
		c.protected = append(c.protected, elements...)
	}
}

func WithAdditionalHashCheck(check bool) ContextOption {
	return func(c *Context) {
		c.CheckForAdditionalHashes = check
	}
}

func NewContext(ref *report.Reference, record *evidence.EvidenceRecord, profile *Profile, opts ...ContextOption) *Context {
	if profile == nil {
		profile = rfc4998Profile()
	}

	c := &Context{
		Reference:                ref,
		Record:                   record,
		Profile:                  profile,
		FormatOk:                 report.NewFormatOk(ref),
		CheckForAdditionalHashes: true,
		now:                      time.Now(),
		declaredOIDs:             make(map[string]struct{}),
		latestUsage:              make(map[string]time.Time),
		securedBy:                make(map[evidence.NodeID]time.Time),
		tokens:                   make(map[evidence.NodeID]parsedToken),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.Catalog == nil {
		c.Catalog = cryptoutil.DefaultAlgorithmCatalog()
	}

	if c.Registry == nil {
		c.Registry = DefaultRegistry()
	}

	return c
}

func (c *Context) Type() TypeTag {
	return ContextEvidenceRecord
}

func (c *Context) Now() time.Time {
	return c.now
}

func (c *Context) ProtectedElements() []ProtectedElement {
	return c.protected
}

// RequiredDigests hashes every protected element with oid.
func (c *Context) RequiredDigests(oid string) ([]CoveredDigest, error) {
	digests := make([]CoveredDigest, 0, len(c.protected))
	for _, elem := range c.protected {
		d, err := cryptoutil.Digest(elem.Data, oid)
		if err != nil {
			return nil, err
		}

		digests = append(digests, CoveredDigest{Ref: elem.Ref, Digest: d})
	}

	return digests, nil
}

func (c *Context) SetDeclaredDigestOIDs(oids []string) {
	c.declaredOIDs = make(map[string]struct{}, len(oids))
	for _, oid := range oids {
		c.declaredOIDs[oid] = struct{}{}
	}
}

func (c *Context) IsAlgorithmDeclared(oid string) bool {
	_, ok := c.declaredOIDs[oid]
	return ok
}

// SetPossibleAlgorithmUsage records that oid was relied upon until at. The
// earliest date per algorithm is kept.
func (c *Context) SetPossibleAlgorithmUsage(oid string, at time.Time) {
	if cur, ok := c.latestUsage[oid]; !ok || at.Before(cur) {
		c.latestUsage[oid] = at
	}
}

// LatestPossibleUsage returns the date oid has to be suitable at, defaulting
// to now.
func (c *Context) LatestPossibleUsage(oid string) time.Time {
	if at, ok := c.latestUsage[oid]; ok {
		return at
	}

	return c.now
}

func (c *Context) SetSecuredDate(id evidence.NodeID, at time.Time) {
	c.securedBy[id] = at
}

// SecuredDate returns when the node at id was secured by its successor,
// defaulting to now.
func (c *Context) SecuredDate(id evidence.NodeID) time.Time {
	if at, ok := c.securedBy[id]; ok {
		return at
	}

	return c.now
}

// Token parses the timestamp of the node at id once and remembers the outcome.
func (c *Context) Token(id evidence.NodeID, raw []byte) (*timestamp.Token, error) {
	if p, ok := c.tokens[id]; ok {
		return p.token, p.err
	}

	tok, err := timestamp.ParseToken(raw)
	c.tokens[id] = parsedToken{token: tok, err: err}
	return tok, err
}

// Call dispatches target to the validator registered for it under the
// context's profile.
func (c *Context) Call(ctx context.Context, ref *report.Reference, target Target, reportType TypeTag) *report.ReportPart {
	v, err := c.Registry.Lookup(c.Profile.Name, target.TypeTag(), c.Type(), reportType)
	if err != nil {
		return report.ForNoValidator(ref, err)
	}

	return v.Validate(ctx, c, ref, target)
}
