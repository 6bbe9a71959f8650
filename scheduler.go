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

package ers

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/in-toto/go-ers/cryptoutil"
	"github.com/in-toto/go-ers/evidence"
	"github.com/in-toto/go-ers/log"
	"github.com/in-toto/go-ers/registry"
	"github.com/in-toto/go-ers/report"
	"github.com/in-toto/go-ers/timestamp"
	"github.com/in-toto/go-ers/validation"
)

// RootReference is the reference of the overall report returned by Validate.
const RootReference = "validation"

// Request is one evidence record to validate together with the data it protects.
type Request struct {
	// Name identifies the record in the report. Defaults to "er<index>".
	Name string
	// Profile selects the validation profile. Defaults to validation.DefaultProfile.
	Profile       string
	Data          []byte
	ProtectedData []validation.ProtectedElement
}

// ErrUnsupportedProfile is returned for a profile name that is not registered.
type ErrUnsupportedProfile string

func (e ErrUnsupportedProfile) Error() string {
	return fmt.Sprintf("unsupported profile: %v", string(e))
}

// Scheduler validates independent evidence records one after the other.
// A Scheduler holds no per-run state and can be reused.
type Scheduler struct {
	profiles            registry.Registry[*validation.Profile]
	profileOptions      map[string]map[string]any
	hashSorting         *validation.HashSortingMode
	registry            *validation.Registry
	catalog             *cryptoutil.AlgorithmCatalog
	tokenVerifier       timestamp.TokenVerifier
	clock               func() time.Time
	additionalHashCheck bool
}

type Option func(*Scheduler)

// WithProfiles replaces the built-in profiles.
func WithProfiles(profiles registry.Registry[*validation.Profile]) Option {
	return func(s *Scheduler) {
		s.profiles = profiles
	}
}

// WithProfileOptions sets option values per profile name, keyed by option
// name as in validation.NewProfiles.
func WithProfileOptions(opts map[string]map[string]any) Option {
	return func(s *Scheduler) {
		s.profileOptions = opts
	}
}

// WithHashSortingMode sets the hash sorting mode of every profile that does
// not configure one itself.
func WithHashSortingMode(mode validation.HashSortingMode) Option {
	return func(s *Scheduler) {
		s.hashSorting = &mode
	}
}

func WithRegistry(r *validation.Registry) Option {
	return func(s *Scheduler) {
		s.registry = r
	}
}

func WithCatalog(catalog *cryptoutil.AlgorithmCatalog) Option {
	return func(s *Scheduler) {
		s.catalog = catalog
	}
}

// WithTokenVerifier configures cryptographic verification of timestamp
// tokens for profiles that perform it.
func WithTokenVerifier(v timestamp.TokenVerifier) Option {
	return func(s *Scheduler) {
		s.tokenVerifier = v
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.clock = now
	}
}

func WithAdditionalHashCheck(check bool) Option {
	return func(s *Scheduler) {
		s.additionalHashCheck = check
	}
}

func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		profiles:            validation.NewProfiles(),
		registry:            validation.DefaultRegistry(),
		catalog:             cryptoutil.DefaultAlgorithmCatalog(),
		clock:               time.Now,
		additionalHashCheck: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Validate validates every request in order and merges the results below a
// report referenced as RootReference. A failing request never stops the
// validation of the others.
func (s *Scheduler) Validate(ctx context.Context, requests []Request) *report.ReportPart {
	root := report.NewReference(RootReference)
	overall := report.New(root)
	for i, req := range requests {
		name := req.Name
		if name == "" {
			name = fmt.Sprintf("er%d", i)
		}

		overall.Merge(s.validate(ctx, root.Child(name), req))
	}

	return overall
}

func (s *Scheduler) validate(ctx context.Context, ref *report.Reference, req Request) *report.ReportPart {
	profileName := req.Profile
	if profileName == "" {
		profileName = validation.DefaultProfile
	}

	profile, err := s.Profile(profileName)
	if err != nil {
		if _, ok := err.(ErrUnsupportedProfile); ok {
			return report.ForNoProfile(ref, profileName)
		}

		p := report.New(ref)
		p.UpdateCodes(report.Indeterminate, report.MinorParameterError, report.PriorityMostImportant, err.Error(), ref)
		return p
	}

	if DetectFormat(req.Data) == FormatXML {
		p := report.New(ref)
		p.UpdateCodes(report.Indeterminate, report.MinorNotSupported, report.PriorityMostImportant, "XML evidence records are not supported", ref)
		return p
	}

	er, err := evidence.Decode(req.Data)
	if err != nil {
		log.Debugf("(ers) %v cannot be decoded: %v", ref, err)
		return report.ForUnparsable(ref, "evidence record", err)
	}

	log.Debugf("(ers) validating %v with profile %v, %d chains", ref, profile.Name, len(er.Sequence))
	vctx := validation.NewContext(ref, er, profile,
		validation.WithCatalog(s.catalog),
		validation.WithRegistry(s.registry),
		validation.WithTokenVerifier(s.tokenVerifier),
		validation.WithClock(s.clock),
		validation.WithProtectedData(req.ProtectedData...),
		validation.WithAdditionalHashCheck(s.additionalHashCheck),
	)

	return vctx.Call(ctx, ref, validation.RecordTarget{Record: er}, validation.ReportEvidenceRecord)
}

// Profile returns a new instance of the named profile with the configured
// options applied.
func (s *Scheduler) Profile(name string) (*validation.Profile, error) {
	if _, ok := s.profiles.Entry(name); !ok {
		return nil, ErrUnsupportedProfile(name)
	}

	config := make(map[string]any)
	if s.hashSorting != nil {
		config["hash-sorting-mode"] = s.hashSorting.String()
	}

	maps.Copy(config, s.profileOptions[name])
	profile, err := s.profiles.NewEntityFromConfigMap(name, config)
	if err != nil {
		return nil, fmt.Errorf("failed to configure profile %v: %w", name, err)
	}

	return profile, nil
}
