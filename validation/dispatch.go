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
	"fmt"
	"sync"

	"github.com/in-toto/go-ers/log"
	"github.com/in-toto/go-ers/report"
)

// Target is anything a validator can check.
type Target interface {
	TypeTag() TypeTag
}

// Validator checks one target and reports its findings. Implementations
// never return nil.
type Validator interface {
	Validate(ctx context.Context, vctx *Context, ref *report.Reference, target Target) *report.ReportPart
}

type ValidatorFunc func(ctx context.Context, vctx *Context, ref *report.Reference, target Target) *report.ReportPart

func (f ValidatorFunc) Validate(ctx context.Context, vctx *Context, ref *report.Reference, target Target) *report.ReportPart {
	return f(ctx, vctx, ref, target)
}

type Factory func() Validator

// Registration binds a validator factory to the types it handles.
type Registration struct {
	Name    string
	Target  TypeTag
	Context TypeTag
	Report  TypeTag
	Factory Factory
}

type ErrNoValidatorAvailable struct {
	Profile string
	Target  TypeTag
	Context TypeTag
	Report  TypeTag
}

func (e ErrNoValidatorAvailable) Error() string {
	return fmt.Sprintf("no validator available for target %v, context %v, report %v in profile %q", e.Target, e.Context, e.Report, e.Profile)
}

// Registry holds a general pool of validators and one pool per profile.
// Registration is expected to happen before validation starts; lookups are
// safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	types    *TypeTree
	general  []Registration
	profiles map[string][]Registration
}

func NewRegistry(types *TypeTree) *Registry {
	if types == nil {
		types = DefaultTypeTree()
	}

	return &Registry{
		types:    types,
		profiles: make(map[string][]Registration),
	}
}

func (r *Registry) Types() *TypeTree {
	return r.types
}

// Register adds reg to the pool of profile, or to the general pool when
// profile is empty.
func (r *Registry) Register(profile string, reg Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile == "" {
		r.general = append(r.general, reg)
		return
	}

	r.profiles[profile] = append(r.profiles[profile], reg)
}

// Lookup returns a new validator for target under profile. The profile pool is
// searched first and the general pool second. Within a pool the candidate
// whose target type is closest to the requested one wins; on a tie the one
// registered first is used.
func (r *Registry) Lookup(profile string, target, vctx, rep TypeTag) (Validator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pools := []struct {
		name string
		regs []Registration
	}{
		{profile, r.profiles[profile]},
		{"", r.general},
	}

	for _, pool := range pools {
		if reg, ok := r.best(pool.regs, target, vctx, rep); ok {
			log.Debugf("(validation) using validator %q from pool %q for %v", reg.Name, pool.name, target)
			return reg.Factory(), nil
		}
	}

	return nil, ErrNoValidatorAvailable{Profile: profile, Target: target, Context: vctx, Report: rep}
}

func (r *Registry) best(regs []Registration, target, vctx, rep TypeTag) (Registration, bool) {
	var found Registration
	bestDistance := -1
	for _, reg := range regs {
		distance, ok := r.types.Distance(reg.Target, target)
		if !ok || !r.types.AssignableFrom(reg.Context, vctx) || !r.types.AssignableFrom(rep, reg.Report) {
			continue
		}

		if bestDistance < 0 || distance < bestDistance {
			found, bestDistance = reg, distance
		}
	}

	return found, bestDistance >= 0
}
