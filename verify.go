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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/in-toto/go-ers/report"
	"github.com/in-toto/go-ers/validation"
)

type verifyOptions struct {
	name             string
	profile          string
	protected        []validation.ProtectedElement
	schedulerOptions []Option
}

type VerifyOption func(*verifyOptions)

// VerifyWithName sets the name the record is reported under.
func VerifyWithName(name string) VerifyOption {
	return func(vo *verifyOptions) {
		vo.name = name
	}
}

func VerifyWithProfile(profile string) VerifyOption {
	return func(vo *verifyOptions) {
		vo.profile = profile
	}
}

// VerifyWithProtectedData adds a data object the evidence record must cover.
func VerifyWithProtectedData(name string, data []byte) VerifyOption {
	return func(vo *verifyOptions) {
		vo.protected = append(vo.protected, validation.ProtectedElement{Ref: report.NewReference(name), Data: data})
	}
}

// VerifyWithSchedulerOptions forwards the provided options to the Scheduler that Verify creates.
func VerifyWithSchedulerOptions(opts ...Option) VerifyOption {
	return func(vo *verifyOptions) {
		vo.schedulerOptions = append(vo.schedulerOptions, opts...)
	}
}

// Verify reads a single evidence record from r and validates it. Only a
// failure to read r is returned as an error; everything else is part of the
// returned report.
func Verify(ctx context.Context, r io.Reader, opts ...VerifyOption) (*report.ReportPart, error) {
	vo := &verifyOptions{}
	for _, opt := range opts {
		opt(vo)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence record: %w", err)
	}

	scheduler := NewScheduler(vo.schedulerOptions...)
	return scheduler.Validate(ctx, []Request{{
		Name:          vo.name,
		Profile:       vo.profile,
		Data:          data,
		ProtectedData: vo.protected,
	}}), nil
}

// LoadProtectedData reads the files at paths. Each element is named after the
// base name of its file.
func LoadProtectedData(paths ...string) ([]validation.ProtectedElement, error) {
	elems := make([]validation.ProtectedElement, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read protected data: %w", err)
		}

		elems = append(elems, validation.ProtectedElement{Ref: report.NewReference(filepath.Base(path)), Data: data})
	}

	return elems, nil
}
