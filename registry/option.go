// Copyright 2023 The Witness Contributors
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
	"fmt"
	"time"

	"github.com/spf13/cast"
)

type Option interface {
	int | string | []string | bool | time.Duration
}

// Configurer is the type independent view of a ConfigOption.
type Configurer interface {
	Name() string
	Description() string
}

type configurable[T any] interface {
	Configurer
	applyDefault(T) (T, error)
	apply(T, any) (T, error)
}

// ConfigOption describes one option of an entity of type T.
type ConfigOption[T any, TOption Option] struct {
	name        string
	description string
	defaultVal  TOption
	setter      func(T, TOption) (T, error)
}

func (co *ConfigOption[T, TOption]) Name() string {
	return co.name
}

func (co *ConfigOption[T, TOption]) Description() string {
	return co.description
}

func (co *ConfigOption[T, TOption]) applyDefault(entity T) (T, error) {
	return co.setter(entity, co.defaultVal)
}

func (co *ConfigOption[T, TOption]) apply(entity T, value any) (T, error) {
	v, err := convert[TOption](value)
	if err != nil {
		return entity, fmt.Errorf("expected a %T but got %T: %w", v, value, err)
	}

	return co.setter(entity, v)
}

// convert turns a loosely typed configuration value into TOption.
func convert[TOption Option](value any) (TOption, error) {
	var out TOption
	var err error
	switch p := any(&out).(type) {
	case *int:
		*p, err = cast.ToIntE(value)
	case *string:
		*p, err = cast.ToStringE(value)
	case *[]string:
		*p, err = cast.ToStringSliceE(value)
	case *bool:
		*p, err = cast.ToBoolE(value)
	case *time.Duration:
		*p, err = cast.ToDurationE(value)
	}

	return out, err
}

func IntConfigOption[T any](name, description string, defaultVal int, setter func(T, int) (T, error)) *ConfigOption[T, int] {
	return &ConfigOption[T, int]{name: name, description: description, defaultVal: defaultVal, setter: setter}
}

func StringConfigOption[T any](name, description string, defaultVal string, setter func(T, string) (T, error)) *ConfigOption[T, string] {
	return &ConfigOption[T, string]{name: name, description: description, defaultVal: defaultVal, setter: setter}
}

func StringSliceConfigOption[T any](name, description string, defaultVal []string, setter func(T, []string) (T, error)) *ConfigOption[T, []string] {
	return &ConfigOption[T, []string]{name: name, description: description, defaultVal: defaultVal, setter: setter}
}

func BoolConfigOption[T any](name, description string, defaultVal bool, setter func(T, bool) (T, error)) *ConfigOption[T, bool] {
	return &ConfigOption[T, bool]{name: name, description: description, defaultVal: defaultVal, setter: setter}
}

func DurationConfigOption[T any](name, description string, defaultVal time.Duration, setter func(T, time.Duration) (T, error)) *ConfigOption[T, time.Duration] {
	return &ConfigOption[T, time.Duration]{name: name, description: description, defaultVal: defaultVal, setter: setter}
}
