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
	"maps"
	"slices"
	"strings"

	"github.com/in-toto/go-ers/log"
)

// Registry maps names to factories of configurable entities. go-ers keeps its
// verification profiles in one, so a configuration file can tune any option
// of any profile without the profile knowing about the file format.
type Registry[T any] struct {
	entries map[string]Entry[T]
}

// FactoryFunc creates a fresh instance of an entity.
type FactoryFunc[T any] func() T

// Entry is a registered entity: its name, factory and options.
type Entry[T any] struct {
	Factory FactoryFunc[T]
	Name    string
	Options []Configurer
}

func New[T any]() Registry[T] {
	return Registry[T]{entries: make(map[string]Entry[T])}
}

// Register adds or replaces the Entry for name.
func (r Registry[T]) Register(name string, factory FactoryFunc[T], opts ...Configurer) Entry[T] {
	entry := Entry[T]{Name: name, Factory: factory, Options: opts}
	r.entries[name] = entry
	return entry
}

func (r Registry[T]) Entry(name string) (Entry[T], bool) {
	entry, ok := r.entries[name]
	return entry, ok
}

// Names returns the registered names in lexical order.
func (r Registry[T]) Names() []string {
	return slices.Sorted(maps.Keys(r.entries))
}

// Resolve maps key to a registered name. An exact match wins, otherwise the
// first name equal to key under case folding is returned. Configuration
// loaders lower case their keys, hence the fallback.
func (r Registry[T]) Resolve(key string) (string, bool) {
	if _, ok := r.entries[key]; ok {
		return key, true
	}

	for _, name := range r.Names() {
		if strings.EqualFold(name, key) {
			return name, true
		}
	}

	return "", false
}

// NewEntity creates the entity registered as name with every option at its
// default value.
func (r Registry[T]) NewEntity(name string) (T, error) {
	return r.NewEntityFromConfigMap(name, nil)
}

// NewEntityFromConfigMap creates the entity registered as name, applies the
// option defaults and then the values of configMap, keyed by option name.
// Values are converted to the option's type, so the loosely typed maps of
// configuration loaders work. Unknown option names are logged and skipped.
func (r Registry[T]) NewEntityFromConfigMap(name string, configMap map[string]any) (T, error) {
	entry, ok := r.Entry(name)
	if !ok {
		var zero T
		return zero, fmt.Errorf("could not find entry with name %v", name)
	}

	entity := entry.Factory()
	byName := make(map[string]configurable[T], len(entry.Options))
	for _, opt := range entry.Options {
		c, ok := opt.(configurable[T])
		if !ok {
			return entity, fmt.Errorf("option %v of %v does not configure this entity type", opt.Name(), name)
		}

		var err error
		if entity, err = c.applyDefault(entity); err != nil {
			return entity, fmt.Errorf("could not set default value of %v: %w", opt.Name(), err)
		}

		byName[opt.Name()] = c
	}

	for _, key := range slices.Sorted(maps.Keys(configMap)) {
		c, ok := byName[key]
		if !ok {
			log.Warnf("(registry) unknown option %v for %v", key, name)
			continue
		}

		var err error
		if entity, err = c.apply(entity, configMap[key]); err != nil {
			return entity, fmt.Errorf("could not set option %v: %w", key, err)
		}
	}

	return entity, nil
}
