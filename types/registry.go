// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package types implements Cerberus's named-type catalog: the mapping
// from a schema's "type" rule constraint (a string like "integer" or
// "Mapping") to a predicate over value.Value. It is grounded on the
// teacher's builtin package-registration pattern (each builtin package
// registers its identifiers at init time into a shared table).
package types

import (
	"fmt"
	"sync"

	"cerberus.dev/go/value"
)

// A Predicate reports whether v satisfies a named type.
type Predicate func(v value.Value) bool

// A TypeDef is one entry of the catalog: a name plus the predicate
// that recognizes it and the concrete value.Kind set it subsumes.
// Matching goes through Predicate only; Kinds is descriptive metadata.
type TypeDef struct {
	Name      string
	Predicate Predicate
	Kinds     value.Kind
}

// Registry is a named collection of type predicates. The zero value is
// not usable; use NewRegistry or Default.
type Registry struct {
	mu    sync.RWMutex
	types map[string]TypeDef
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]TypeDef)}
}

// Register adds or replaces a named type. Extensions call this the
// same way the teacher's builtin packages populate their op tables at
// init() — see internal/builtin's package-registration pattern.
func (r *Registry) Register(def TypeDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[def.Name] = def
}

// Lookup returns the named type, if registered.
func (r *Registry) Lookup(name string) (TypeDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Match reports whether v satisfies any of the named types. An unknown
// type name is reported through the error return rather than silently
// failing to match; package validate records that error as a type
// error on the field being validated.
func (r *Registry) Match(v value.Value, names ...string) (bool, error) {
	for _, name := range names {
		def, ok := r.Lookup(name)
		if !ok {
			return false, fmt.Errorf("types: unknown type %q", name)
		}
		if def.Predicate(v) {
			return true, nil
		}
	}
	return false, nil
}

// Names reports every registered type name. Meta-validation does not
// consult the type registry: it only checks that a "type" constraint
// is a string or a sequence of strings, so an unknown type name is not
// rejected before the document is walked.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for name := range r.types {
		out = append(out, name)
	}
	return out
}

var defaultOnce sync.Once
var defaultRegistry *Registry

// Default returns the process-wide registry pre-populated with the
// built-in catalog from §4.B. Per §9's "global registries vs.
// per-validator" guidance, embedders that need isolation should clone
// it (Registry has no Clone method because type predicates are
// stateless functions; a fresh NewRegistry() populated via Register
// calls against Default().Names() suffices).
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		registerBuiltins(defaultRegistry)
	})
	return defaultRegistry
}
