// Copyright 2020 CUE Authors
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

package schema

import (
	"fmt"
	"sync"

	"cerberus.dev/go/value"
)

// SchemaRegistry is a named collection of reusable Schemas (§4.D). A
// string found where a Schema is expected is resolved against this
// registry; cycles are allowed because resolution is lazy (done at
// the point a consumer walks into the reference, not when the
// registry entry is stored).
type SchemaRegistry struct {
	mu   sync.RWMutex
	gen  int64 // bumped on every write; exposed by Generation as a cache key
	data map[string]Schema
}

// NewSchemaRegistry returns an empty registry.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{data: make(map[string]Schema)}
}

// Set interns a named schema. Per §4.D, "Registry updates invalidate
// cached meta-validation results" — callers that cache a
// schema's meta-validation outcome keyed by (registry, Generation())
// will naturally see a cache miss after this call.
func (r *SchemaRegistry) Set(name string, s Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[name] = s
	r.gen++
}

// Get resolves a named schema.
func (r *SchemaRegistry) Get(name string) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.data[name]
	return s, ok
}

// Names reports every registered name.
func (r *SchemaRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.data))
	for k := range r.data {
		out = append(out, k)
	}
	return out
}

// Generation reports a monotonically increasing counter bumped by
// every Set, usable as a cheap cache-invalidation key.
func (r *SchemaRegistry) Generation() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gen
}

// RuleSetRegistry is the rule-set analogue of SchemaRegistry.
type RuleSetRegistry struct {
	mu   sync.RWMutex
	gen  int64
	data map[string]RuleSet
}

// NewRuleSetRegistry returns an empty registry.
func NewRuleSetRegistry() *RuleSetRegistry {
	return &RuleSetRegistry{data: make(map[string]RuleSet)}
}

// Set interns a named rule-set.
func (r *RuleSetRegistry) Set(name string, rs RuleSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[name] = rs
	r.gen++
}

// Get resolves a named rule-set.
func (r *RuleSetRegistry) Get(name string) (RuleSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.data[name]
	return rs, ok
}

// Names reports every registered name.
func (r *RuleSetRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.data))
	for k := range r.data {
		out = append(out, k)
	}
	return out
}

// Generation reports a monotonically increasing counter bumped by
// every Set.
func (r *RuleSetRegistry) Generation() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gen
}

// ResolveSchema takes a value that is either a Schema-shaped Map or a
// String naming a registry entry, and returns the concrete Schema.
// Per §4.D invariant 6, an unresolved name is a schema error.
func ResolveSchema(v value.Value, reg *SchemaRegistry) (Schema, error) {
	if name, ok := v.(value.String); ok {
		if reg == nil {
			return Schema{}, fmt.Errorf("schema: reference %q used with no schema registry configured", string(name))
		}
		s, ok := reg.Get(string(name))
		if !ok {
			return Schema{}, fmt.Errorf("schema: unresolved schema reference %q", string(name))
		}
		return s, nil
	}
	return FromValue(v)
}

// ResolveRuleSet is the RuleSet analogue of ResolveSchema.
func ResolveRuleSet(v value.Value, reg *RuleSetRegistry) (RuleSet, error) {
	if name, ok := v.(value.String); ok {
		if reg == nil {
			return RuleSet{}, fmt.Errorf("schema: reference %q used with no rule-set registry configured", string(name))
		}
		rs, ok := reg.Get(string(name))
		if !ok {
			return RuleSet{}, fmt.Errorf("schema: unresolved rule-set reference %q", string(name))
		}
		return rs, nil
	}
	return RuleSetFromValue(v)
}
