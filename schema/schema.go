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

// Package schema implements Cerberus's schema AST (§3/§4.D): Schema
// and RuleSet are thin, typed views over a value.Map, plus the two
// named registries schemas and rule-sets are interned into and the
// alias/typesaver rewrites applied at load time. It is grounded on the
// teacher's notion of interning schema nodes into an arena addressed
// by name (internal/core/adt's vertex arena), adapted here to a much
// shallower, lazily-resolved name table since Cerberus schemas are
// data, not a language to compile.
package schema

import (
	"fmt"

	"cerberus.dev/go/value"
)

// A Schema maps field names to rule-sets.
type Schema struct {
	m *value.Map
}

// FromValue wraps v as a Schema, requiring it to be a Map.
func FromValue(v value.Value) (Schema, error) {
	m, ok := v.(*value.Map)
	if !ok {
		return Schema{}, fmt.Errorf("schema: expected a mapping, got %s", v.Kind())
	}
	return Schema{m: m}, nil
}

// Value returns the underlying map.
func (s Schema) Value() *value.Map { return s.m }

// Fields reports the field names in declaration order.
func (s Schema) Fields() []value.Value {
	if s.m == nil {
		return nil
	}
	return s.m.Keys()
}

// RuleSet looks up the rule-set for a field, canonicalized per §6
// (aliases renamed, typesaver constraints expanded) so every caller
// sees only canonical rule names.
func (s Schema) RuleSet(field value.Value) (RuleSet, bool) {
	if s.m == nil {
		return RuleSet{}, false
	}
	v, ok := s.m.Get(field)
	if !ok {
		return RuleSet{}, false
	}
	rs, err := RuleSetFromValue(v)
	if err != nil {
		return RuleSet{}, false
	}
	return rs, true
}

// Has reports whether field is declared in the schema.
func (s Schema) Has(field value.Value) bool {
	return s.m != nil && s.m.Has(field)
}

// Valid reports whether s wraps an actual map (vs. the zero Schema).
func (s Schema) Valid() bool { return s.m != nil }

// A RuleSet maps rule names to constraints for a single field.
type RuleSet struct {
	m *value.Map
}

// RuleSetFromValue wraps v as a RuleSet, requiring it to be a Map, and
// canonicalizes it per §6 (aliases renamed, typesaver constraints
// expanded) so callers never see a pre-canonicalization rule name.
// This is the sole choke point every load path and recursion site goes
// through (directly, or via Schema.RuleSet), so an alias or typesaver
// schema behaves identically to its canonical spelling from the moment
// it is read off the wire.
func RuleSetFromValue(v value.Value) (RuleSet, error) {
	m, ok := v.(*value.Map)
	if !ok {
		return RuleSet{}, fmt.Errorf("schema: expected a rule-set mapping, got %s", v.Kind())
	}
	canon, _ := Canonicalize(RuleSet{m: m})
	return canon, nil
}

// Value returns the underlying map.
func (rs RuleSet) Value() *value.Map { return rs.m }

// Valid reports whether rs wraps an actual map.
func (rs RuleSet) Valid() bool { return rs.m != nil }

// Get looks up a rule's constraint by name.
func (rs RuleSet) Get(rule string) (value.Value, bool) {
	if rs.m == nil {
		return nil, false
	}
	return rs.m.GetString(rule)
}

// Has reports whether a rule is declared.
func (rs RuleSet) Has(rule string) bool {
	return rs.m != nil && rs.m.HasString(rule)
}

// Rules reports the declared rule names in declaration order.
func (rs RuleSet) Rules() []string {
	if rs.m == nil {
		return nil
	}
	out := make([]string, 0, rs.m.Len())
	for _, k := range rs.m.Keys() {
		out = append(out, k.String())
	}
	return out
}

// Bool returns the boolean value of a rule, or def if absent or not a
// bool.
func (rs RuleSet) Bool(rule string, def bool) bool {
	v, ok := rs.Get(rule)
	if !ok {
		return def
	}
	b, ok := v.(value.Bool)
	if !ok {
		return def
	}
	return bool(b)
}

// String renders the rule-set mapping for diagnostic purposes.
func (rs RuleSet) String() string {
	if rs.m == nil {
		return "<nil rule-set>"
	}
	return rs.m.String()
}
