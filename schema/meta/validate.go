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

package meta

import (
	"fmt"

	"cerberus.dev/go/cerrors"
	"cerberus.dev/go/schema"
	"cerberus.dev/go/value"
)

// Config bundles the registries meta-validation needs to resolve
// string references found where a schema or rule-set is expected.
type Config struct {
	Table           *Table
	SchemaRegistry  *schema.SchemaRegistry
	RuleSetRegistry *schema.RuleSetRegistry
}

// Validate meta-validates s against the schema-of-schemas (§4.E),
// recursing into nested schemas/rule-sets reachable through "schema",
// "items", "keysrules", "valuesrules", and the *of-combinators. A
// schema is valid iff meta-validation produces no errors (§3 invariant
// 1). Cycles through the registries are tracked on a set of the
// references (kind and name) currently being walked, so a self-referential named schema
// terminates instead of recursing forever — documents are finite, but
// registries may describe an infinitely-unrollable schema graph, so
// meta-validation must stop at the first repeat visit of a reference.
func Validate(s schema.Schema, cfg Config) []*cerrors.SchemaError {
	if cfg.Table == nil {
		cfg.Table = Default()
	}
	v := &validator{cfg: cfg, visiting: map[string]bool{}}
	v.schema(nil, s)
	return v.errs
}

type validator struct {
	cfg      Config
	errs     []*cerrors.SchemaError
	visiting map[string]bool
}

func (v *validator) fail(path cerrors.Path, format string, args ...any) {
	v.errs = append(v.errs, cerrors.Newf(path, format, args...))
}

func (v *validator) schema(path cerrors.Path, s schema.Schema) {
	if !s.Valid() {
		v.fail(path, "schema must be a mapping")
		return
	}
	for _, field := range s.Fields() {
		rs, _ := s.RuleSet(field)
		v.ruleSet(path.Append(field), rs)
	}
}

func (v *validator) ruleSet(path cerrors.Path, rs schema.RuleSet) {
	if !rs.Valid() {
		v.fail(path, "rule-set must be a mapping")
		return
	}
	for _, name := range rs.Rules() {
		constraint, _ := rs.Get(name)
		def, ok := v.cfg.Table.Lookup(name)
		if !ok {
			v.fail(path, "unknown rule %q", name)
			continue
		}
		if def.AllowedKinds != value.InvalidKind && !constraint.Kind().IsAnyOf(def.AllowedKinds) {
			v.fail(path, "rule %q: constraint must be of kind %s, got %s", name, def.AllowedKinds, constraint.Kind())
			continue
		}
		if def.Check != nil {
			if msg := def.Check(constraint); msg != "" {
				v.fail(path, "rule %q: %s", name, msg)
				continue
			}
		}
		v.recurse(path, name, constraint)
	}
}

// recurse walks into the nested schemas/rule-sets a rule's constraint
// may carry, so meta-validation is a complete tree walk rather than
// stopping at the first level.
func (v *validator) recurse(path cerrors.Path, rule string, constraint value.Value) {
	switch rule {
	case "schema":
		switch constraint.(type) {
		case *value.Map, value.String:
			v.namedOrInlineSchema(path.Append(value.String("schema")), constraint)
		default:
			// legacy sequence form: a RuleSet applied to each element.
			v.namedOrInlineRuleSet(path.Append(value.String("schema")), constraint)
		}
	case "keysrules", "valuesrules":
		v.namedOrInlineRuleSet(path.Append(value.String(rule)), constraint)
	case "allow_unknown":
		if _, ok := constraint.(value.Bool); !ok {
			v.namedOrInlineRuleSet(path.Append(value.String("allow_unknown")), constraint)
		}
	case "items":
		seq, _ := constraint.(value.Seq)
		for i, e := range seq {
			v.namedOrInlineRuleSet(path.Append(value.NewInt(int64(i))), e)
		}
	case "allof", "anyof", "noneof", "oneof":
		seq, _ := constraint.(value.Seq)
		for i, e := range seq {
			v.namedOrInlineRuleSet(path.Append(value.NewInt(int64(i))), e)
		}
	}
}

func (v *validator) namedOrInlineSchema(path cerrors.Path, constraint value.Value) {
	if name, ok := constraint.(value.String); ok {
		v.followSchemaRef(path, string(name))
		return
	}
	s, err := schema.FromValue(constraint)
	if err != nil {
		v.fail(path, "%s", err)
		return
	}
	v.schema(path, s)
}

func (v *validator) namedOrInlineRuleSet(path cerrors.Path, constraint value.Value) {
	if name, ok := constraint.(value.String); ok {
		v.followRuleSetRef(path, string(name))
		return
	}
	rs, err := schema.RuleSetFromValue(constraint)
	if err != nil {
		v.fail(path, "%s", err)
		return
	}
	v.ruleSet(path, rs)
}

func (v *validator) followSchemaRef(path cerrors.Path, name string) {
	key := "schema:" + name
	if v.visiting[key] {
		return // cycle; already being validated higher up the stack
	}
	if v.cfg.SchemaRegistry == nil {
		v.fail(path, "reference %q used with no schema registry configured", name)
		return
	}
	s, ok := v.cfg.SchemaRegistry.Get(name)
	if !ok {
		v.fail(path, "unresolved schema reference %q", name)
		return
	}
	v.visiting[key] = true
	v.schema(path, s)
	delete(v.visiting, key)
}

func (v *validator) followRuleSetRef(path cerrors.Path, name string) {
	key := "ruleset:" + name
	if v.visiting[key] {
		return
	}
	if v.cfg.RuleSetRegistry == nil {
		v.fail(path, "reference %q used with no rule-set registry configured", name)
		return
	}
	rs, ok := v.cfg.RuleSetRegistry.Get(name)
	if !ok {
		v.fail(path, "unresolved rule-set reference %q", name)
		return
	}
	v.visiting[key] = true
	v.ruleSet(path, rs)
	delete(v.visiting, key)
}

// Combine folds a slice of per-finding errors into a single error for
// callers that just want one Go error to check, preserving every
// individual message.
func Combine(errs []*cerrors.SchemaError) error {
	if len(errs) == 0 {
		return nil
	}
	msg := fmt.Sprintf("%d schema error(s):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return cerrors.Newf(nil, "%s", msg)
}
