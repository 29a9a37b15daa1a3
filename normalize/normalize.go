// Copyright 2019 CUE Authors
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

// Package normalize implements §4.F's six-step normalization pipeline:
// rename, purge-readonly, purge-unknown, defaults, coerce, recurse. It
// never mutates its input: Normalize deep-copies the mapping once and
// every step rewrites that copy, the way the teacher's compiler stages
// never mutate a parent *adt.Vertex in place but build successor nodes.
package normalize

import (
	"fmt"

	"cerberus.dev/go/callables"
	"cerberus.dev/go/cerrors"
	"cerberus.dev/go/schema"
	"cerberus.dev/go/value"
)

// Options configures a normalization run. The zero value matches the
// defaults listed in §4.H.
type Options struct {
	AllowUnknown     bool
	PurgeUnknown     bool
	PurgeReadonly    bool
	IgnoreNoneValues bool
	Callables        *callables.Registry
	SchemaRegistry   *schema.SchemaRegistry
	RuleSetRegistry  *schema.RuleSetRegistry

	// renameHandler carries the rename_handler chain declared by the
	// enclosing field's allow_unknown rule-set, if any, one level down
	// from the validator-wide AllowUnknown flag. Only normalize.recurse
	// sets this when descending into a nested "schema".
	renameHandler value.Value
}

// Engine runs the pipeline for one invocation, accumulating errors
// into a shared list the way a parent validator's error stash
// collects a child's findings (§7 "Propagation").
type Engine struct {
	opts Options
	errs cerrors.List
}

// New returns an Engine ready to normalize documents under opts.
func New(opts Options) *Engine {
	if opts.Callables == nil {
		opts.Callables = callables.NewRegistry()
	}
	return &Engine{opts: opts}
}

// Errors returns the normalization errors accumulated across every
// Normalize call made on this Engine.
func (e *Engine) Errors() cerrors.List { return e.errs }

// Normalize rewrites doc against s, returning a new value. Non-mapping
// documents pass through the identity transform: normalization only
// acts at mapping levels (§4.F's "For a mapping level").
func (e *Engine) Normalize(docPath, schemaPath cerrors.Path, doc value.Value, s schema.Schema) value.Value {
	m, ok := doc.(*value.Map)
	if !ok {
		return doc
	}
	work := m.Clone()

	e.rename(docPath, schemaPath, work, s)
	e.purgeReadonly(work, s)
	e.purgeUnknown(work, s)
	e.defaults(docPath, schemaPath, work, s)
	e.coerce(docPath, schemaPath, work, s)
	e.recurse(docPath, schemaPath, work, s)

	return work
}

// --- 1. rename ---------------------------------------------------------

func (e *Engine) rename(docPath, schemaPath cerrors.Path, m *value.Map, s schema.Schema) {
	type renaming struct {
		from, to string
	}
	var renames []renaming

	for _, field := range s.Fields() {
		name, ok := field.(value.String)
		if !ok {
			continue
		}
		rs, _ := s.RuleSet(field)
		rc, ok := rs.Get("rename")
		if !ok {
			continue
		}
		newName, ok := rc.(value.String)
		if !ok {
			continue
		}
		if m.HasString(string(name)) {
			renames = append(renames, renaming{string(name), string(newName)})
		}
	}

	for _, r := range renames {
		if m.HasString(r.to) {
			e.fail(docPath.Append(value.String(r.from)), schemaPath.Append(value.String(r.from)), cerrors.CodeRenameCollision, "rename", nil, value.String(r.to))
			continue
		}
		m.Rename(value.String(r.from), value.String(r.to))
	}

	// rename_handler: pipe every key not matched by the schema through
	// the handler chain declared on the enclosing field's allow_unknown
	// rule-set (§4.F.1).
	if e.opts.renameHandler == nil {
		return
	}
	for _, key := range m.Keys() {
		ks, ok := key.(value.String)
		if !ok {
			continue
		}
		if s.Has(key) {
			continue
		}
		newName, err := e.opts.Callables.RenameHandler(e.opts.renameHandler, string(ks))
		if err != nil {
			e.fail(docPath.Append(key), schemaPath, cerrors.CodeCoerceFailed, "rename_handler", nil, key, err.Error())
			continue
		}
		if newName == string(ks) {
			continue
		}
		if m.HasString(newName) {
			e.fail(docPath.Append(key), schemaPath, cerrors.CodeRenameCollision, "rename_handler", nil, value.String(newName))
			continue
		}
		m.Rename(key, value.String(newName))
	}
}

// --- 2. purge readonly ---------------------------------------------------

func (e *Engine) purgeReadonly(m *value.Map, s schema.Schema) {
	if !e.opts.PurgeReadonly {
		return
	}
	for _, field := range s.Fields() {
		rs, _ := s.RuleSet(field)
		if rs.Bool("readonly", false) && m.Has(field) {
			m.Delete(field)
		}
	}
}

// --- 3. purge unknown -----------------------------------------------------

func (e *Engine) purgeUnknown(m *value.Map, s schema.Schema) {
	// allow_unknown takes precedence over purge for its scope (§4.F.3).
	if e.opts.AllowUnknown || !e.opts.PurgeUnknown {
		return
	}
	for _, key := range m.Keys() {
		if s.Has(key) {
			continue
		}
		m.Delete(key)
	}
}

// --- 4. defaults ------------------------------------------------------

type pendingSetter struct {
	field      value.Value
	fieldName  string
	constraint value.Value
}

func (e *Engine) defaults(docPath, schemaPath cerrors.Path, m *value.Map, s schema.Schema) {
	var setters []pendingSetter

	for _, field := range s.Fields() {
		if m.Has(field) {
			continue
		}
		rs, _ := s.RuleSet(field)
		if dv, ok := rs.Get("default"); ok {
			m.Set(field, dv)
			continue
		}
		if dc, ok := rs.Get("default_setter"); ok {
			name, _ := field.(value.String)
			setters = append(setters, pendingSetter{field: field, fieldName: string(name), constraint: dc})
		}
	}
	if len(setters) == 0 {
		return
	}

	// Setters are opaque callables; Cerberus cannot statically know
	// which siblings one reads, so there is no real dependency graph to
	// build. Instead every pending setter is retried in repeated
	// fixed-point passes (§4.F.4): each pass runs every still-pending
	// setter, and whatever is left once a pass makes no progress is
	// stuck, whether because of a genuine cycle or an unresolvable
	// dependency on a sibling no setter ever produces.
	remaining := make(map[string]pendingSetter, len(setters))
	for _, st := range setters {
		remaining[st.fieldName] = st
	}

	for pass := 0; pass < len(setters) && len(remaining) > 0; pass++ {
		progressed := false
		for _, st := range setters {
			if _, ok := remaining[st.fieldName]; !ok {
				continue
			}
			v, err := e.opts.Callables.DefaultSetter(st.constraint, m)
			if err != nil {
				continue
			}
			m.Set(st.field, v)
			delete(remaining, st.fieldName)
			progressed = true
		}
		if !progressed {
			break
		}
	}

	if len(remaining) == 0 {
		return
	}

	for name, st := range remaining {
		e.fail(docPath.Append(st.field), schemaPath.Append(st.field), cerrors.CodeDefaultSetterFailed, "default_setter", nil, st.field,
			fmt.Sprintf("default_setter for %q could not be resolved (cycle or unresolvable dependency)", name))
	}
}

// --- 5. coerce ----------------------------------------------------------

func (e *Engine) coerce(docPath, schemaPath cerrors.Path, m *value.Map, s schema.Schema) {
	for _, field := range s.Fields() {
		if !m.Has(field) {
			continue
		}
		rs, _ := s.RuleSet(field)
		cc, ok := rs.Get("coerce")
		if !ok {
			continue
		}
		v, _ := m.Get(field)
		out, err := e.opts.Callables.Coerce(cc, v)
		if err != nil {
			e.fail(docPath.Append(field), schemaPath.Append(field), cerrors.CodeCoerceFailed, "coerce", nil, v, err.Error())
			continue
		}
		m.Set(field, out)
	}
}

// --- 6. recurse -----------------------------------------------------------

func (e *Engine) recurse(docPath, schemaPath cerrors.Path, m *value.Map, s schema.Schema) {
	for _, field := range s.Fields() {
		v, ok := m.Get(field)
		if !ok {
			continue
		}
		rs, _ := s.RuleSet(field)
		fieldDocPath := docPath.Append(field)
		fieldSchemaPath := schemaPath.Append(field)

		if sc, ok := rs.Get("schema"); ok {
			m.Set(field, e.recurseField(fieldDocPath, fieldSchemaPath, v, sc, rs))
		}
		if ic, ok := rs.Get("items"); ok {
			seq, ok := v.(value.Seq)
			items, _ := ic.(value.Seq)
			if ok {
				out := make(value.Seq, len(seq))
				copy(out, seq)
				for i := range out {
					if i < len(items) {
						rsItem, err := schema.RuleSetFromValue(items[i])
						if err == nil {
							out[i] = e.normalizeAsSingleField(fieldDocPath.Append(value.NewInt(int64(i))), fieldSchemaPath.Append(value.NewInt(int64(i))), out[i], rsItem)
						}
					}
				}
				m.Set(field, out)
			}
		}
		if kc, ok := rs.Get("keysrules"); ok {
			if mv, ok := v.(*value.Map); ok {
				e.applyKeysRules(fieldDocPath, fieldSchemaPath, mv, kc)
			}
		}
		if vc, ok := rs.Get("valuesrules"); ok {
			if mv, ok := v.(*value.Map); ok {
				e.applyValuesRules(fieldDocPath, fieldSchemaPath, mv, vc)
			}
		}
	}
}

func (e *Engine) recurseField(docPath, schemaPath cerrors.Path, v value.Value, constraint value.Value, enclosing schema.RuleSet) value.Value {
	nested, err := resolveSchema(constraint, e.opts.SchemaRegistry)
	if err != nil {
		return v
	}
	childOpts := e.opts
	childOpts.AllowUnknown = false
	childOpts.renameHandler = nil
	if au, ok := enclosing.Get("allow_unknown"); ok {
		switch x := au.(type) {
		case value.Bool:
			childOpts.AllowUnknown = bool(x)
		case *value.Map:
			childRS, err := schema.RuleSetFromValue(x)
			if err == nil {
				childOpts.AllowUnknown = true
				if rh, ok := childRS.Get("rename_handler"); ok {
					childOpts.renameHandler = rh
				}
			}
		}
	}
	child := &Engine{opts: childOpts}
	out := child.Normalize(docPath, schemaPath, v, nested)
	e.errs = append(e.errs, child.errs...)
	return out
}

func (e *Engine) normalizeAsSingleField(docPath, schemaPath cerrors.Path, v value.Value, rs schema.RuleSet) value.Value {
	wrapper := value.NewMap()
	wrapper.SetString("_", v)
	schemaMap := value.NewMap()
	schemaMap.SetString("_", rs.Value())
	s, err := schema.FromValue(schemaMap)
	if err != nil {
		return v
	}
	out := e.Normalize(docPath, schemaPath, wrapper, s)
	if om, ok := out.(*value.Map); ok {
		if rv, ok := om.GetString("_"); ok {
			return rv
		}
	}
	return v
}

// applyKeysRules reapplies steps 1-5 (§4.F.6) to each map key, the
// same as applyValuesRules does for each value, but a renamed key
// replaces the old one in m rather than being stored back under the
// key it replaced (keys carry the normalized value *as* the key).
func (e *Engine) applyKeysRules(docPath, schemaPath cerrors.Path, m *value.Map, constraint value.Value) {
	rs, err := schema.RuleSetFromValue(constraint)
	if err != nil {
		return
	}
	for _, key := range m.Keys() {
		newKey := e.normalizeAsSingleField(docPath.Append(key), schemaPath, key, rs)
		if newKey.Equal(key) {
			continue
		}
		if m.Has(newKey) {
			e.fail(docPath.Append(key), schemaPath, cerrors.CodeRenameCollision, "keysrules", nil, newKey)
			continue
		}
		m.Rename(key, newKey)
	}
}

func (e *Engine) applyValuesRules(docPath, schemaPath cerrors.Path, m *value.Map, constraint value.Value) {
	rs, err := schema.RuleSetFromValue(constraint)
	if err != nil {
		return
	}
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		m.Set(key, e.normalizeAsSingleField(docPath.Append(key), schemaPath.Append(key), v, rs))
	}
}

func resolveSchema(constraint value.Value, reg *schema.SchemaRegistry) (schema.Schema, error) {
	return schema.ResolveSchema(constraint, reg)
}

func (e *Engine) fail(docPath, schemaPath cerrors.Path, code cerrors.Code, rule string, constraint value.Value, val value.Value, info ...any) {
	e.errs.Add(cerrors.New(docPath, schemaPath, code, rule, constraint, val, info...))
}
