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

package validate

import (
	"cerberus.dev/go/cerrors"
	"cerberus.dev/go/schema"
	"cerberus.dev/go/value"
)

// child returns a new Engine that shares this Engine's options and
// root document, the way §4.G's "child validator inherits
// root_document, root_schema" describes; document_path/schema_path are
// supplied per call site instead of stored, since every caller already
// has them in hand.
func (e *Engine) child() *Engine {
	return &Engine{opts: e.opts, root: e.root}
}

// mergeChild flushes a child engine's findings into e, wrapped under a
// single group error keyed to the recursion point unless the child
// found nothing (§7 "Propagation").
func (e *Engine) mergeChild(docPath, schemaPath cerrors.Path, rule string, child *Engine) {
	e.stats.Add(child.stats)
	if child.errs.Empty() {
		return
	}
	e.errs.Add(cerrors.Group(docPath, schemaPath, rule, child.errs))
}

func (e *Engine) recurse(docPath, schemaPath cerrors.Path, v value.Value, rs schema.RuleSet) {
	if sc, ok := rs.Get("schema"); ok {
		switch x := v.(type) {
		case *value.Map:
			e.recurseSchema(docPath, schemaPath, x, sc, rs)
		case value.Seq:
			e.recurseLegacySchemaSeq(docPath, schemaPath, x, sc)
		}
	}
	if ic, ok := rs.Get("items"); ok {
		if seq, ok := v.(value.Seq); ok {
			e.recurseItems(docPath, schemaPath, seq, ic)
		}
	}
	if kc, ok := rs.Get("keysrules"); ok {
		if m, ok := v.(*value.Map); ok {
			e.recurseKeysRules(docPath, schemaPath, m, kc)
		}
	}
	if vc, ok := rs.Get("valuesrules"); ok {
		if m, ok := v.(*value.Map); ok {
			e.recurseValuesRules(docPath, schemaPath, m, vc)
		}
	}
}

func (e *Engine) recurseSchema(docPath, schemaPath cerrors.Path, v *value.Map, constraint value.Value, enclosing schema.RuleSet) {
	nested, err := schema.ResolveSchema(constraint, e.opts.SchemaRegistry)
	if err != nil {
		e.fail(docPath, schemaPath, cerrors.CodeSchemaGroup, "schema", constraint, v, err.Error())
		return
	}
	child := e.child()
	if au, ok := enclosing.Get("allow_unknown"); ok {
		if b, ok := au.(value.Bool); ok {
			child.opts.AllowUnknown = bool(b)
		}
	}
	e.stats.ChildrenSpawned++
	child.Validate(docPath, schemaPath.Append(value.String("schema")), v, nested)
	e.mergeChild(docPath, schemaPath, "schema", child)
}

// recurseLegacySchemaSeq handles the legacy form where "schema" names a
// single rule-set applied to every element of a sequence value,
// equivalent in shape to "items" but without per-position rule-sets.
func (e *Engine) recurseLegacySchemaSeq(docPath, schemaPath cerrors.Path, v value.Seq, constraint value.Value) {
	rs, err := schema.RuleSetFromValue(constraint)
	if err != nil {
		e.fail(docPath, schemaPath, cerrors.CodeSchemaGroup, "schema", constraint, v, err.Error())
		return
	}
	for i, elem := range v {
		idxDoc := docPath.Append(value.NewInt(int64(i)))
		idxSchema := schemaPath.Append(value.NewInt(int64(i)))
		child := e.validateSingleField(idxDoc, idxSchema, elem, rs)
		e.mergeChild(docPath, schemaPath, "schema", child)
	}
}

func (e *Engine) recurseItems(docPath, schemaPath cerrors.Path, v value.Seq, constraint value.Value) {
	items, ok := constraint.(value.Seq)
	if !ok {
		return
	}
	if len(v) != len(items) {
		e.fail(docPath, schemaPath, cerrors.CodeItemsLength, "items", constraint, v)
	}
	for i := 0; i < len(v) && i < len(items); i++ {
		rs, err := schema.RuleSetFromValue(items[i])
		if err != nil {
			continue
		}
		idxDoc := docPath.Append(value.NewInt(int64(i)))
		idxSchema := schemaPath.Append(value.NewInt(int64(i)))
		child := e.validateSingleField(idxDoc, idxSchema, v[i], rs)
		e.mergeChild(docPath, schemaPath, "items", child)
	}
}

func (e *Engine) recurseKeysRules(docPath, schemaPath cerrors.Path, v *value.Map, constraint value.Value) {
	rs, err := schema.RuleSetFromValue(constraint)
	if err != nil {
		return
	}
	for _, key := range v.Keys() {
		child := e.validateSingleField(docPath, schemaPath.Append(value.String("keysrules")), key, rs)
		e.mergeChild(docPath, schemaPath, "keysrules", child)
	}
}

func (e *Engine) recurseValuesRules(docPath, schemaPath cerrors.Path, v *value.Map, constraint value.Value) {
	rs, err := schema.RuleSetFromValue(constraint)
	if err != nil {
		return
	}
	for _, key := range v.Keys() {
		val, _ := v.Get(key)
		child := e.validateSingleField(docPath.Append(key), schemaPath.Append(key), val, rs)
		e.mergeChild(docPath, schemaPath, "valuesrules", child)
	}
}

// validateSingleField runs rs against v as if v were the value of a
// single standalone field, used by items/keysrules/valuesrules and the
// combinator rules — all cases where §4.G calls for "a child validator
// [that] runs on a single-field schema."
func (e *Engine) validateSingleField(docPath, schemaPath cerrors.Path, v value.Value, rs schema.RuleSet) *Engine {
	child := e.child()
	siblings := value.NewMap()
	siblings.SetString("_", v)
	child.validateField(docPath, schemaPath, siblings, value.String("_"), v, true, rs)
	return child
}
