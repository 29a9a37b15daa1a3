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

// Package validate implements §4.G: the per-field rule dispatcher that
// walks a document in lock-step with its schema, recursing into
// children and spawning child engines for the *of-combinators. It is
// grounded on the teacher's internal/core/adt disjunction handling
// (internal/core/adt/disjunct.go) for the combinator shape — try every
// alternative, merge results — reduced to plain sequential evaluation
// since Cerberus rule-sets carry no laziness or sharing to exploit.
package validate

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"cerberus.dev/go/callables"
	"cerberus.dev/go/cerrors"
	"cerberus.dev/go/schema"
	"cerberus.dev/go/types"
	"cerberus.dev/go/value"
)

// Options configures a validation run; the zero value matches the
// defaults listed in §4.H.
type Options struct {
	Update           bool // suppresses "required" errors for missing fields
	AllowUnknown     bool
	RequireAll       bool
	IgnoreNoneValues bool
	Types            *types.Registry
	Callables        *callables.Registry
	SchemaRegistry   *schema.SchemaRegistry
	RuleSetRegistry  *schema.RuleSetRegistry
}

// Stats counts work performed by an Engine, mirroring the teacher's
// cue/stats package (a plain counters struct with an Add method),
// exposed so the public driver can report diagnostics per §9's
// ambient "ship counters with a tree-walking engine" note.
type Stats struct {
	FieldsVisited   int
	RulesEvaluated  int
	ChildrenSpawned int
}

// Add accumulates o's counts into s.
func (s *Stats) Add(o Stats) {
	s.FieldsVisited += o.FieldsVisited
	s.RulesEvaluated += o.RulesEvaluated
	s.ChildrenSpawned += o.ChildrenSpawned
}

// fieldState is the per-field state machine of §4.G.
type fieldState int

const (
	stateStart fieldState = iota
	stateTypeChecked
	stateNormal
	stateTerminated
)

// Engine runs one validation invocation (or, via child engines, one
// recursive sub-validation) against a mapping level.
type Engine struct {
	opts  Options
	root  value.Value // root_document
	errs  cerrors.List
	stats Stats
}

// New returns a top-level Engine; root is the document this engine (and
// any descendants) treats as root_document for dependency resolution.
func New(opts Options, root value.Value) *Engine {
	if opts.Types == nil {
		opts.Types = types.Default()
	}
	if opts.Callables == nil {
		opts.Callables = callables.NewRegistry()
	}
	return &Engine{opts: opts, root: root}
}

// Errors reports every error accumulated by this Engine and its
// children.
func (e *Engine) Errors() cerrors.List { return e.errs }

// Stats reports the counters accumulated by this Engine and its
// children.
func (e *Engine) Stats() Stats { return e.stats }

func (e *Engine) fail(docPath, schemaPath cerrors.Path, code cerrors.Code, rule string, constraint, val value.Value, info ...any) {
	e.errs.Add(cerrors.New(docPath, schemaPath, code, rule, constraint, val, info...))
}

// Validate walks doc against s, both rooted at docPath/schemaPath,
// reporting every finding through e.Errors(). It returns true iff no
// new errors were added by this call.
func (e *Engine) Validate(docPath, schemaPath cerrors.Path, doc value.Value, s schema.Schema) bool {
	before := len(e.errs)

	m, ok := doc.(*value.Map)
	if !ok {
		e.fail(docPath, schemaPath, cerrors.CodeTypeMismatch, "type", nil, doc, "document level must be a mapping")
		return false
	}

	e.checkUnknownFields(docPath, schemaPath, m, s)

	for _, field := range s.Fields() {
		e.stats.FieldsVisited++
		rs, _ := s.RuleSet(field)
		fieldDocPath := docPath.Append(field)
		fieldSchemaPath := schemaPath.Append(field)

		v, present := m.Get(field)
		if e.opts.IgnoreNoneValues && present {
			if _, isNull := v.(value.Null); isNull {
				present = false
			}
		}
		e.validateField(fieldDocPath, fieldSchemaPath, m, field, v, present, rs)
	}

	return len(e.errs) == before
}

func (e *Engine) checkUnknownFields(docPath, schemaPath cerrors.Path, m *value.Map, s schema.Schema) {
	for _, key := range m.Keys() {
		if s.Has(key) {
			continue
		}
		if e.opts.AllowUnknown {
			continue
		}
		e.fail(docPath.Append(key), schemaPath, cerrors.CodeUnknownField, "allow_unknown", nil, key)
	}
}

func (e *Engine) validateField(docPath, schemaPath cerrors.Path, siblings *value.Map, field value.Value, v value.Value, present bool, rs schema.RuleSet) {
	state := stateStart

	// 2. required / missing.
	if !present {
		required := rs.Bool("required", false) || (e.opts.RequireAll && !rs.Has("required"))
		if required && !e.opts.Update {
			e.fail(docPath, schemaPath, cerrors.CodeRequired, "required", value.Bool(true), nil)
		}
		state = stateTerminated
		return
	}

	// 3. readonly.
	if rs.Bool("readonly", false) {
		e.fail(docPath, schemaPath, cerrors.CodeReadonly, "readonly", value.Bool(true), v)
	}

	// 4. nullable.
	if _, isNull := v.(value.Null); isNull {
		if rs.Bool("nullable", false) {
			state = stateTerminated
			return
		}
	}

	// 5. type.
	if tc, ok := rs.Get("type"); ok {
		e.stats.RulesEvaluated++
		names := typeNames(tc)
		ok, err := e.opts.Types.Match(v, names...)
		if err != nil {
			e.fail(docPath, schemaPath, cerrors.CodeTypeMismatch, "type", tc, v, err.Error())
			state = stateTerminated
			return
		}
		if !ok {
			e.fail(docPath, schemaPath, cerrors.CodeTypeMismatch, "type", tc, v)
			state = stateTerminated
			return
		}
	}
	state = stateTypeChecked

	// 6. empty short-circuit.
	if ec, ok := rs.Get("empty"); ok {
		e.stats.RulesEvaluated++
		if eb, ok := ec.(value.Bool); ok && !bool(eb) && value.IsEmpty(v) {
			e.fail(docPath, schemaPath, cerrors.CodeEmptyNotAllowed, "empty", ec, v)
			state = stateTerminated
			return
		}
	}
	state = stateNormal

	// 7. remaining rules, in a fixed but otherwise unordered sequence
	// (§5 "ordering ... is an implementation detail but must be
	// deterministic").
	e.evalMinMax(docPath, schemaPath, rs, v)
	e.evalLength(docPath, schemaPath, rs, v)
	e.evalAllowedForbidden(docPath, schemaPath, rs, v)
	e.evalRegex(docPath, schemaPath, rs, v)
	e.evalContains(docPath, schemaPath, rs, v)
	e.evalCheckWith(docPath, schemaPath, rs, v)
	e.evalDependencies(docPath, schemaPath, siblings, field, rs)
	e.evalExcludes(docPath, schemaPath, siblings, field, rs)

	// 8. recursion into children.
	e.recurse(docPath, schemaPath, v, rs)

	// 9. combinators.
	e.evalCombinators(docPath, schemaPath, v, rs)

	_ = state
}

func typeNames(tc value.Value) []string {
	switch x := tc.(type) {
	case value.String:
		return []string{string(x)}
	case value.Seq:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if s, ok := e.(value.String); ok {
				out = append(out, string(s))
			}
		}
		return out
	default:
		return nil
	}
}

// compareNumeric compares v against constraint as arbitrary-precision
// decimals, reporting ok=false when either side isn't a number — apd
// is what backs value.Int/value.Float precisely so min/max never round
// through float64 (§3's "Value model" rationale for Int/Float).
func compareNumeric(v, constraint value.Value) (int, bool) {
	vd, ok := decimalOf(v)
	if !ok {
		return 0, false
	}
	cd, ok := decimalOf(constraint)
	if !ok {
		return 0, false
	}
	return vd.Cmp(cd), true
}

func decimalOf(v value.Value) (*apd.Decimal, bool) {
	switch x := v.(type) {
	case value.Int:
		return &x.D, true
	case value.Float:
		return &x.D, true
	default:
		return nil, false
	}
}

func (e *Engine) evalMinMax(docPath, schemaPath cerrors.Path, rs schema.RuleSet, v value.Value) {
	if mn, ok := rs.Get("min"); ok {
		e.stats.RulesEvaluated++
		if cmp, ok := compareNumeric(v, mn); ok && cmp < 0 {
			e.fail(docPath, schemaPath, cerrors.CodeMin, "min", mn, v)
		}
	}
	if mx, ok := rs.Get("max"); ok {
		e.stats.RulesEvaluated++
		if cmp, ok := compareNumeric(v, mx); ok && cmp > 0 {
			e.fail(docPath, schemaPath, cerrors.CodeMax, "max", mx, v)
		}
	}
}

func (e *Engine) evalLength(docPath, schemaPath cerrors.Path, rs schema.RuleSet, v value.Value) {
	n := value.Len(v)
	if n < 0 {
		return
	}
	if mn, ok := rs.Get("minlength"); ok {
		e.stats.RulesEvaluated++
		if mi, ok := mn.(value.Int); ok {
			if want, err := mi.Int64(); err == nil && int64(n) < want {
				e.fail(docPath, schemaPath, cerrors.CodeMinLength, "minlength", mn, v)
			}
		}
	}
	if mx, ok := rs.Get("maxlength"); ok {
		e.stats.RulesEvaluated++
		if mi, ok := mx.(value.Int); ok {
			if want, err := mi.Int64(); err == nil && int64(n) > want {
				e.fail(docPath, schemaPath, cerrors.CodeMaxLength, "maxlength", mx, v)
			}
		}
	}
}

func (e *Engine) evalAllowedForbidden(docPath, schemaPath cerrors.Path, rs schema.RuleSet, v value.Value) {
	if ac, ok := rs.Get("allowed"); ok {
		e.stats.RulesEvaluated++
		if !value.Contains(ac, v) {
			e.fail(docPath, schemaPath, cerrors.CodeAllowed, "allowed", ac, v)
		}
	}
	if fc, ok := rs.Get("forbidden"); ok {
		e.stats.RulesEvaluated++
		if value.Contains(fc, v) {
			e.fail(docPath, schemaPath, cerrors.CodeForbidden, "forbidden", fc, v)
		}
	}
}

func (e *Engine) evalRegex(docPath, schemaPath cerrors.Path, rs schema.RuleSet, v value.Value) {
	rc, ok := rs.Get("regex")
	if !ok {
		return
	}
	e.stats.RulesEvaluated++
	pattern, ok := rc.(value.String)
	if !ok {
		return
	}
	s, ok := v.(value.String)
	if !ok {
		e.fail(docPath, schemaPath, cerrors.CodeRegex, "regex", rc, v)
		return
	}
	re, err := regexp.Compile(string(pattern))
	if err != nil || !re.MatchString(string(s)) {
		e.fail(docPath, schemaPath, cerrors.CodeRegex, "regex", rc, v)
	}
}

func (e *Engine) evalContains(docPath, schemaPath cerrors.Path, rs schema.RuleSet, v value.Value) {
	cc, ok := rs.Get("contains")
	if !ok {
		return
	}
	e.stats.RulesEvaluated++
	needles := value.Elements(cc)
	if needles == nil {
		needles = []value.Value{cc}
	}
	for _, needle := range needles {
		if !value.Contains(v, needle) {
			e.fail(docPath, schemaPath, cerrors.CodeContains, "contains", cc, v)
			return
		}
	}
}

func (e *Engine) evalCheckWith(docPath, schemaPath cerrors.Path, rs schema.RuleSet, v value.Value) {
	cc, ok := rs.Get("check_with")
	if !ok {
		return
	}
	e.stats.RulesEvaluated++
	emit := func(msg string) {
		e.fail(docPath, schemaPath, cerrors.CodeCheckWith, "check_with", cc, v, msg)
	}
	if err := e.opts.Callables.CheckWith(cc, docPath, v, emit); err != nil {
		e.fail(docPath, schemaPath, cerrors.CodeCheckWith, "check_with", cc, v, err.Error())
	}
}

// resolveDependencyPath resolves a dot-notation dependency key against
// the current siblings map or the engine's root document, per §4.G.8:
// a leading "^" resets the lookup to root_document, "^^" is a literal
// caret, and each "." separates a path segment naming a child field.
func (e *Engine) resolveDependencyPath(siblings *value.Map, key string) (value.Value, bool) {
	base := value.Value(siblings)
	if strings.HasPrefix(key, "^^") {
		key = key[1:] // consume one caret, keep the other literal
	} else if strings.HasPrefix(key, "^") {
		base = e.root
		key = key[1:]
		key = strings.TrimPrefix(key, ".")
	}

	segments := strings.Split(key, ".")
	cur := base
	for _, seg := range segments {
		m, ok := cur.(*value.Map)
		if !ok {
			return nil, false
		}
		v, ok := m.GetString(seg)
		if !ok {
			return nil, false
		}
		cur = v
	}
	if _, isNull := cur.(value.Null); isNull && e.opts.IgnoreNoneValues {
		return nil, false
	}
	return cur, true
}

func (e *Engine) evalDependencies(docPath, schemaPath cerrors.Path, siblings *value.Map, field value.Value, rs schema.RuleSet) {
	dc, ok := rs.Get("dependencies")
	if !ok {
		return
	}
	e.stats.RulesEvaluated++

	unmet := func(key string, allowed value.Value) {
		e.fail(docPath, schemaPath, cerrors.CodeDependency, "dependencies", dc, nil, key, allowed)
	}

	switch x := dc.(type) {
	case value.Seq:
		for _, e2 := range x {
			key, ok := e2.(value.String)
			if !ok {
				continue
			}
			if _, ok := e.resolveDependencyPath(siblings, string(key)); !ok {
				unmet(string(key), nil)
			}
		}
	case *value.Map:
		for _, k := range x.Keys() {
			key, ok := k.(value.String)
			if !ok {
				continue
			}
			allowed, _ := x.Get(k)
			got, ok := e.resolveDependencyPath(siblings, string(key))
			if !ok {
				unmet(string(key), allowed)
				continue
			}
			if value.Elements(allowed) != nil && !value.Contains(allowed, got) {
				unmet(string(key), allowed)
			}
		}
	}
}

func (e *Engine) evalExcludes(docPath, schemaPath cerrors.Path, siblings *value.Map, field value.Value, rs schema.RuleSet) {
	xc, ok := rs.Get("excludes")
	if !ok {
		return
	}
	e.stats.RulesEvaluated++
	names := typeNames(xc)
	for _, name := range names {
		if sv, ok := siblings.GetString(name); ok {
			if _, isNull := sv.(value.Null); isNull && e.opts.IgnoreNoneValues {
				continue
			}
			e.fail(docPath, schemaPath, cerrors.CodeExcludes, "excludes", xc, nil, name)
		}
	}
}
