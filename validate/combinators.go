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

// evalCombinators implements §4.G.9: each of allof/anyof/oneof/noneof
// replaces the current rule-set with each alternative in turn, runs a
// single-field child validator, and judges overall success from the
// count of alternatives that validated cleanly. The typesaver
// `<combinator>_<rule>` shorthand is expanded to this form at
// schema-load time (package schema's Canonicalize), so by the time
// validation runs every combinator constraint is already a plain
// sequence of rule-sets.
func (e *Engine) evalCombinators(docPath, schemaPath cerrors.Path, v value.Value, rs schema.RuleSet) {
	e.evalCombinator(docPath, schemaPath, v, rs, "allof", func(successes, n int) bool { return successes == n })
	e.evalCombinator(docPath, schemaPath, v, rs, "anyof", func(successes, n int) bool { return successes >= 1 })
	e.evalCombinator(docPath, schemaPath, v, rs, "oneof", func(successes, n int) bool { return successes == 1 })
	e.evalCombinator(docPath, schemaPath, v, rs, "noneof", func(successes, n int) bool { return successes == 0 })
}

func (e *Engine) evalCombinator(docPath, schemaPath cerrors.Path, v value.Value, rs schema.RuleSet, name string, succeeds func(successes, n int) bool) {
	cc, ok := rs.Get(name)
	if !ok {
		return
	}
	e.stats.RulesEvaluated++
	alts, ok := cc.(value.Seq)
	if !ok || len(alts) == 0 {
		return
	}

	children := make([]*Engine, 0, len(alts))
	successes := 0
	for _, alt := range alts {
		altRS, err := schema.RuleSetFromValue(alt)
		if err != nil {
			continue
		}
		child := e.validateSingleField(docPath, schemaPath, v, altRS)
		children = append(children, child)
		if child.Errors().Empty() {
			successes++
		}
	}
	e.stats.ChildrenSpawned += len(children)
	for _, c := range children {
		e.stats.Add(c.stats)
	}

	if succeeds(successes, len(alts)) {
		return
	}

	var all cerrors.List
	for _, c := range children {
		all = append(all, c.Errors()...)
	}
	e.errs.Add(cerrors.Group(docPath, schemaPath, name, all))
}
