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

// Package meta implements §4.E's schema-of-schemas: the authority for
// which rules exist and what shapes their constraint values may take.
// It is re-architected per §9's "Dynamic dispatch of rules" note as a
// table (rule name -> handler metadata) rather than a hard-coded
// switch, the same shape the teacher uses for its builtin op tables
// (each builtin package populates a shared registration table at
// init()); see internal/builtin.
package meta

import (
	"sync"

	"cerberus.dev/go/value"
)

// Phase determines where in the per-field pipeline a rule is
// evaluated (§9 "Phase determines ordering within a field").
type Phase int

const (
	// PhaseNormalizeRename rules run during the rename step (§4.F.1).
	PhaseNormalizeRename Phase = iota
	// PhaseNormalizePurge rules run during the purge steps (§4.F.2-3).
	PhaseNormalizePurge
	// PhaseNormalizeDefault rules run during the defaults step (§4.F.4).
	PhaseNormalizeDefault
	// PhaseNormalizeCoerce rules run during the coerce step (§4.F.5).
	PhaseNormalizeCoerce
	// PhaseMandatory rules always run first, in the fixed order of
	// §4.G: type precedes every rule except nullable and readonly.
	PhaseMandatory
	// PhaseNormal is every other validation rule (§4.G step 7).
	PhaseNormal
)

// ConstraintCheck validates the *shape* of a rule's constraint value
// (not the document value it will be applied to). It returns a
// non-empty message on failure.
type ConstraintCheck func(constraint value.Value) string

// RuleDef is one entry of the schema-of-schemas: the rule's name, the
// phase it runs in, and how to sanity-check its constraint value.
type RuleDef struct {
	Name string
	Phase Phase
	// AllowedKinds, if nonzero, restricts the Kind of the constraint
	// value itself (e.g. "regex" requires StringKind).
	AllowedKinds value.Kind
	// Check, if set, performs a deeper shape check beyond Kind, e.g.
	// "allowed requires a container constraint" (§6).
	Check ConstraintCheck
	// IsNormalization marks rules belonging to the normalization
	// engine rather than the validation engine (§3 invariant 2: these
	// may never appear evaluated from inside a combinator).
	IsNormalization bool
}

// Table is the schema-of-schemas: a registry of RuleDefs, mutable so
// extensions can add entries (§4.E: "Any user-extended rule
// contributes a constraint sub-schema merged into the schema-of-
// schemas at registration time").
type Table struct {
	mu   sync.RWMutex
	defs map[string]RuleDef
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the process-wide table pre-populated with the §3
// built-in rule catalog. Per §9's registries guidance, embedders
// needing isolation should build their own Table via NewTable and
// RegisterBuiltins.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable()
		RegisterBuiltins(defaultTable)
	})
	return defaultTable
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{defs: make(map[string]RuleDef)}
}

// Register adds or replaces a rule definition.
func (t *Table) Register(def RuleDef) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.defs[def.Name] = def
}

// Lookup returns a rule's definition, if registered.
func (t *Table) Lookup(name string) (RuleDef, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.defs[name]
	return d, ok
}

// Names reports every registered rule name.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.defs))
	for k := range t.defs {
		out = append(out, k)
	}
	return out
}
