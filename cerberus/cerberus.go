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

// Package cerberus is the public driver (§4.H): it orchestrates
// meta-validation, normalization, and validation for one invocation
// and exposes the result through a small facade, grounded on the
// teacher's top-level cue.Context/cue.Value facade (package cue lives
// in its own subdirectory of the module root the same way this
// package does).
package cerberus

import (
	"fmt"

	"cerberus.dev/go/callables"
	"cerberus.dev/go/cerrors"
	"cerberus.dev/go/normalize"
	"cerberus.dev/go/schema"
	"cerberus.dev/go/schema/meta"
	"cerberus.dev/go/types"
	"cerberus.dev/go/validate"
	"cerberus.dev/go/value"
)

// Option configures a Validator, in the functional-options style the
// teacher uses for cue.Context construction (cue/context.go).
type Option func(*config)

type config struct {
	allowUnknown     bool
	requireAll       bool
	purgeUnknown     bool
	purgeReadonly    bool
	ignoreNoneValues bool
	errorHandler     cerrors.Handler
	schemaRegistry   *schema.SchemaRegistry
	ruleSetRegistry  *schema.RuleSetRegistry
	types            *types.Registry
	callables        *callables.Registry
}

// AllowUnknown permits fields not declared in the schema.
func AllowUnknown() Option { return func(c *config) { c.allowUnknown = true } }

// RequireAll treats every schema field as required unless it
// explicitly sets required: false.
func RequireAll() Option { return func(c *config) { c.requireAll = true } }

// PurgeUnknown drops undeclared fields during normalization instead of
// rejecting them during validation.
func PurgeUnknown() Option { return func(c *config) { c.purgeUnknown = true } }

// PurgeReadonly drops readonly fields during normalization.
func PurgeReadonly() Option { return func(c *config) { c.purgeReadonly = true } }

// IgnoreNoneValues treats a Null field as if it were absent for
// required/dependencies/type purposes (see SPEC_FULL.md's
// "Supplemented features").
func IgnoreNoneValues() Option { return func(c *config) { c.ignoreNoneValues = true } }

// WithErrorHandler overrides the default error-output handler.
func WithErrorHandler(h cerrors.Handler) Option {
	return func(c *config) { c.errorHandler = h }
}

// WithSchemaRegistry supplies a named-schema registry for reference
// resolution (§4.D).
func WithSchemaRegistry(r *schema.SchemaRegistry) Option {
	return func(c *config) { c.schemaRegistry = r }
}

// WithRuleSetRegistry supplies a named-rule-set registry.
func WithRuleSetRegistry(r *schema.RuleSetRegistry) Option {
	return func(c *config) { c.ruleSetRegistry = r }
}

// WithTypes overrides the type catalog (§4.B); defaults to
// types.Default().
func WithTypes(r *types.Registry) Option {
	return func(c *config) { c.types = r }
}

// WithCallables supplies the extension-point registry (§6) used to
// resolve coerce/default_setter/rename_handler/check_with references.
func WithCallables(r *callables.Registry) Option {
	return func(c *config) { c.callables = r }
}

// Validator is Cerberus's instance-like entry point: state (the last
// document, its errors, the resolved schema) is instance-local, so a
// single Validator must not be shared across concurrent goroutines
// (§5), but independent Validators may run concurrently.
type Validator struct {
	cfg config

	document value.Value
	stash    *cerrors.Stash
	stats    validate.Stats
}

// New returns a Validator configured by opts.
func New(opts ...Option) *Validator {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.types == nil {
		cfg.types = types.Default()
	}
	if cfg.callables == nil {
		cfg.callables = callables.NewRegistry()
	}
	if cfg.errorHandler == nil {
		cfg.errorHandler = cerrors.NewDefaultHandler()
	}
	return &Validator{cfg: cfg, stash: cerrors.NewStash()}
}

// Validate meta-validates s, normalizes doc against s, then validates
// the normalized document, storing the result for the accessor
// methods. update suppresses "required" errors for fields missing from
// doc (§4.G). It reports true iff validation produced no errors.
func (v *Validator) Validate(doc value.Value, s schema.Schema, update bool) (bool, error) {
	if err := v.metaValidate(s); err != nil {
		return false, err
	}

	docMap, ok := doc.(*value.Map)
	if !ok {
		return false, &cerrors.DocumentError{Msg: fmt.Sprintf("document must be a mapping, got %s", doc.Kind())}
	}

	ne := normalize.New(normalize.Options{
		AllowUnknown:     v.cfg.allowUnknown,
		PurgeUnknown:     v.cfg.purgeUnknown,
		PurgeReadonly:    v.cfg.purgeReadonly,
		IgnoreNoneValues: v.cfg.ignoreNoneValues,
		Callables:        v.cfg.callables,
		SchemaRegistry:   v.cfg.schemaRegistry,
		RuleSetRegistry:  v.cfg.ruleSetRegistry,
	})
	normalized := ne.Normalize(nil, nil, docMap, s)

	ve := validate.New(validate.Options{
		Update:           update,
		AllowUnknown:     v.cfg.allowUnknown,
		RequireAll:       v.cfg.requireAll,
		IgnoreNoneValues: v.cfg.ignoreNoneValues,
		Types:            v.cfg.types,
		Callables:        v.cfg.callables,
		SchemaRegistry:   v.cfg.schemaRegistry,
		RuleSetRegistry:  v.cfg.ruleSetRegistry,
	}, normalized)
	ve.Validate(nil, nil, normalized, s)

	v.document = normalized
	v.stash = cerrors.NewStash()
	v.stash.List = append(v.stash.List, ne.Errors()...)
	v.stash.List = append(v.stash.List, ve.Errors()...)
	v.stats = ve.Stats()

	return v.stash.Empty(), nil
}

func (v *Validator) metaValidate(s schema.Schema) error {
	errs := meta.Validate(s, meta.Config{
		SchemaRegistry:  v.cfg.schemaRegistry,
		RuleSetRegistry: v.cfg.ruleSetRegistry,
	})
	return meta.Combine(errs)
}

// Validated returns the normalized document if the last Validate call
// succeeded, or Null otherwise (§4.H).
func (v *Validator) Validated() value.Value {
	if !v.stash.Empty() {
		return value.Null{}
	}
	return v.document
}

// Normalized returns the document produced by normalization, run
// without validation.
func (v *Validator) Normalized(doc value.Value, s schema.Schema) (value.Value, error) {
	if err := v.metaValidate(s); err != nil {
		return nil, err
	}
	docMap, ok := doc.(*value.Map)
	if !ok {
		return nil, &cerrors.DocumentError{Msg: fmt.Sprintf("document must be a mapping, got %s", doc.Kind())}
	}
	ne := normalize.New(normalize.Options{
		AllowUnknown:     v.cfg.allowUnknown,
		PurgeUnknown:     v.cfg.purgeUnknown,
		PurgeReadonly:    v.cfg.purgeReadonly,
		IgnoreNoneValues: v.cfg.ignoreNoneValues,
		Callables:        v.cfg.callables,
		SchemaRegistry:   v.cfg.schemaRegistry,
		RuleSetRegistry:  v.cfg.ruleSetRegistry,
	})
	return ne.Normalize(nil, nil, docMap, s), nil
}

// Errors returns the accumulated errors from the last Validate call.
func (v *Validator) Errors() cerrors.List { return v.stash.List }

// CorrelationID returns the correlation ID stamped onto the error
// stash of the last Validate call, so a host running a cluster of
// independent validators (§5) can tie a particular result back to the
// invocation that produced it.
func (v *Validator) CorrelationID() string { return v.stash.ID }

// Document returns the document produced by the last Validate call
// (normalized, regardless of success).
func (v *Validator) Document() value.Value { return v.document }

// DocumentErrorTree projects Errors() by document path.
func (v *Validator) DocumentErrorTree() *cerrors.Tree {
	return cerrors.DocumentErrorTree(v.stash.List)
}

// SchemaErrorTree projects Errors() by schema path.
func (v *Validator) SchemaErrorTree() *cerrors.Tree { return cerrors.SchemaErrorTree(v.stash.List) }

// Handle runs the configured error handler over the accumulated
// errors, producing the §6 output-contract representation.
func (v *Validator) Handle() any { return v.cfg.errorHandler.Handle(v.stash.List) }

// Stats reports field/rule/child-validator counters from the last
// Validate call (see SPEC_FULL.md's "Supplemented features").
func (v *Validator) Stats() validate.Stats { return v.stats }
