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

// Package callables implements §6's extension points: the named
// functions a schema can reference for coerce, default_setter,
// rename_handler, and check_with. A schema loaded from YAML/JSON can
// only name a callable by string, so a Registry resolves that name
// (optionally with shell-style arguments, split with
// github.com/google/shlex the way a host shells out to an external
// checker) to the Go function the embedding host registered.
package callables

import (
	"fmt"

	"cerberus.dev/go/cerrors"
	"cerberus.dev/go/value"
	"github.com/google/shlex"
)

// Coercer transforms a field's value during normalization (§4.F.5).
// args are any words following the callable's name in its reference
// string, e.g. "clamp 0 100" resolves the "clamp" coercer with
// args=["0","100"].
type Coercer func(v value.Value, args []string) (value.Value, error)

// DefaultSetter computes a field's default from its partially-built
// sibling mapping (§4.F.4).
type DefaultSetter func(siblings *value.Map, args []string) (value.Value, error)

// RenameHandler computes a new key for an unmatched field (§4.F.1).
type RenameHandler func(field string, args []string) (string, error)

// Checker implements check_with (§4.G step 7): it inspects a field's
// value and reports problems through emit.
type Checker func(path cerrors.Path, v value.Value, args []string, emit func(msg string))

// Registry is a named collection of callables, analogous to
// schema.SchemaRegistry/RuleSetRegistry but for the extension points
// rather than schema/rule-set data.
type Registry struct {
	coercers  map[string]Coercer
	setters   map[string]DefaultSetter
	renamers  map[string]RenameHandler
	checkers  map[string]Checker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		coercers: make(map[string]Coercer),
		setters:  make(map[string]DefaultSetter),
		renamers: make(map[string]RenameHandler),
		checkers: make(map[string]Checker),
	}
}

func (r *Registry) RegisterCoercer(name string, fn Coercer)             { r.coercers[name] = fn }
func (r *Registry) RegisterDefaultSetter(name string, fn DefaultSetter) { r.setters[name] = fn }
func (r *Registry) RegisterRenameHandler(name string, fn RenameHandler) { r.renamers[name] = fn }
func (r *Registry) RegisterChecker(name string, fn Checker)             { r.checkers[name] = fn }

// split parses a callable reference string into its name and
// arguments, e.g. "clamp 0 100" -> ("clamp", ["0", "100"]).
func split(ref string) (name string, args []string, err error) {
	words, err := shlex.Split(ref)
	if err != nil {
		return "", nil, fmt.Errorf("callables: invalid reference %q: %w", ref, err)
	}
	if len(words) == 0 {
		return "", nil, fmt.Errorf("callables: empty reference")
	}
	return words[0], words[1:], nil
}

// refs normalizes a constraint that may be a single string reference
// or a chain (sequence of string references), per §3's "callable ref
// (or chain)" wording used throughout the rule taxonomy.
func refs(constraint value.Value) ([]string, error) {
	switch x := constraint.(type) {
	case value.String:
		return []string{string(x)}, nil
	case value.Seq:
		out := make([]string, len(x))
		for i, e := range x {
			s, ok := e.(value.String)
			if !ok {
				return nil, fmt.Errorf("callables: chain element %d is not a string reference", i)
			}
			out[i] = string(s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("callables: expected a string reference or a chain of them, got %s", constraint.Kind())
	}
}

// Coerce resolves and runs a coerce constraint's full chain in order,
// feeding each stage's output into the next (§4.F.5).
func (r *Registry) Coerce(constraint value.Value, v value.Value) (value.Value, error) {
	chain, err := refs(constraint)
	if err != nil {
		return nil, err
	}
	for _, ref := range chain {
		name, args, err := split(ref)
		if err != nil {
			return nil, err
		}
		fn, ok := r.coercers[name]
		if !ok {
			return nil, fmt.Errorf("callables: unknown coercer %q", name)
		}
		v, err = fn(v, args)
		if err != nil {
			return nil, fmt.Errorf("coercer %q: %w", name, err)
		}
	}
	return v, nil
}

// DefaultSetter resolves and runs a default_setter constraint's chain.
// Every stage receives the same sibling map, and the result is the
// value returned by the last stage.
func (r *Registry) DefaultSetter(constraint value.Value, siblings *value.Map) (value.Value, error) {
	chain, err := refs(constraint)
	if err != nil {
		return nil, err
	}
	var result value.Value
	for _, ref := range chain {
		name, args, err := split(ref)
		if err != nil {
			return nil, err
		}
		fn, ok := r.setters[name]
		if !ok {
			return nil, fmt.Errorf("callables: unknown default_setter %q", name)
		}
		result, err = fn(siblings, args)
		if err != nil {
			return nil, fmt.Errorf("default_setter %q: %w", name, err)
		}
	}
	return result, nil
}

// RenameHandler resolves and runs a rename_handler constraint's chain.
func (r *Registry) RenameHandler(constraint value.Value, field string) (string, error) {
	chain, err := refs(constraint)
	if err != nil {
		return "", err
	}
	for _, ref := range chain {
		name, args, err := split(ref)
		if err != nil {
			return "", err
		}
		fn, ok := r.renamers[name]
		if !ok {
			return "", fmt.Errorf("callables: unknown rename_handler %q", name)
		}
		field, err = fn(field, args)
		if err != nil {
			return "", fmt.Errorf("rename_handler %q: %w", name, err)
		}
	}
	return field, nil
}

// CheckWith resolves and runs every checker in a check_with
// constraint's chain, forwarding emitted messages to emit.
func (r *Registry) CheckWith(constraint value.Value, path cerrors.Path, v value.Value, emit func(msg string)) error {
	chain, err := refs(constraint)
	if err != nil {
		return err
	}
	for _, ref := range chain {
		name, args, err := split(ref)
		if err != nil {
			return err
		}
		fn, ok := r.checkers[name]
		if !ok {
			return fmt.Errorf("callables: unknown check_with %q", name)
		}
		fn(path, v, args, emit)
	}
	return nil
}
