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

package normalize

import (
	"errors"
	"testing"

	"cerberus.dev/go/callables"
	"cerberus.dev/go/schema"
	"cerberus.dev/go/value"
)

func ruleSet(rules map[string]value.Value) value.Value {
	m := value.NewMap()
	for k, v := range rules {
		m.SetString(k, v)
	}
	return m
}

func buildSchema(t *testing.T, fields map[string]value.Value) schema.Schema {
	t.Helper()
	m := value.NewMap()
	for k, v := range fields {
		m.SetString(k, v)
	}
	s, err := schema.FromValue(m)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func doc(fields map[string]value.Value) *value.Map {
	m := value.NewMap()
	for k, v := range fields {
		m.SetString(k, v)
	}
	return m
}

func TestNormalizeDefaultLiteral(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"amount": ruleSet(map[string]value.Value{"type": value.String("integer")}),
		"kind":   ruleSet(map[string]value.Value{"type": value.String("string"), "default": value.String("purchase")}),
	})
	d := doc(map[string]value.Value{"amount": value.NewInt(1)})

	e := New(Options{})
	out := e.Normalize(nil, nil, d, s).(*value.Map)

	kind, ok := out.GetString("kind")
	if !ok || kind.(value.String) != "purchase" {
		t.Fatalf("expected default kind=purchase, got %v", kind)
	}
	if !e.Errors().Empty() {
		t.Fatalf("unexpected errors: %v", e.Errors())
	}
}

func TestNormalizeCoerce(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"amount": ruleSet(map[string]value.Value{"type": value.String("integer"), "coerce": value.String("int")}),
	})
	d := doc(map[string]value.Value{"amount": value.String("1")})

	reg := callables.NewRegistry()
	reg.RegisterCoercer("int", func(v value.Value, args []string) (value.Value, error) {
		s, ok := v.(value.String)
		if !ok {
			return v, nil
		}
		n := int64(0)
		for _, c := range string(s) {
			n = n*10 + int64(c-'0')
		}
		return value.NewInt(n), nil
	})

	e := New(Options{Callables: reg})
	out := e.Normalize(nil, nil, d, s).(*value.Map)

	amount, _ := out.GetString("amount")
	if n, err := amount.(value.Int).Int64(); err != nil || n != 1 {
		t.Fatalf("expected coerced amount=1, got %v", amount)
	}
}

func TestNormalizeCoerceFailureIsRecorded(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"amount": ruleSet(map[string]value.Value{"coerce": value.String("boom")}),
	})
	d := doc(map[string]value.Value{"amount": value.String("x")})

	reg := callables.NewRegistry()
	reg.RegisterCoercer("boom", func(v value.Value, args []string) (value.Value, error) {
		return nil, errors.New("coercion always fails")
	})

	e := New(Options{Callables: reg})
	out := e.Normalize(nil, nil, d, s).(*value.Map)

	amount, _ := out.GetString("amount")
	if amount.(value.String) != "x" {
		t.Fatalf("expected identity fallback on coerce failure, got %v", amount)
	}
	if e.Errors().Empty() {
		t.Fatal("expected a coerce-failed error")
	}
}

func TestNormalizeRenameCollision(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"a": ruleSet(map[string]value.Value{"rename": value.String("b")}),
	})
	d := doc(map[string]value.Value{"a": value.NewInt(1), "b": value.NewInt(2)})

	e := New(Options{})
	out := e.Normalize(nil, nil, d, s).(*value.Map)

	if !out.HasString("a") {
		t.Fatal("expected rename to be rejected, leaving 'a' in place")
	}
	if e.Errors().Empty() {
		t.Fatal("expected a rename-collision error")
	}
}

func TestNormalizePurgeUnknownAndReadonly(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"keep":     ruleSet(map[string]value.Value{"type": value.String("string")}),
		"archived": ruleSet(map[string]value.Value{"readonly": value.Bool(true)}),
	})
	d := doc(map[string]value.Value{
		"keep":     value.String("x"),
		"archived": value.NewInt(1),
		"stray":    value.NewInt(2),
	})

	e := New(Options{PurgeUnknown: true, PurgeReadonly: true})
	out := e.Normalize(nil, nil, d, s).(*value.Map)

	if out.HasString("stray") {
		t.Fatal("expected unknown field purged")
	}
	if out.HasString("archived") {
		t.Fatal("expected readonly field purged")
	}
	if !out.HasString("keep") {
		t.Fatal("expected known field retained")
	}
}

func TestNormalizeDefaultSetterSiblingOrder(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"first":  ruleSet(map[string]value.Value{"default": value.NewInt(2)}),
		"second": ruleSet(map[string]value.Value{"default_setter": value.String("double_first")}),
	})
	d := doc(map[string]value.Value{})

	reg := callables.NewRegistry()
	reg.RegisterDefaultSetter("double_first", func(siblings *value.Map, args []string) (value.Value, error) {
		first, ok := siblings.GetString("first")
		if !ok {
			return nil, errors.New("first not yet set")
		}
		n, err := first.(value.Int).Int64()
		if err != nil {
			return nil, err
		}
		return value.NewInt(n * 2), nil
	})

	e := New(Options{Callables: reg})
	out := e.Normalize(nil, nil, d, s).(*value.Map)

	second, ok := out.GetString("second")
	if !ok {
		t.Fatal("expected second to be set")
	}
	if n, err := second.(value.Int).Int64(); err != nil || n != 4 {
		t.Fatalf("expected second=4, got %v", second)
	}
}

func TestNormalizeDefaultSetterCycleReportsError(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"a": ruleSet(map[string]value.Value{"default_setter": value.String("needs_b")}),
		"b": ruleSet(map[string]value.Value{"default_setter": value.String("needs_a")}),
	})
	d := doc(map[string]value.Value{})

	reg := callables.NewRegistry()
	reg.RegisterDefaultSetter("needs_b", func(siblings *value.Map, args []string) (value.Value, error) {
		if _, ok := siblings.GetString("b"); !ok {
			return nil, errors.New("b not set")
		}
		return value.NewInt(1), nil
	})
	reg.RegisterDefaultSetter("needs_a", func(siblings *value.Map, args []string) (value.Value, error) {
		if _, ok := siblings.GetString("a"); !ok {
			return nil, errors.New("a not set")
		}
		return value.NewInt(1), nil
	})

	e := New(Options{Callables: reg})
	e.Normalize(nil, nil, d, s)

	if e.Errors().Empty() {
		t.Fatal("expected a default-setter cycle to be reported")
	}
}

func TestNormalizeRecursesIntoNestedSchema(t *testing.T) {
	nested := buildSchema(t, map[string]value.Value{
		"city": ruleSet(map[string]value.Value{"type": value.String("string"), "default": value.String("unknown")}),
	})
	s := buildSchema(t, map[string]value.Value{
		"address": ruleSet(map[string]value.Value{"schema": nested.Value()}),
	})
	d := doc(map[string]value.Value{"address": value.NewMap()})

	e := New(Options{})
	out := e.Normalize(nil, nil, d, s).(*value.Map)

	address, ok := out.GetString("address")
	if !ok {
		t.Fatal("expected address to survive")
	}
	city, ok := address.(*value.Map).GetString("city")
	if !ok || city.(value.String) != "unknown" {
		t.Fatalf("expected nested default city=unknown, got %v", city)
	}
}
