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
	"testing"

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

// Scenario 1: schema={name:{type:string}}, doc={name:"john doe"} -> valid.
func TestValidateScenario1Valid(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"name": ruleSet(map[string]value.Value{"type": value.String("string")}),
	})
	d := doc(map[string]value.Value{"name": value.String("john doe")})

	e := New(Options{}, d)
	ok := e.Validate(nil, nil, d, s)
	if !ok || !e.Errors().Empty() {
		t.Fatalf("expected valid, got errors: %v", e.Errors())
	}
}

// Scenario 2: type mismatch + min violation, both reported.
func TestValidateScenario2Invalid(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"name": ruleSet(map[string]value.Value{"type": value.String("string")}),
		"age":  ruleSet(map[string]value.Value{"type": value.String("integer"), "min": value.NewInt(10)}),
	})
	d := doc(map[string]value.Value{"name": value.NewInt(1337), "age": value.NewInt(5)})

	e := New(Options{}, d)
	ok := e.Validate(nil, nil, d, s)
	if ok {
		t.Fatal("expected invalid")
	}
	if len(e.Errors()) != 2 {
		t.Fatalf("expected 2 errors (name type mismatch, age min violation), got %d: %v", len(e.Errors()), e.Errors())
	}
}

// Scenario 5: anyof with two disjoint ranges, value satisfies neither.
func TestValidateScenario5AnyofAllFail(t *testing.T) {
	alt1 := ruleSet(map[string]value.Value{"min": value.NewInt(0), "max": value.NewInt(10)})
	alt2 := ruleSet(map[string]value.Value{"min": value.NewInt(100), "max": value.NewInt(110)})
	s := buildSchema(t, map[string]value.Value{
		"prop1": ruleSet(map[string]value.Value{
			"type":  value.String("number"),
			"anyof": value.Seq{alt1, alt2},
		}),
	})
	d := doc(map[string]value.Value{"prop1": value.NewInt(55)})

	e := New(Options{}, d)
	ok := e.Validate(nil, nil, d, s)
	if ok {
		t.Fatal("expected invalid")
	}
	if len(e.Errors()) != 1 {
		t.Fatalf("expected a single anyof group error, got %d: %v", len(e.Errors()), e.Errors())
	}
	group := e.Errors()[0]
	if group.Rule != "anyof" || len(group.Info) != 2 {
		t.Fatalf("expected anyof group with 2 child failures, got %+v", group)
	}
}

// Scenario 6: dependency unmet.
func TestValidateScenario6DependencyUnmet(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"field1": ruleSet(map[string]value.Value{"required": value.Bool(false)}),
		"field2": ruleSet(map[string]value.Value{
			"required":     value.Bool(true),
			"dependencies": value.Seq{value.String("field1")},
		}),
	})
	d := doc(map[string]value.Value{"field2": value.NewInt(7)})

	e := New(Options{}, d)
	ok := e.Validate(nil, nil, d, s)
	if ok {
		t.Fatal("expected invalid: unmet dependency")
	}
	found := false
	for _, err := range e.Errors() {
		if err.Rule == "dependencies" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a dependencies error, got %v", e.Errors())
	}
}

func TestValidateUnknownFieldRejected(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"name": ruleSet(map[string]value.Value{"type": value.String("string")}),
	})
	d := doc(map[string]value.Value{"name": value.String("x"), "extra": value.NewInt(1)})

	e := New(Options{}, d)
	if e.Validate(nil, nil, d, s) {
		t.Fatal("expected invalid due to unknown field")
	}
}

func TestValidateAllowUnknownPermitsExtraFields(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"name": ruleSet(map[string]value.Value{"type": value.String("string")}),
	})
	d := doc(map[string]value.Value{"name": value.String("x"), "extra": value.NewInt(1)})

	e := New(Options{AllowUnknown: true}, d)
	if !e.Validate(nil, nil, d, s) {
		t.Fatalf("expected valid with allow_unknown, got %v", e.Errors())
	}
}

func TestValidateUpdateModeSkipsRequired(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"name": ruleSet(map[string]value.Value{"type": value.String("string"), "required": value.Bool(true)}),
	})
	d := doc(map[string]value.Value{})

	e := New(Options{Update: true}, d)
	if !e.Validate(nil, nil, d, s) {
		t.Fatalf("expected update-mode to suppress required error, got %v", e.Errors())
	}
}

func TestValidateNullableShortCircuits(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"name": ruleSet(map[string]value.Value{"type": value.String("string"), "nullable": value.Bool(true)}),
	})
	d := doc(map[string]value.Value{"name": value.Null{}})

	e := New(Options{}, d)
	if !e.Validate(nil, nil, d, s) {
		t.Fatalf("expected nullable null to pass, got %v", e.Errors())
	}
}

func TestValidateNestedSchemaWrapsErrorsUnderGroup(t *testing.T) {
	nested := buildSchema(t, map[string]value.Value{
		"city": ruleSet(map[string]value.Value{"type": value.String("string")}),
	})
	s := buildSchema(t, map[string]value.Value{
		"address": ruleSet(map[string]value.Value{"schema": nested.Value()}),
	})
	d := doc(map[string]value.Value{"address": doc(map[string]value.Value{"city": value.NewInt(1)})})

	e := New(Options{}, d)
	if e.Validate(nil, nil, d, s) {
		t.Fatal("expected invalid")
	}
	if len(e.Errors()) != 1 || e.Errors()[0].Rule != "schema" {
		t.Fatalf("expected a single schema group error, got %v", e.Errors())
	}
}

func TestValidateDependenciesRootReset(t *testing.T) {
	d := doc(map[string]value.Value{"mode": value.String("x")})
	e := New(Options{}, d)
	v, ok := e.resolveDependencyPath(d, "^mode")
	if !ok || v.(value.String) != "x" {
		t.Fatalf("expected ^mode to resolve against root, got %v, %v", v, ok)
	}
}
