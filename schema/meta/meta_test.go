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
	"testing"

	"cerberus.dev/go/schema"
	"cerberus.dev/go/value"
)

func mustSchema(t *testing.T, fields map[string]map[string]value.Value) schema.Schema {
	t.Helper()
	m := value.NewMap()
	for field, rules := range fields {
		rm := value.NewMap()
		for rule, v := range rules {
			rm.SetString(rule, v)
		}
		m.SetString(field, rm)
	}
	s, err := schema.FromValue(m)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestValidateAcceptsBuiltinSchema(t *testing.T) {
	s := mustSchema(t, map[string]map[string]value.Value{
		"name": {"type": value.String("string")},
		"age":  {"type": value.String("integer"), "min": value.NewInt(10)},
	})
	if errs := Validate(s, Config{}); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateRejectsUnknownRule(t *testing.T) {
	s := mustSchema(t, map[string]map[string]value.Value{
		"name": {"bogus_rule": value.String("x")},
	})
	errs := Validate(s, Config{})
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
}

func TestValidateRejectsBadTypeShape(t *testing.T) {
	s := mustSchema(t, map[string]map[string]value.Value{
		"name": {"type": value.NewInt(1)},
	})
	errs := Validate(s, Config{})
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error for bad type shape, got %v", errs)
	}
}

func TestValidateUnresolvedSchemaReference(t *testing.T) {
	m := value.NewMap()
	rm := value.NewMap()
	rm.SetString("schema", value.String("missing"))
	m.SetString("child", rm)
	s, err := schema.FromValue(m)
	if err != nil {
		t.Fatal(err)
	}
	errs := Validate(s, Config{SchemaRegistry: schema.NewSchemaRegistry()})
	if len(errs) != 1 {
		t.Fatalf("expected one unresolved-reference error, got %v", errs)
	}
}

func TestValidateCyclicSchemaReferenceTerminates(t *testing.T) {
	reg := schema.NewSchemaRegistry()
	m := value.NewMap()
	rm := value.NewMap()
	rm.SetString("schema", value.String("self"))
	m.SetString("child", rm)
	s, err := schema.FromValue(m)
	if err != nil {
		t.Fatal(err)
	}
	reg.Set("self", s)

	// The point of this test is that Validate returns at all for a
	// self-referential named schema; the visiting-set cycle guard in
	// followSchemaRef is what makes that true.
	if errs := Validate(s, Config{SchemaRegistry: reg}); len(errs) != 0 {
		t.Fatalf("expected no errors for a valid cyclic schema, got %v", errs)
	}
}
