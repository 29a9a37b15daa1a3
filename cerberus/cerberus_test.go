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

package cerberus

import (
	"strconv"
	"testing"

	"cerberus.dev/go/callables"
	"cerberus.dev/go/cerrors"
	"cerberus.dev/go/schema"
	"cerberus.dev/go/value"
)

func intCoercerRegistry() *callables.Registry {
	r := callables.NewRegistry()
	r.RegisterCoercer("int", func(v value.Value, args []string) (value.Value, error) {
		s, ok := v.(value.String)
		if !ok {
			return v, nil
		}
		n, err := strconv.ParseInt(string(s), 10, 64)
		if err != nil {
			return nil, err
		}
		return value.NewInt(n), nil
	})
	return r
}

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

func TestValidatorScenario1Valid(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"name": ruleSet(map[string]value.Value{"type": value.String("string")}),
	})
	d := doc(map[string]value.Value{"name": value.String("john doe")})

	v := New()
	ok, err := v.Validate(d, s, false)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || !v.Errors().Empty() {
		t.Fatalf("expected valid, got errors: %v", v.Errors())
	}
}

func TestValidatorCorrelationIDChangesPerInvocation(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"name": ruleSet(map[string]value.Value{"type": value.String("string")}),
	})
	d := doc(map[string]value.Value{"name": value.String("john doe")})

	v := New()
	before := v.CorrelationID()
	if before == "" {
		t.Fatal("expected a non-empty correlation ID before any Validate call")
	}
	if _, err := v.Validate(d, s, false); err != nil {
		t.Fatal(err)
	}
	after := v.CorrelationID()
	if after == "" {
		t.Fatal("expected a non-empty correlation ID after Validate")
	}
	if after == before {
		t.Fatal("expected Validate to stamp a fresh correlation ID for its invocation")
	}
}

func TestValidatorScenario3Coerce(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"amount": ruleSet(map[string]value.Value{"type": value.String("integer"), "coerce": value.String("int")}),
	})
	d := doc(map[string]value.Value{"amount": value.String("1")})

	v := New(WithCallables(intCoercerRegistry()))
	ok, err := v.Validate(d, s, false)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("expected valid, got errors: %v", v.Errors())
	}
	normalized := v.Validated().(*value.Map)
	amount, _ := normalized.GetString("amount")
	n, convErr := amount.(value.Int).Int64()
	if convErr != nil || n != 1 {
		t.Fatalf("expected normalized amount=1, got %v (err=%v)", amount, convErr)
	}
}

func TestValidatorInvalidReturnsNullFromValidated(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"name": ruleSet(map[string]value.Value{"type": value.String("string")}),
	})
	d := doc(map[string]value.Value{"name": value.NewInt(1)})

	v := New()
	ok, _ := v.Validate(d, s, false)
	if ok {
		t.Fatal("expected invalid")
	}
	if _, isNull := v.Validated().(value.Null); !isNull {
		t.Fatalf("expected Validated() to report Null on failure, got %v", v.Validated())
	}
}

func TestValidatorSchemaErrorRaisesBeforeDocumentTraversal(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"name": ruleSet(map[string]value.Value{"bogus_rule": value.String("x")}),
	})
	d := doc(map[string]value.Value{"name": value.String("x")})

	v := New()
	_, err := v.Validate(d, s, false)
	if err == nil {
		t.Fatal("expected a schema error for an unknown rule")
	}
}

// TestValidatorAliasSchemaCanonicalized drives a real Validate call
// with a schema that uses the deprecated "validator" alias instead of
// "check_with" (§6). If canonicalization weren't wired into the real
// load path, meta-validation would reject "validator" as unknown
// before the document is ever touched.
func TestValidatorAliasSchemaCanonicalized(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"name": ruleSet(map[string]value.Value{"type": value.String("string"), "validator": value.String("reject")}),
	})
	d := doc(map[string]value.Value{"name": value.String("x")})

	callablesReg := callables.NewRegistry()
	callablesReg.RegisterChecker("reject", func(path cerrors.Path, v value.Value, args []string, emit func(msg string)) {
		emit("always rejected")
	})

	v := New(WithCallables(callablesReg))
	ok, err := v.Validate(d, s, false)
	if err != nil {
		t.Fatalf("expected the alias to canonicalize cleanly, got schema error: %v", err)
	}
	if ok {
		t.Fatal("expected the aliased check_with rule to fail validation")
	}
}

// TestValidatorTypesaverSchemaCanonicalized drives a real Validate call
// with a schema that uses the `anyof_min` typesaver shorthand (§6).
// With canonicalization wired in, it behaves exactly like an explicit
// anyof: [{min: 0}, {min: 100}].
func TestValidatorTypesaverSchemaCanonicalized(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"amount": ruleSet(map[string]value.Value{
			"type":      value.String("integer"),
			"anyof_min": value.Seq{value.NewInt(0), value.NewInt(100)},
		}),
	})

	v := New()
	ok, err := v.Validate(doc(map[string]value.Value{"amount": value.NewInt(50)}), s, false)
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}
	if !ok {
		t.Fatalf("expected amount=50 to satisfy min:0, got errors: %v", v.Errors())
	}

	v2 := New()
	ok2, err := v2.Validate(doc(map[string]value.Value{"amount": value.NewInt(-5)}), s, false)
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}
	if ok2 {
		t.Fatal("expected amount=-5 to satisfy neither min:0 nor min:100")
	}
}

func TestValidatorHandleProducesNestedMapping(t *testing.T) {
	s := buildSchema(t, map[string]value.Value{
		"age": ruleSet(map[string]value.Value{"type": value.String("integer"), "min": value.NewInt(10)}),
	})
	d := doc(map[string]value.Value{"age": value.NewInt(5)})

	v := New()
	v.Validate(d, s, false)
	out, ok := v.Handle().(map[string]any)
	if !ok {
		t.Fatalf("expected a map[string]any, got %T", v.Handle())
	}
	if _, ok := out["age"]; !ok {
		t.Fatalf("expected an 'age' key in handled output, got %v", out)
	}
}
