// Copyright 2018 The CUE Authors
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

package value

import "testing"

func TestKindIsAnyOf(t *testing.T) {
	if !NumberKind.IsAnyOf(IntKind) {
		t.Fatal("NumberKind should include IntKind")
	}
	if NumberKind.IsAnyOf(BoolKind) {
		t.Fatal("NumberKind must exclude BoolKind")
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		a, b Value
		want bool
	}{
		{NewInt(1), NewInt(1), true},
		{NewInt(1), NewInt(2), false},
		{String("a"), String("a"), true},
		{String("a"), Bytes("a"), false},
		{Seq{NewInt(1), String("x")}, Seq{NewInt(1), String("x")}, true},
		{Seq{NewInt(1)}, Seq{NewInt(2)}, false},
		{Set{NewInt(1), NewInt(2)}, Set{NewInt(2), NewInt(1)}, true},
		{Null{}, Null{}, true},
		{Null{}, Bool(false), false},
	}
	for _, c := range cases {
		if got := c.a.Equal(c.b); got != c.want {
			t.Errorf("%v.Equal(%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestIsEmpty(t *testing.T) {
	if !IsEmpty(String("")) {
		t.Error("empty string should be empty")
	}
	if IsEmpty(String("x")) {
		t.Error("non-empty string should not be empty")
	}
	if !IsEmpty(Seq{}) {
		t.Error("empty seq should be empty")
	}
	if IsEmpty(NewInt(0)) {
		t.Error("scalars are never reported empty")
	}
}

func TestContains(t *testing.T) {
	haystack := Seq{NewInt(1), NewInt(2), NewInt(3)}
	if !Contains(haystack, NewInt(2)) {
		t.Error("expected 2 in haystack")
	}
	if Contains(haystack, NewInt(9)) {
		t.Error("did not expect 9 in haystack")
	}
	if !Contains(String("abc"), String("abc")) {
		t.Error("scalar Contains should compare by Equal")
	}
}

func TestMapOrderAndClone(t *testing.T) {
	m := NewMap()
	m.SetString("b", NewInt(2))
	m.SetString("a", NewInt(1))
	m.SetString("b", NewInt(20))

	keys := m.Keys()
	if len(keys) != 2 || keys[0].String() != "b" || keys[1].String() != "a" {
		t.Fatalf("unexpected key order: %v", keys)
	}
	v, ok := m.GetString("b")
	if !ok || !v.Equal(NewInt(20)) {
		t.Fatalf("expected overwritten value 20, got %v", v)
	}

	clone := m.Clone()
	clone.SetString("a", NewInt(99))
	orig, _ := m.GetString("a")
	if !orig.Equal(NewInt(1)) {
		t.Fatalf("mutating clone mutated original: %v", orig)
	}
}

func TestMapRename(t *testing.T) {
	m := NewMap()
	m.SetString("old", String("v"))
	if !m.Rename(String("old"), String("new")) {
		t.Fatal("rename should succeed")
	}
	if m.HasString("old") {
		t.Fatal("old key should be gone")
	}
	v, ok := m.GetString("new")
	if !ok || !v.Equal(String("v")) {
		t.Fatalf("renamed value missing or wrong: %v", v)
	}
}

func TestFromGoToGoRoundTrip(t *testing.T) {
	in := map[string]any{
		"name": "john",
		"age":  int64(30),
		"tags": []any{"a", "b"},
	}
	v, err := FromGo(in)
	if err != nil {
		t.Fatal(err)
	}
	out := ToGo(v)
	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected map[string]any, got %T", out)
	}
	if m["name"] != "john" {
		t.Fatalf("unexpected name: %v", m["name"])
	}
}
