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

// Package value implements Cerberus's tagged-union document representation:
// the tree-shaped values that schemas constrain and the engine walks.
package value

import "strings"

// Kind is a bitmask classifying a Value. Bitmasks let the schema
// meta-validator (package schema/meta) test "is this constraint any of
// these kinds" with a single AND, the same trick the teacher's expression evaluator uses to test
// whether an operand satisfies a union of allowed kinds.
type Kind uint32

const (
	NullKind Kind = 1 << iota
	BoolKind
	IntKind
	FloatKind
	BytesKind
	StringKind
	DateKind
	DateTimeKind
	SeqKind
	MapKind
	SetKind
	FrozenSetKind
	TupleKind
	OpaqueKind

	InvalidKind Kind = 0

	// NumberKind is the union of the two numeric kinds; bool is deliberately
	// excluded even though some languages treat it as 0/1.
	NumberKind = IntKind | FloatKind
)

var kindNames = map[Kind]string{
	NullKind:      "null",
	BoolKind:      "bool",
	IntKind:       "int",
	FloatKind:     "float",
	BytesKind:     "bytes",
	StringKind:    "string",
	DateKind:      "date",
	DateTimeKind:  "datetime",
	SeqKind:       "seq",
	MapKind:       "map",
	SetKind:       "set",
	FrozenSetKind: "frozenset",
	TupleKind:     "tuple",
	OpaqueKind:    "opaque",
}

// Is reports whether k has every bit of want set.
func (k Kind) Is(want Kind) bool { return k&want == want }

// IsAnyOf reports whether k shares at least one bit with any.
func (k Kind) IsAnyOf(any Kind) bool { return k&any != InvalidKind }

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	var parts []string
	for bit, name := range kindNames {
		if k&bit != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "invalid"
	}
	return strings.Join(parts, "|")
}
