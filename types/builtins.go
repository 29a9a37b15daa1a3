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

package types

import "cerberus.dev/go/value"

// registerBuiltins installs the closed core catalog of §4.B: concrete
// types plus the abstract container-algebra types (Mapping, Sequence,
// Set, Sized, Iterable, Container).
func registerBuiltins(r *Registry) {
	concrete := []TypeDef{
		{Name: "boolean", Kinds: value.BoolKind, Predicate: func(v value.Value) bool {
			_, ok := v.(value.Bool)
			return ok
		}},
		{Name: "integer", Kinds: value.IntKind, Predicate: func(v value.Value) bool {
			_, ok := v.(value.Int)
			return ok
		}},
		{Name: "float", Kinds: value.FloatKind, Predicate: func(v value.Value) bool {
			_, ok := v.(value.Float)
			return ok
		}},
		{Name: "number", Kinds: value.NumberKind, Predicate: func(v value.Value) bool {
			switch v.(type) {
			case value.Int, value.Float:
				return true
			default:
				return false
			}
		}},
		{Name: "string", Kinds: value.StringKind, Predicate: func(v value.Value) bool {
			_, ok := v.(value.String)
			return ok
		}},
		{Name: "bytes", Kinds: value.BytesKind, Predicate: func(v value.Value) bool {
			_, ok := v.(value.Bytes)
			return ok
		}},
		{Name: "bytesarray", Kinds: value.BytesKind, Predicate: func(v value.Value) bool {
			_, ok := v.(value.Bytes)
			return ok
		}},
		{Name: "date", Kinds: value.DateKind, Predicate: func(v value.Value) bool {
			_, ok := v.(value.Date)
			return ok
		}},
		{Name: "datetime", Kinds: value.DateTimeKind, Predicate: func(v value.Value) bool {
			_, ok := v.(value.DateTime)
			return ok
		}},
		{Name: "dict", Kinds: value.MapKind, Predicate: func(v value.Value) bool {
			_, ok := v.(*value.Map)
			return ok
		}},
		// list/Sequence deliberately exclude strings, per §4.B, unlike
		// most "iterable" type systems that treat a string as a sequence
		// of characters.
		{Name: "list", Kinds: value.SeqKind, Predicate: func(v value.Value) bool {
			_, ok := v.(value.Seq)
			return ok
		}},
		{Name: "tuple", Kinds: value.TupleKind, Predicate: func(v value.Value) bool {
			_, ok := v.(value.Tuple)
			return ok
		}},
		{Name: "set", Kinds: value.SetKind, Predicate: func(v value.Value) bool {
			_, ok := v.(value.Set)
			return ok
		}},
		{Name: "frozenset", Kinds: value.FrozenSetKind, Predicate: func(v value.Value) bool {
			_, ok := v.(value.FrozenSet)
			return ok
		}},
		// complex is a concrete numeric kind in the original source's
		// type system but has no natural analogue in value.Value; we
		// model it as an Opaque value tagged "complex" so schemas that
		// name it still resolve predictably rather than the type being
		// silently unrecognized.
		{Name: "complex", Kinds: value.OpaqueKind, Predicate: func(v value.Value) bool {
			o, ok := v.(value.Opaque)
			return ok && o.TypeID == "complex"
		}},
		{Name: "type", Kinds: value.OpaqueKind, Predicate: func(v value.Value) bool {
			o, ok := v.(value.Opaque)
			return ok && o.TypeID == "type"
		}},
	}
	for _, t := range concrete {
		r.Register(t)
	}

	abstract := []TypeDef{
		{Name: "Mapping", Kinds: value.MapKind, Predicate: func(v value.Value) bool {
			_, ok := v.(*value.Map)
			return ok
		}},
		// Sequence excludes strings and maps, like "list", but also
		// admits Tuple, matching the abstract container algebra's
		// ordered-collection notion.
		{Name: "Sequence", Kinds: value.SeqKind | value.TupleKind, Predicate: func(v value.Value) bool {
			switch v.(type) {
			case value.Seq, value.Tuple:
				return true
			default:
				return false
			}
		}},
		{Name: "Set", Kinds: value.SetKind | value.FrozenSetKind, Predicate: func(v value.Value) bool {
			switch v.(type) {
			case value.Set, value.FrozenSet:
				return true
			default:
				return false
			}
		}},
		{Name: "Sized", Kinds: value.StringKind | value.BytesKind | value.SeqKind | value.MapKind | value.SetKind | value.FrozenSetKind | value.TupleKind, Predicate: func(v value.Value) bool {
			return value.Len(v) >= 0
		}},
		{Name: "Iterable", Kinds: value.SeqKind | value.MapKind | value.SetKind | value.FrozenSetKind | value.TupleKind, Predicate: func(v value.Value) bool {
			switch v.(type) {
			case value.Seq, value.Set, value.FrozenSet, value.Tuple, *value.Map:
				return true
			default:
				return false
			}
		}},
		{Name: "Container", Kinds: value.StringKind | value.BytesKind | value.SeqKind | value.MapKind | value.SetKind | value.FrozenSetKind | value.TupleKind, Predicate: func(v value.Value) bool {
			switch v.(type) {
			case value.String, value.Bytes, value.Seq, value.Set, value.FrozenSet, value.Tuple, *value.Map:
				return true
			default:
				return false
			}
		}},
	}
	for _, t := range abstract {
		r.Register(t)
	}
}
