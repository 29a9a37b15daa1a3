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

import (
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// A Value is a node in a document or schema tree. It is a closed,
// recursive tagged union: every concrete type below is the only
// implementor of the unexported marker method, so a type switch over
// Value is exhaustive by construction, mirroring how the teacher's ADT
// package closes its Expr/Value node sets.
type Value interface {
	// Kind reports the single bit (or, for Opaque, the sentinel bit)
	// identifying this node's variant.
	Kind() Kind

	// Equal reports deep structural equality.
	Equal(other Value) bool

	// String renders a debug form; it is not a stable serialization.
	String() string

	isValue()
}

// Null is the absence of a value.
type Null struct{}

func (Null) Kind() Kind    { return NullKind }
func (Null) String() string { return "null" }
func (Null) isValue()       {}
func (Null) Equal(o Value) bool {
	_, ok := o.(Null)
	return ok
}

// Bool is a boolean scalar.
type Bool bool

func (Bool) Kind() Kind       { return BoolKind }
func (b Bool) String() string { return fmt.Sprintf("%t", bool(b)) }
func (Bool) isValue()         {}
func (b Bool) Equal(o Value) bool {
	ob, ok := o.(Bool)
	return ok && ob == b
}

// Int is an arbitrary-precision integer, backed by apd.Decimal so that
// min/max comparisons on large or exact values (monetary amounts, ids)
// never round-trip through float64.
type Int struct{ D apd.Decimal }

func NewInt(i int64) Int {
	var v Int
	v.D.SetInt64(i)
	return v
}

func (Int) Kind() Kind      { return IntKind }
func (v Int) String() string { return v.D.String() }
func (Int) isValue()         {}
func (v Int) Equal(o Value) bool {
	ov, ok := o.(Int)
	return ok && v.D.Cmp(&ov.D) == 0
}

// Int64 reports the value as an int64, or an error if it does not fit.
func (v Int) Int64() (int64, error) { return v.D.Int64() }

// Float is an arbitrary-precision decimal, backed by apd.Decimal.
type Float struct{ D apd.Decimal }

func NewFloat(f float64) Float {
	var v Float
	_, _ = v.D.SetFloat64(f)
	return v
}

func (Float) Kind() Kind      { return FloatKind }
func (v Float) String() string { return v.D.String() }
func (Float) isValue()         {}
func (v Float) Equal(o Value) bool {
	ov, ok := o.(Float)
	return ok && v.D.Cmp(&ov.D) == 0
}

// Float64 reports the value as a float64.
func (v Float) Float64() (float64, error) { return v.D.Float64() }

// Bytes is a raw byte string.
type Bytes []byte

func (Bytes) Kind() Kind       { return BytesKind }
func (b Bytes) String() string { return fmt.Sprintf("%q", []byte(b)) }
func (Bytes) isValue()         {}
func (b Bytes) Equal(o Value) bool {
	ob, ok := o.(Bytes)
	return ok && string(ob) == string(b)
}

// String is a text scalar.
type String string

func (String) Kind() Kind       { return StringKind }
func (s String) String() string { return string(s) }
func (String) isValue()         {}
func (s String) Equal(o Value) bool {
	os, ok := o.(String)
	return ok && os == s
}

// Date is a calendar date without a time component.
type Date struct{ T time.Time }

func (Date) Kind() Kind      { return DateKind }
func (v Date) String() string { return v.T.Format("2006-01-02") }
func (Date) isValue()         {}
func (v Date) Equal(o Value) bool {
	ov, ok := o.(Date)
	return ok && ov.T.Equal(v.T)
}

// DateTime is a calendar date with a time component.
type DateTime struct{ T time.Time }

func (DateTime) Kind() Kind      { return DateTimeKind }
func (v DateTime) String() string { return v.T.Format(time.RFC3339) }
func (DateTime) isValue()         {}
func (v DateTime) Equal(o Value) bool {
	ov, ok := o.(DateTime)
	return ok && ov.T.Equal(v.T)
}

// Seq is an ordered, possibly heterogeneous sequence.
type Seq []Value

func (Seq) Kind() Kind { return SeqKind }
func (s Seq) String() string {
	return sliceString(s)
}
func (Seq) isValue() {}
func (s Seq) Equal(o Value) bool {
	os, ok := o.(Seq)
	return ok && equalSlices(s, os)
}

// Set is an unordered collection without duplicates, compared by
// membership rather than position.
type Set []Value

func (Set) Kind() Kind       { return SetKind }
func (s Set) String() string { return sliceString(s) }
func (Set) isValue()         {}
func (s Set) Equal(o Value) bool {
	os, ok := o.(Set)
	if !ok || len(os) != len(s) {
		return false
	}
	used := make([]bool, len(os))
	for _, v := range s {
		found := false
		for i, ov := range os {
			if !used[i] && v.Equal(ov) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FrozenSet is an immutable Set (distinguished from Set only by kind,
// the way the spec's value model distinguishes mutable/immutable
// containers for type-matching purposes).
type FrozenSet []Value

func (FrozenSet) Kind() Kind       { return FrozenSetKind }
func (s FrozenSet) String() string { return sliceString(s) }
func (FrozenSet) isValue()         {}
func (s FrozenSet) Equal(o Value) bool {
	os, ok := o.(FrozenSet)
	return ok && Set(s).Equal(Set(os))
}

// Tuple is a fixed-arity ordered sequence.
type Tuple []Value

func (Tuple) Kind() Kind       { return TupleKind }
func (t Tuple) String() string { return sliceString(t) }
func (Tuple) isValue()         {}
func (t Tuple) Equal(o Value) bool {
	ot, ok := o.(Tuple)
	return ok && equalSlices(t, ot)
}

// Opaque wraps a user-added type that the core engine does not
// interpret; it is identified by name so extension type predicates
// (package types) and coercers can recognize it.
type Opaque struct {
	TypeID string
	Data   any
}

func (Opaque) Kind() Kind       { return OpaqueKind }
func (o Opaque) String() string { return fmt.Sprintf("%s(%v)", o.TypeID, o.Data) }
func (Opaque) isValue()         {}
func (o Opaque) Equal(v Value) bool {
	ov, ok := v.(Opaque)
	return ok && ov.TypeID == o.TypeID && ov.Data == o.Data
}

func sliceString(s []Value) string {
	out := "["
	for i, v := range s {
		if i > 0 {
			out += ", "
		}
		out += v.String()
	}
	return out + "]"
}

func equalSlices(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether a sized value (string, bytes, seq, map, set,
// frozenset, tuple) has zero length. Scalars for which emptiness is
// not meaningful report false, matching the engine's §3 "empty"
// short-circuit which only applies to sized values.
func IsEmpty(v Value) bool {
	switch x := v.(type) {
	case String:
		return len(x) == 0
	case Bytes:
		return len(x) == 0
	case Seq:
		return len(x) == 0
	case Set:
		return len(x) == 0
	case FrozenSet:
		return len(x) == 0
	case Tuple:
		return len(x) == 0
	case *Map:
		return x.Len() == 0
	default:
		return false
	}
}

// Len reports the size of a sized value, or -1 if v is not sized.
func Len(v Value) int {
	switch x := v.(type) {
	case String:
		return len(x)
	case Bytes:
		return len(x)
	case Seq:
		return len(x)
	case Set:
		return len(x)
	case FrozenSet:
		return len(x)
	case Tuple:
		return len(x)
	case *Map:
		return x.Len()
	default:
		return -1
	}
}

// Elements reports the member values of a container (Seq, Set,
// FrozenSet, Tuple), or nil for anything else.
func Elements(v Value) []Value {
	switch x := v.(type) {
	case Seq:
		return x
	case Set:
		return x
	case FrozenSet:
		return x
	case Tuple:
		return x
	default:
		return nil
	}
}

// Contains reports whether needle appears (by Equal) in the elements
// of haystack if haystack is a container, or equals haystack if it is
// a scalar.
func Contains(haystack, needle Value) bool {
	if elems := Elements(haystack); elems != nil {
		for _, e := range elems {
			if e.Equal(needle) {
				return true
			}
		}
		return false
	}
	return haystack.Equal(needle)
}
