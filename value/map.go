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

import "fmt"

// Map is an insertion-ordered mapping from Value keys to Value values.
// Keys are usually String but §3 allows any hashable Value; hashing is
// done through a canonical string derived from Kind+String, the same
// shortcut the teacher's arc list uses when it needs a comparison key
// for otherwise-opaque feature values.
type Map struct {
	keys []Value
	vals []Value
	idx  map[string]int
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{idx: make(map[string]int)}
}

func mapKey(v Value) string {
	return fmt.Sprintf("%d:%s", v.Kind(), v.String())
}

func (Map) Kind() Kind { return MapKind }
func (Map) isValue()   {}

func (m *Map) String() string {
	out := "{"
	for i, k := range m.keys {
		if i > 0 {
			out += ", "
		}
		out += k.String() + ": " + m.vals[i].String()
	}
	return out + "}"
}

func (m *Map) Equal(o Value) bool {
	om, ok := o.(*Map)
	if !ok || om.Len() != m.Len() {
		return false
	}
	for i, k := range m.keys {
		ov, ok := om.Get(k)
		if !ok || !ov.Equal(m.vals[i]) {
			return false
		}
	}
	return true
}

// Len reports the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Keys reports the keys in insertion order.
func (m *Map) Keys() []Value {
	out := make([]Value, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get looks up a value by key.
func (m *Map) Get(key Value) (Value, bool) {
	i, ok := m.idx[mapKey(key)]
	if !ok {
		return nil, false
	}
	return m.vals[i], true
}

// GetString looks up a value by a string key, the common case.
func (m *Map) GetString(key string) (Value, bool) {
	return m.Get(String(key))
}

// Has reports whether key is present.
func (m *Map) Has(key Value) bool {
	_, ok := m.idx[mapKey(key)]
	return ok
}

// HasString reports whether a string key is present.
func (m *Map) HasString(key string) bool {
	return m.Has(String(key))
}

// Set inserts or overwrites key. New keys are appended, preserving the
// insertion order of existing keys.
func (m *Map) Set(key, val Value) {
	k := mapKey(key)
	if i, ok := m.idx[k]; ok {
		m.vals[i] = val
		return
	}
	m.idx[k] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, val)
}

// SetString is a convenience wrapper for Set with a string key.
func (m *Map) SetString(key string, val Value) {
	m.Set(String(key), val)
}

// Delete removes key, if present, shifting later keys down by one to
// preserve the surviving insertion order.
func (m *Map) Delete(key Value) {
	k := mapKey(key)
	i, ok := m.idx[k]
	if !ok {
		return
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	delete(m.idx, k)
	for j := i; j < len(m.keys); j++ {
		m.idx[mapKey(m.keys[j])] = j
	}
}

// DeleteString is a convenience wrapper for Delete with a string key.
func (m *Map) DeleteString(key string) {
	m.Delete(String(key))
}

// Rename changes the key under which a value is stored, preserving its
// position. It reports false if oldKey is absent or newKey already
// exists under a different position.
func (m *Map) Rename(oldKey, newKey Value) bool {
	i, ok := m.idx[mapKey(oldKey)]
	if !ok {
		return false
	}
	newK := mapKey(newKey)
	if j, exists := m.idx[newK]; exists && j != i {
		return false
	}
	delete(m.idx, mapKey(oldKey))
	m.keys[i] = newKey
	m.idx[newK] = i
	return true
}

// Clone returns a deep copy, the operation the normalization engine
// uses to produce a working document without mutating the caller's
// input (§3 invariant 5).
func (m *Map) Clone() *Map {
	out := NewMap()
	for i, k := range m.keys {
		out.Set(CloneValue(k), CloneValue(m.vals[i]))
	}
	return out
}

// Range calls f for each entry in insertion order, stopping early if f
// returns false.
func (m *Map) Range(f func(key, val Value) bool) {
	for i, k := range m.keys {
		if !f(k, m.vals[i]) {
			return
		}
	}
}

// CloneValue returns a deep copy of any Value; containers are copied
// recursively, scalars are returned as-is since they are immutable.
func CloneValue(v Value) Value {
	switch x := v.(type) {
	case *Map:
		return x.Clone()
	case Seq:
		out := make(Seq, len(x))
		for i, e := range x {
			out[i] = CloneValue(e)
		}
		return out
	case Set:
		out := make(Set, len(x))
		for i, e := range x {
			out[i] = CloneValue(e)
		}
		return out
	case FrozenSet:
		out := make(FrozenSet, len(x))
		for i, e := range x {
			out[i] = CloneValue(e)
		}
		return out
	case Tuple:
		out := make(Tuple, len(x))
		for i, e := range x {
			out[i] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}
