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

package value

import (
	"fmt"
	"time"
)

// FromGo converts an ordinary Go value (as produced by encoding/json or
// gopkg.in/yaml.v3 unmarshaling into interface{}, or built by an
// embedding host) into a Value tree. This is the boundary the host
// uses to hand documents to the engine; the engine itself never
// imports encoding/json or a YAML library.
func FromGo(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return NewInt(int64(v)), nil
	case int64:
		return NewInt(v), nil
	case float64:
		return NewFloat(v), nil
	case string:
		return String(v), nil
	case []byte:
		return Bytes(v), nil
	case time.Time:
		return DateTime{T: v}, nil
	case []any:
		out := make(Seq, len(v))
		for i, e := range v {
			cv, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case map[string]any:
		m := NewMap()
		for k, e := range v {
			cv, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			m.SetString(k, cv)
		}
		return m, nil
	case map[any]any:
		m := NewMap()
		for k, e := range v {
			ck, err := FromGo(k)
			if err != nil {
				return nil, err
			}
			cv, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			m.Set(ck, cv)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("value: cannot convert Go type %T", x)
	}
}

// ToGo converts a Value tree back into plain Go values (map[string]any,
// []any, bool, string, etc.), the inverse of FromGo, used when handing
// a normalized document back to the embedding host or a serializer.
func ToGo(v Value) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Null:
		return nil
	case Bool:
		return bool(x)
	case Int:
		i, err := x.Int64()
		if err == nil {
			return i
		}
		return x.D.String()
	case Float:
		f, _ := x.Float64()
		return f
	case Bytes:
		return []byte(x)
	case String:
		return string(x)
	case Date:
		return x.T
	case DateTime:
		return x.T
	case Seq:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToGo(e)
		}
		return out
	case Set:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToGo(e)
		}
		return out
	case FrozenSet:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToGo(e)
		}
		return out
	case Tuple:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToGo(e)
		}
		return out
	case *Map:
		out := make(map[string]any, x.Len())
		x.Range(func(k, val Value) bool {
			out[k.String()] = ToGo(val)
			return true
		})
		return out
	case Opaque:
		return x.Data
	default:
		return nil
	}
}
