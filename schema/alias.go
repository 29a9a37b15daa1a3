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

package schema

import (
	"strings"

	"cerberus.dev/go/value"
)

// ruleAliases implements §6's migration aliases: keyschema/valueschema/
// validator/propertyschema resolve to their canonical rule name before
// any other processing sees them.
var ruleAliases = map[string]string{
	"keyschema":      "keysrules",
	"valueschema":    "valuesrules",
	"validator":      "check_with",
	"propertyschema": "keysrules",
}

var combinators = []string{"allof", "anyof", "oneof", "noneof"}

// Canonicalize returns a canonical copy of a RuleSet, leaving the
// input untouched: aliases are renamed to
// their canonical form and typesaver syntax
// (`<combinator>_<rule>: [v1, v2, ...]`) is expanded to
// `<combinator>: [{<rule>: v1}, {<rule>: v2}, ...]`, per §6. It reports
// the deprecation notices produced by alias use, matching §6's "may
// emit a deprecation notice".
func Canonicalize(rs RuleSet) (RuleSet, []string) {
	if !rs.Valid() {
		return rs, nil
	}
	out := value.NewMap()
	var notices []string

	for _, k := range rs.m.Keys() {
		name := k.String()
		v, _ := rs.m.Get(k)

		if canon, ok := ruleAliases[name]; ok {
			notices = append(notices, "rule \""+name+"\" is deprecated, use \""+canon+"\"")
			name = canon
		}

		if combinator, rule, ok := splitTypesaver(name); ok {
			expanded, err := expandTypesaver(combinator, rule, v)
			if err == nil {
				if existing, has := out.GetString(combinator); has {
					out.SetString(combinator, value.Seq(append(append(value.Seq{}, value.Elements(existing)...), value.Elements(expanded)...)))
				} else {
					out.SetString(combinator, expanded)
				}
				continue
			}
		}

		out.SetString(name, v)
	}

	return RuleSet{m: out}, notices
}

func splitTypesaver(name string) (combinator, rule string, ok bool) {
	for _, c := range combinators {
		prefix := c + "_"
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return c, name[len(prefix):], true
		}
	}
	return "", "", false
}

func expandTypesaver(combinator, rule string, constraint value.Value) (value.Value, error) {
	seq, ok := constraint.(value.Seq)
	if !ok {
		return nil, errNotSeq
	}
	out := make(value.Seq, len(seq))
	for i, v := range seq {
		m := value.NewMap()
		m.SetString(rule, v)
		out[i] = m
	}
	return out, nil
}

var errNotSeq = &typesaverError{"typesaver constraint must be a sequence"}

type typesaverError struct{ msg string }

func (e *typesaverError) Error() string { return e.msg }
