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

import "cerberus.dev/go/value"

func isStringOrStringSeq(c value.Value) string {
	switch x := c.(type) {
	case value.String:
		return ""
	case value.Seq:
		for _, e := range x {
			if _, ok := e.(value.String); !ok {
				return "type must be a string or a sequence of strings"
			}
		}
		return ""
	default:
		return "type must be a string or a sequence of strings"
	}
}

func isContainer(c value.Value) string {
	if value.Elements(c) == nil {
		return "must be a sequence"
	}
	return ""
}

func isRuleSetSeq(c value.Value) string {
	seq, ok := c.(value.Seq)
	if !ok {
		return "must be a sequence of rule-sets"
	}
	for _, e := range seq {
		if _, ok := e.(*value.Map); !ok {
			return "each element must be a rule-set mapping"
		}
	}
	return ""
}

// RegisterBuiltins installs the closed core rule catalog described by
// §3. Validation rules and normalization rules are both registered
// here, tagged by Phase and IsNormalization. Packages validate and
// normalize do not read the table; they look rules up by name.
func RegisterBuiltins(t *Table) {
	validation := []RuleDef{
		{Name: "type", Phase: PhaseMandatory, Check: isStringOrStringSeq},
		{Name: "nullable", Phase: PhaseMandatory, AllowedKinds: value.BoolKind},
		{Name: "readonly", Phase: PhaseMandatory, AllowedKinds: value.BoolKind},
		{Name: "required", Phase: PhaseMandatory, AllowedKinds: value.BoolKind},
		{Name: "empty", Phase: PhaseNormal, AllowedKinds: value.BoolKind},
		{Name: "min", Phase: PhaseNormal},
		{Name: "max", Phase: PhaseNormal},
		{Name: "minlength", Phase: PhaseNormal, AllowedKinds: value.IntKind},
		{Name: "maxlength", Phase: PhaseNormal, AllowedKinds: value.IntKind},
		{Name: "allowed", Phase: PhaseNormal, Check: isContainer},
		{Name: "forbidden", Phase: PhaseNormal, Check: isContainer},
		{Name: "regex", Phase: PhaseNormal, AllowedKinds: value.StringKind},
		{Name: "contains", Phase: PhaseNormal},
		{Name: "dependencies", Phase: PhaseNormal},
		{Name: "excludes", Phase: PhaseNormal},
		{Name: "items", Phase: PhaseNormal, Check: isRuleSetSeq},
		{Name: "schema", Phase: PhaseNormal},
		{Name: "keysrules", Phase: PhaseNormal},
		{Name: "valuesrules", Phase: PhaseNormal},
		{Name: "allow_unknown", Phase: PhaseNormal},
		{Name: "require_all", Phase: PhaseNormal, AllowedKinds: value.BoolKind},
		{Name: "allof", Phase: PhaseNormal, Check: isRuleSetSeq},
		{Name: "anyof", Phase: PhaseNormal, Check: isRuleSetSeq},
		{Name: "noneof", Phase: PhaseNormal, Check: isRuleSetSeq},
		{Name: "oneof", Phase: PhaseNormal, Check: isRuleSetSeq},
		{Name: "check_with", Phase: PhaseNormal},
		{Name: "meta", Phase: PhaseNormal},
	}
	for _, d := range validation {
		t.Register(d)
	}

	normalization := []RuleDef{
		{Name: "rename", Phase: PhaseNormalizeRename, AllowedKinds: value.StringKind, IsNormalization: true},
		{Name: "rename_handler", Phase: PhaseNormalizeRename, IsNormalization: true},
		{Name: "default", Phase: PhaseNormalizeDefault, IsNormalization: true},
		{Name: "default_setter", Phase: PhaseNormalizeDefault, IsNormalization: true},
		{Name: "coerce", Phase: PhaseNormalizeCoerce, IsNormalization: true},
		{Name: "purge_unknown", Phase: PhaseNormalizePurge, AllowedKinds: value.BoolKind, IsNormalization: true},
		{Name: "purge_readonly", Phase: PhaseNormalizePurge, AllowedKinds: value.BoolKind, IsNormalization: true},
	}
	for _, d := range normalization {
		t.Register(d)
	}
}
