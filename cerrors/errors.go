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

package cerrors

import (
	"fmt"
	"strings"

	"cerberus.dev/go/value"
)

// A Path is a sequence of document or schema keys/indices from the
// root, analogous to the teacher's token.Pos-free notion of a CUE
// path (cue/path.go) but expressed directly as Value segments since
// Cerberus addresses tree nodes, not source text.
type Path []value.Value

// String renders a dotted path, e.g. "a.b.2.c".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ".")
}

// Append returns a new Path with seg appended; it never mutates p, so
// that child validators cannot corrupt a parent's path (§9).
func (p Path) Append(seg value.Value) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

// An Error is one finding, either a document-class validation error
// (accumulated, never raised) or the leaf of a group error's Info.
type Error struct {
	DocumentPath Path
	SchemaPath   Path
	Code         Code
	Rule         string
	Constraint   value.Value
	Value        value.Value
	Info         []any // auxiliary data; for group errors, the child *Error/List values
}

// Error implements the error interface with a path-qualified message.
func (e *Error) Error() string {
	msg := e.Rule
	if e.Constraint != nil {
		msg = fmt.Sprintf("%s: %v", e.Rule, e.Constraint)
	}
	if len(e.DocumentPath) == 0 {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.DocumentPath, msg)
}

// Is reports whether target is an *Error with the same Code, so that
// errors.Is matches on error class for callers that only care about it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New constructs a leaf document-class error.
func New(docPath, schemaPath Path, code Code, rule string, constraint, val value.Value, info ...any) *Error {
	return &Error{
		DocumentPath: docPath,
		SchemaPath:   schemaPath,
		Code:         code,
		Rule:         rule,
		Constraint:   constraint,
		Value:        val,
		Info:         info,
	}
}

// Group wraps the accumulated errors of a recursed-into child
// validator under a single error keyed to the recursion point, the
// shape §7's "Propagation" paragraph specifies: "child engines flush
// their errors into the parent stash wrapped under a single group
// error keyed to the recursion point."
func Group(docPath, schemaPath Path, rule string, children []*Error) *Error {
	infos := make([]any, len(children))
	for i, c := range children {
		infos[i] = c
	}
	code := CodeSchemaGroup
	if rule == "allof" || rule == "anyof" || rule == "oneof" || rule == "noneof" {
		code = CodeCombinator
	}
	return &Error{
		DocumentPath: docPath,
		SchemaPath:   schemaPath,
		Code:         code,
		Rule:         rule,
		Info:         infos,
	}
}

// A List is a flat, insertion-ordered collection of errors. It
// satisfies the error interface the way the teacher's cue/errors list
// type does, so a List can be returned as a plain error to callers
// that don't care about structure.
type List []*Error

// Error renders every message, one per line.
func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Add appends a single err to the list.
func (l *List) Add(err *Error) {
	*l = append(*l, err)
}

// Empty reports whether the list has no errors; per §8 invariant 4,
// `errors == []` iff the boolean result of validate is true.
func (l List) Empty() bool { return len(l) == 0 }
