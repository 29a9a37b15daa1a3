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
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// A Handler converts a flat error List into an output representation
// suitable for presenting to a caller (§6 "Error output contract").
type Handler interface {
	Handle(l List) any
}

// templates holds the default human-readable message format for each
// built-in code, analogous to the teacher's localizable CLI messages
// (cmd/cue/cmd/root.go imports golang.org/x/text/message for the same
// reason: printf-style templates that could be localized later).
var templates = map[Code]string{
	CodeTypeMismatch:        "must be of %[1]s type",
	CodeRequired:            "required field",
	CodeReadonly:            "field is read-only",
	CodeUnknownField:        "unknown field",
	CodeEmptyNotAllowed:     "empty values not allowed",
	CodeMin:                 "min value is %[1]v",
	CodeMax:                 "max value is %[1]v",
	CodeMinLength:           "min length is %[1]v",
	CodeMaxLength:           "max length is %[1]v",
	CodeAllowed:             "unallowed value %[2]v",
	CodeForbidden:           "unallowed value %[2]v",
	CodeContains:            "missing members %[1]v",
	CodeRegex:               "value %[2]v does not match regex %[1]v",
	CodeItemsLength:         "length of list should be %[1]v",
	CodeDependency:          "field %[1]v is required",
	CodeExcludes:            "%[1]v must not be present with %[2]v",
	CodeCheckWith:           "value does not satisfy %[1]v",
	CodeCombinator:          "%[1]v",
	CodeCoerceFailed:        "field %[2]v cannot be coerced: %[1]v",
	CodeDefaultSetterFailed: "default could not be computed: %[1]v",
	CodeRenameCollision:     "rename of %[2]v collides with an existing field",
}

// DefaultHandler implements §6's default error-output contract: a
// mapping field -> [message*, {field -> [...]}?]. Group errors
// contribute a trailing nested mapping rather than a message.
type DefaultHandler struct {
	Printer *message.Printer
}

// NewDefaultHandler returns a DefaultHandler using English message
// formatting; callers needing localization can build their own
// message.Printer for a different language.Tag.
func NewDefaultHandler() *DefaultHandler {
	return &DefaultHandler{Printer: message.NewPrinter(language.English)}
}

func (h *DefaultHandler) format(e *Error) string {
	tmpl, ok := templates[e.Code]
	if !ok {
		tmpl = e.Rule
	}
	p := h.Printer
	if p == nil {
		p = message.NewPrinter(language.English)
	}
	return p.Sprintf(tmpl, e.Constraint, e.Value)
}

// Handle implements Handler.
func (h *DefaultHandler) Handle(l List) any {
	out := map[string]any{}
	for _, e := range l {
		h.insert(out, e)
	}
	return out
}

func (h *DefaultHandler) insert(out map[string]any, e *Error) {
	field := "_schema"
	if len(e.DocumentPath) > 0 {
		field = e.DocumentPath[0].String()
	}

	bucket, _ := out[field].([]any)

	if e.Code.IsGroup() {
		nested := map[string]any{}
		for _, childAny := range e.Info {
			if child, ok := childAny.(*Error); ok {
				sub := childErrorWithTrimmedPath(child)
				h.insert(nested, sub)
			}
		}
		bucket = append(bucket, nested)
	} else {
		bucket = append(bucket, h.format(e))
	}
	out[field] = bucket
}

// childErrorWithTrimmedPath drops the first document-path segment so
// that nested insert calls key off the *next* segment, producing the
// field -> [..., {nested_field -> [...]}] shape from §6.
func childErrorWithTrimmedPath(e *Error) *Error {
	if len(e.DocumentPath) == 0 {
		return e
	}
	cp := *e
	cp.DocumentPath = e.DocumentPath[1:]
	return &cp
}
