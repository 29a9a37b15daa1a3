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

import "fmt"

// SchemaError is the schema-class failure of §7: raised before any
// document traversal when a schema fails meta-validation or a registry
// reference cannot be resolved. An unknown type name is not a
// SchemaError; it is reported as a type error on the document field.
// Unlike the document-class *Error above, this is a Go error in the
// ordinary sense — it is returned, not accumulated.
type SchemaError struct {
	Path Path
	Msg  string
}

func (e *SchemaError) Error() string {
	if len(e.Path) == 0 {
		return "cerberus: schema error: " + e.Msg
	}
	return fmt.Sprintf("cerberus: schema error at %s: %s", e.Path, e.Msg)
}

// Newf builds a SchemaError, grounded on the teacher's errors.Newf
// convenience constructor.
func Newf(path Path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// Wrapf builds a SchemaError that also reports an underlying cause.
func Wrapf(err error, path Path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Msg: fmt.Sprintf(format, args...) + ": " + err.Error()}
}

// DocumentError is raised (not accumulated) when the top-level
// document is structurally unusable for validation at all — e.g. not
// a mapping, per §4.G's "A non-mapping top-level document raises a
// DocumentError."
type DocumentError struct {
	Msg string
}

func (e *DocumentError) Error() string { return "cerberus: document error: " + e.Msg }
