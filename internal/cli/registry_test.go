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

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryAddThenList(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "address.yaml")
	if err := os.WriteFile(schemaPath, []byte("city:\n  type: string\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	regPath := filepath.Join(dir, "registry.yaml")

	add := New([]string{"registry", "add", regPath, "address", schemaPath})
	if err := add.Run(); err != nil {
		t.Fatalf("registry add: %v", err)
	}

	var stdout, stderr bytes.Buffer
	list := New([]string{"registry", "list", regPath})
	list.SetOutput(&stdout, &stderr)
	if err := list.Run(); err != nil {
		t.Fatalf("registry list: %v (stderr: %s)", err, stderr.String())
	}
	if got := stdout.String(); got != "address\n" {
		t.Fatalf("expected %q, got %q", "address\n", got)
	}
}

func TestRegistryListOnMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	list := New([]string{"registry", "list", filepath.Join(dir, "nope.yaml")})
	list.SetOutput(&stdout, &stderr)
	if err := list.Run(); err != nil {
		t.Fatalf("registry list: %v (stderr: %s)", err, stderr.String())
	}
	if got := stdout.String(); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
