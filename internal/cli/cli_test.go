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

	"github.com/google/go-cmp/cmp"
	"github.com/rogpeppe/go-internal/txtar"
	"gopkg.in/yaml.v3"
)

// runScript loads a txtar archive holding schema.yaml, document.yaml
// and a "want" file of expected stdout, runs `cerberus validate`
// against it in a temp directory, and compares the decoded YAML
// output rather than raw bytes, so the test doesn't pin down the
// YAML encoder's exact formatting.
func runScript(t *testing.T, archivePath string) {
	t.Helper()
	a, err := txtar.ParseFile(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{}
	for _, f := range a.Files {
		files[f.Name] = f.Data
	}

	dir := t.TempDir()
	for _, name := range []string{"schema.yaml", "document.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), files[name], 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var stdout, stderr bytes.Buffer
	c := New([]string{"validate", filepath.Join(dir, "schema.yaml"), filepath.Join(dir, "document.yaml")})
	c.SetOutput(&stdout, &stderr)
	runErr := c.Run()

	want := files["want"]
	if len(bytes.TrimSpace(want)) == 0 {
		if runErr != nil {
			t.Fatalf("expected success, got error %v (stderr: %s)", runErr, stderr.String())
		}
		return
	}
	if runErr == nil {
		t.Fatalf("expected validation to fail, stdout: %s", stdout.String())
	}

	var gotDecoded, wantDecoded any
	if err := yaml.Unmarshal(stdout.Bytes(), &gotDecoded); err != nil {
		t.Fatalf("decoding actual output: %v\n%s", err, stdout.String())
	}
	if err := yaml.Unmarshal(want, &wantDecoded); err != nil {
		t.Fatalf("decoding expected output: %v", err)
	}
	if diff := cmp.Diff(wantDecoded, gotDecoded); diff != "" {
		t.Errorf("validate output mismatch (-want +got):\n%s", diff)
	}
}

func TestScriptValid(t *testing.T) {
	runScript(t, filepath.Join("testdata", "valid.txtar"))
}

func TestScriptInvalid(t *testing.T) {
	runScript(t, filepath.Join("testdata", "invalid.txtar"))
}
