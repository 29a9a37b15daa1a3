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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cerberus.dev/go/schema"
	"cerberus.dev/go/value"
)

// loadValue reads path as YAML (a superset of JSON) and converts it
// to a Value tree via the value package's host boundary, the way
// cmd/cue/cmd/common.go decodes -f inputs before handing them to the
// evaluator.
func loadValue(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	v, err := value.FromGo(raw)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %s: %w", path, err)
	}
	return v, nil
}

// loadSchema reads path and interprets it as a schema document.
func loadSchema(path string) (schema.Schema, error) {
	v, err := loadValue(path)
	if err != nil {
		return schema.Schema{}, err
	}
	s, err := schema.FromValue(v)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// loadDocument reads path and requires it to decode to a mapping.
func loadDocument(path string) (*value.Map, error) {
	v, err := loadValue(path)
	if err != nil {
		return nil, err
	}
	m, ok := v.(*value.Map)
	if !ok {
		return nil, fmt.Errorf("%s: document must be a mapping, got %s", path, v.Kind())
	}
	return m, nil
}

// writeYAML marshals x (typically produced by value.ToGo) as YAML to
// the command's output stream.
func writeYAML(cmd *cobra.Command, x any) error {
	out, err := yaml.Marshal(x)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
