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
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cerberus.dev/go/schema"
	"cerberus.dev/go/value"
)

const registryDoc = `registry manages a YAML file of named schemas (§4.D), letting
a multi-schema workflow refer to a schema by name instead of inlining
it every time.

The registry file is itself a mapping of name to schema document.
`

func newRegistryCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "manage a persisted schema registry file",
		Long:  registryDoc,
	}
	cmd.AddCommand(newRegistryAddCmd(c), newRegistryListCmd(c))
	return cmd
}

func newRegistryAddCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "add <registry.yaml> <name> <schema.yaml>",
		Short: "add or replace a named schema in a registry file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			regPath, name, schemaPath := args[0], args[1], args[2]

			reg, err := loadRegistry(regPath)
			if err != nil {
				return err
			}
			s, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			reg.Set(name, s)
			return saveRegistry(regPath, reg)
		},
	}
}

func newRegistryListCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "list <registry.yaml>",
		Short: "list the names stored in a registry file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(args[0])
			if err != nil {
				return err
			}
			names := reg.Names()
			sort.Strings(names)
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

// loadRegistry reads a registry file into a schema.SchemaRegistry, or
// returns an empty one if the file doesn't exist yet.
func loadRegistry(path string) (*schema.SchemaRegistry, error) {
	reg := schema.NewSchemaRegistry()
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return reg, nil
	}
	v, err := loadValue(path)
	if err != nil {
		return nil, err
	}
	m, ok := v.(*value.Map)
	if !ok {
		return nil, fmt.Errorf("%s: registry file must be a mapping, got %s", path, v.Kind())
	}
	var firstErr error
	m.Range(func(k, val value.Value) bool {
		s, err := schema.FromValue(val)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: entry %q: %w", path, k.String(), err)
			}
			return true
		}
		reg.Set(k.String(), s)
		return true
	})
	return reg, firstErr
}

// saveRegistry writes reg back to path as a YAML mapping.
func saveRegistry(path string, reg *schema.SchemaRegistry) error {
	m := value.NewMap()
	for _, name := range reg.Names() {
		s, _ := reg.Get(name)
		m.SetString(name, s.Value())
	}
	out, err := yaml.Marshal(value.ToGo(m))
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
