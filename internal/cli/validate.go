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

	"github.com/spf13/cobra"

	"cerberus.dev/go/cerberus"
)

const validateDoc = `validate checks a document against a schema.

On success it prints nothing and exits 0. On failure it prints the
default error handler's nested field -> [message, ...] mapping as
YAML to stdout and exits 1.

Example:

  cerberus validate schema.yaml document.yaml
`

func newValidateCmd(c *Command) *cobra.Command {
	var (
		allowUnknown bool
		requireAll   bool
		update       bool
	)
	cmd := &cobra.Command{
		Use:   "validate <schema.yaml> <document.yaml>",
		Short: "validate a document against a schema",
		Long:  validateDoc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(args[0])
			if err != nil {
				return err
			}
			doc, err := loadDocument(args[1])
			if err != nil {
				return err
			}

			var opts []cerberus.Option
			if allowUnknown {
				opts = append(opts, cerberus.AllowUnknown())
			}
			if requireAll {
				opts = append(opts, cerberus.RequireAll())
			}
			v := cerberus.New(opts...)
			ok, err := v.Validate(doc, s, update)
			if err != nil {
				fmt.Fprintln(c.Stderr(), err)
				return ErrPrintedError
			}
			if !ok {
				if err := writeYAML(cmd, v.Handle()); err != nil {
					return err
				}
				fmt.Fprintln(c.Stderr(), "validation failed")
				return ErrPrintedError
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&allowUnknown, "allow-unknown", false, "permit fields not declared in the schema")
	cmd.Flags().BoolVar(&requireAll, "require-all", false, "require every schema field unless marked required: false")
	cmd.Flags().BoolVar(&update, "update", false, "update mode: do not require missing fields")
	return cmd
}
