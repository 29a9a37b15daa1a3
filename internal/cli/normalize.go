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
	"cerberus.dev/go/value"
)

const normalizeDoc = `normalize applies a schema's rename, purge, default and coerce
rules to a document and prints the result as YAML, without requiring
the document to pass validation.

Example:

  cerberus normalize schema.yaml document.yaml
`

func newNormalizeCmd(c *Command) *cobra.Command {
	var (
		purgeUnknown  bool
		purgeReadonly bool
	)
	cmd := &cobra.Command{
		Use:   "normalize <schema.yaml> <document.yaml>",
		Short: "normalize a document against a schema",
		Long:  normalizeDoc,
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
			if purgeUnknown {
				opts = append(opts, cerberus.PurgeUnknown())
			}
			if purgeReadonly {
				opts = append(opts, cerberus.PurgeReadonly())
			}
			v := cerberus.New(opts...)
			normalized, err := v.Normalized(doc, s)
			if err != nil {
				fmt.Fprintln(c.Stderr(), err)
				return ErrPrintedError
			}
			return writeYAML(cmd, value.ToGo(normalized))
		},
	}
	cmd.Flags().BoolVar(&purgeUnknown, "purge-unknown", false, "drop fields not declared in the schema")
	cmd.Flags().BoolVar(&purgeReadonly, "purge-readonly", false, "drop readonly fields")
	return cmd
}
