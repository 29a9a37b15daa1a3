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

// Package cli implements the cerberus command-line tool, grounded on
// cmd/cue/cmd: a small cobra.Command tree wrapped in a Command type
// that captures errors written to stderr so Main can report a
// non-zero exit status without the subcommands themselves calling
// os.Exit.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ErrPrintedError indicates the offending error was already written
// to stderr by a subcommand, so Main should not print it again.
var ErrPrintedError = errors.New("terminating because of errors")

// Command wraps the cobra command tree and tracks whether anything
// was written to its error stream, the way cmd/cue/cmd.Command does.
type Command struct {
	*cobra.Command
	root   *cobra.Command
	hasErr bool
}

type errWriter Command

func (w *errWriter) Write(b []byte) (int, error) {
	c := (*Command)(w)
	c.hasErr = len(b) > 0
	return c.Command.ErrOrStderr().Write(b)
}

// Stderr returns a writer that marks the command as failed once
// anything is written to it.
func (c *Command) Stderr() io.Writer { return (*errWriter)(c) }

// SetOutput redirects both the command tree's stdout and stderr,
// letting tests capture what a real invocation would print.
func (c *Command) SetOutput(out, err io.Writer) {
	c.root.SetOut(out)
	c.root.SetErr(err)
}

// New builds the root "cerberus" command with its subcommands.
func New(args []string) *Command {
	root := &cobra.Command{
		Use:           "cerberus",
		Short:         "cerberus validates and normalizes documents against a schema",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	c := &Command{Command: root, root: root}

	root.AddCommand(
		newValidateCmd(c),
		newNormalizeCmd(c),
		newRegistryCmd(c),
	)
	root.SetArgs(args)
	return c
}

// Run executes the command tree and reports whether anything was
// written to the error stream.
func (c *Command) Run() error {
	if err := c.root.Execute(); err != nil {
		return err
	}
	if c.hasErr {
		return ErrPrintedError
	}
	return nil
}

// Main runs the cerberus tool and returns the process exit code.
func Main() int {
	c := New(os.Args[1:])
	if err := c.Run(); err != nil {
		if !errors.Is(err, ErrPrintedError) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}
