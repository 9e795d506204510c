/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voedger/qonfig/pkg/qdef"
)

func newParseCmd(params *qonfigParams) *cobra.Command {
	partial := false
	cmd := &cobra.Command{
		Use:   "parse document",
		Short: "parse document and print its element tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(params)
			if err != nil {
				return err
			}
			e, err := w.ParseFile(cmd.Context(), args[0], partial)
			if err != nil {
				return err
			}
			printElement(cmd.OutOrStdout(), e, 0)
			return nil
		},
	}
	cmd.Flags().BoolVar(&partial, "partial", false, "Skip multiplicity and specification checks")
	return cmd
}

// Prints element, its attributes, value and children, one element per line
func printElement(out io.Writer, e qdef.IElement, depth int) {
	b := strings.Builder{}
	b.WriteString(strings.Repeat(indent, depth))
	b.WriteString(e.Type().Name())

	if roles := e.ParentRoles(); len(roles) > 0 {
		names := make([]string, 0, len(roles))
		for _, r := range roles {
			names = append(names, r.Name())
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(names, ", "))
	}
	for _, a := range e.Attributes() {
		fmt.Fprintf(&b, " %s=%q", a.Name(), a.Type().Format(e.Attribute(a)))
	}
	if text, ok := e.ValueText(); ok {
		fmt.Fprintf(&b, " = %s", text)
	}
	if ext := e.External(); ext != nil {
		fmt.Fprintf(&b, " <- %s", ext.Position().File)
	}
	fmt.Fprintln(out, b.String())

	for _, ch := range e.Children() {
		printElement(out, ch, depth+1)
	}
}
