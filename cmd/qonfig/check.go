/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(params *qonfigParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [document...]",
		Short: "compile workspace toolkits and validate documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(params)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tk := range w.Toolkits() {
				fmt.Fprintln(out, tk.Ref(), "ok")
			}

			errs := make([]error, 0)
			for _, doc := range args {
				if _, err := w.ParseFile(cmd.Context(), doc, false); err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintln(out, doc, "ok")
			}
			return errors.Join(errs...)
		},
	}
	return cmd
}
