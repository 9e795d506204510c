/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/cobrau"

	"github.com/voedger/qonfig/pkg/qcatalog"
)

//go:embed version
var version string

func main() {
	if err := execRootCmd(os.Args, version); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execRootCmd(args []string, ver string) error {
	return cobrau.ExecCommandAndCatchInterrupt(newRootCmd(args, ver))
}

func newRootCmd(args []string, ver string) *cobra.Command {
	params := &qonfigParams{}
	rootCmd := cobrau.PrepareRootCmd(
		"qonfig",
		"toolkit compiler and document validator",
		args,
		ver,
		newCheckCmd(params),
		newParseCmd(params),
		newDescribeCmd(params),
	)
	rootCmd.PersistentFlags().StringVarP(&params.Dir, "change-dir", "C", ".", "Workspace directory")
	rootCmd.PersistentFlags().StringVar(&params.Catalog, "catalog", qcatalog.DefaultCatalogFile, "Catalog file, relative to workspace directory")
	return rootCmd
}
