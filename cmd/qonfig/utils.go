/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package main

import (
	"os"

	"github.com/untillpro/goutils/logger"

	"github.com/voedger/qonfig/pkg/qcatalog"
)

// Opens workspace of params directory
func openWorkspace(params *qonfigParams) (*qcatalog.Workspace, error) {
	fsys := os.DirFS(params.Dir)
	c, err := qcatalog.Load(fsys, params.Catalog)
	if err != nil {
		return nil, err
	}
	if logger.IsVerbose() {
		logger.Verbose("opening workspace", params.Dir)
	}
	return qcatalog.Open(fsys, c)
}
