/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package main

type qonfigParams struct {
	// Workspace directory
	Dir string

	// Catalog file name in workspace
	Catalog string
}
