/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qcatalog

import (
	"fmt"
	"io/fs"
)

// Parses and validates catalog
func Parse(data []byte) (*Catalog, error) {
	return parseImpl(data)
}

// Reads catalog from file of fsys
func Load(fsys fs.FS, name string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	c, err := parseImpl(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// Compiles every toolkit of catalog directories and prepares document parser.
//
// Paths of catalog and of documents are relative to fsys root.
// Returns error if any toolkit fails to compile or promise binding is not valid.
func Open(fsys fs.FS, c *Catalog) (*Workspace, error) {
	return openImpl(fsys, c)
}
