/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qcatalog

import (
	"io/fs"

	"github.com/voedger/qonfig/pkg/qdef"
	"github.com/voedger/qonfig/pkg/qdoc"
	"github.com/voedger/qonfig/pkg/qparser"
)

// Workspace catalog, read from YAML:
//
//	toolkits:
//	  - toolkits
//	  - vendor/toolkits
//	promises:
//	  - toolkit: Lib v1.0
//	    type: include
//	    attribute: src
//	cache-size: 512
//	log-level: verbose
type Catalog struct {
	// Directories with toolkit sources, relative to workspace root
	Toolkits []string `yaml:"toolkits"`

	// Promise types fulfilled by external content of workspace
	Promises []PromiseBinding `yaml:"promises"`

	// Size of auto-inheritance and instance type caches of every toolkit. Zero means default
	CacheSize int `yaml:"cache-size,omitempty"`

	// One of none, error, warning, info, verbose, trace. Empty keeps current level
	LogLevel string `yaml:"log-level,omitempty"`
}

type PromiseBinding struct {
	// Toolkit reference, "Name vMajor.Minor"
	Toolkit string `yaml:"toolkit"`

	// Promise element-def name
	Type string `yaml:"type"`

	// Placeholder attribute with content reference, `ref` if empty
	Attribute string `yaml:"attribute,omitempty"`
}

// Compiled toolkits and document parser of workspace.
type Workspace struct {
	catalog  *Catalog
	fsys     fs.FS
	loader   *qparser.Loader
	toolkits []qdef.IToolkit
	parser   *qdoc.Parser
}
