/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qparser

import (
	"io/fs"

	"github.com/voedger/qonfig/pkg/qdef"
)

// Parses toolkit source
func ParseToolkit(fileName, content string) (*ToolkitAST, error) {
	return parseImpl(fileName, content)
}

// Parses all toolkit sources under dir of fsys.
//
// Files with syntax errors are skipped and their errors are joined into result error.
func ParseFS(fsys fs.FS, dir string) ([]*FileToolkitAST, error) {
	return parseFSImpl(fsys, dir)
}

// Compiles toolkit from parsed source.
//
// Dependencies declared by `uses` are requested from provider. Provider may be nil
// if toolkit has no dependencies.
func CompileToolkit(file *FileToolkitAST, provider qdef.IToolkitProvider, opts ...Option) (qdef.IToolkit, error) {
	return compile(file, provider, newOptions(opts...))
}

// Returns loader, which compiles toolkits from sources of fsys on demand.
func NewLoader(fsys fs.FS, opts ...Option) *Loader {
	return &Loader{
		fsys:    fsys,
		opts:    newOptions(opts...),
		sources: make(map[string][]*source),
	}
}

// Registers parser of external value type
func WithExternalType(name string, parser qdef.ExternalParser) Option {
	return func(o *options) { o.externals[name] = parser }
}

// Sets sizes of auto-inheritance and instance type caches of compiled toolkits
func WithCacheSizes(autoInheritance, instanceTypes int) Option {
	return func(o *options) {
		o.autoCacheSize = autoInheritance
		o.instanceCacheSize = instanceTypes
	}
}

// Sets directories of fsys, which loader indexes. Loader indexes whole fsys by default
func WithDirs(dirs ...string) Option {
	return func(o *options) { o.dirs = append(o.dirs, dirs...) }
}
