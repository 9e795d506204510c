/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qparser

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/untillpro/goutils/logger"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/voedger/qonfig/pkg/qdef"
)

type source struct {
	ref     qdef.ToolkitRef
	file    *FileToolkitAST
	loading bool
	done    bool
	tk      qdef.IToolkit
	err     error
}

// Compiles toolkits from sources on demand and caches them.
//
// Toolkit is selected by name and major version, the highest minor version not less than requested wins.
//
// # Implements:
//   - qdef.IToolkitProvider
type Loader struct {
	fsys     fs.FS
	opts     *options
	mu       sync.Mutex
	indexed  bool
	indexErr error
	sources  map[string][]*source
}

func (l *Loader) Toolkit(ref qdef.ToolkitRef) (qdef.IToolkit, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.toolkit(ref, nil)
}

// Returns references of all indexed sources, ordered by name and version
func (l *Loader) Refs() ([]qdef.ToolkitRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.index()
	refs := make([]qdef.ToolkitRef, 0)
	for _, src := range l.ordered() {
		refs = append(refs, src.ref)
	}
	return refs, err
}

// Compiles every indexed source. Returns compiled toolkits and joined errors of failed ones.
func (l *Loader) LoadAll() ([]qdef.IToolkit, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	errs := make([]error, 0)
	if err := l.index(); err != nil {
		errs = append(errs, err)
	}
	tt := make([]qdef.IToolkit, 0)
	for _, src := range l.ordered() {
		tk, err := l.load(src, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("%v: %w", src.ref, err))
			continue
		}
		tt = append(tt, tk)
	}
	return tt, errors.Join(errs...)
}

func (l *Loader) index() error {
	if l.indexed {
		return l.indexErr
	}
	l.indexed = true

	errs := make([]error, 0)
	files := make([]*FileToolkitAST, 0)
	for _, dir := range l.opts.dirs {
		ff, err := parseFSImpl(l.fsys, dir)
		if err != nil {
			errs = append(errs, err)
		}
		files = append(files, ff...)
	}
	for _, f := range files {
		ref, err := f.Ast.Ref()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.FileName, err))
			continue
		}
		if other := l.exact(ref); other != nil {
			errs = append(errs, ErrDuplicateSource(ref, f.FileName, other.file.FileName))
			continue
		}
		l.sources[ref.Name] = append(l.sources[ref.Name], &source{ref: ref, file: f})
	}
	for _, ss := range l.sources {
		slices.SortFunc(ss, func(a, b *source) bool {
			if a.ref.Version.Major != b.ref.Version.Major {
				return a.ref.Version.Major < b.ref.Version.Major
			}
			return a.ref.Version.Minor < b.ref.Version.Minor
		})
	}
	if logger.IsVerbose() {
		logger.Verbose("indexed", len(files), "toolkit sources")
	}
	l.indexErr = errors.Join(errs...)
	return l.indexErr
}

// Returns sources ordered by name and version
func (l *Loader) ordered() []*source {
	names := maps.Keys(l.sources)
	slices.Sort(names)
	ss := make([]*source, 0, len(names))
	for _, n := range names {
		ss = append(ss, l.sources[n]...)
	}
	return ss
}

func (l *Loader) exact(ref qdef.ToolkitRef) *source {
	for _, src := range l.sources[ref.Name] {
		if src.ref == ref {
			return src
		}
	}
	return nil
}

// Returns source with the highest minor version, which satisfies ref
func (l *Loader) match(ref qdef.ToolkitRef) *source {
	var found *source
	for _, src := range l.sources[ref.Name] {
		if src.ref.Version.Satisfies(ref.Version) && (found == nil || src.ref.Version.Minor > found.ref.Version.Minor) {
			found = src
		}
	}
	return found
}

func (l *Loader) toolkit(ref qdef.ToolkitRef, path []qdef.ToolkitRef) (qdef.IToolkit, error) {
	_ = l.index()
	src := l.match(ref)
	if src == nil {
		err := qdef.ErrNotFound("toolkit «%v»", ref)
		if l.indexErr != nil {
			err = errors.Join(err, l.indexErr)
		}
		return nil, err
	}
	return l.load(src, path)
}

func (l *Loader) load(src *source, path []qdef.ToolkitRef) (qdef.IToolkit, error) {
	if src.done {
		return src.tk, src.err
	}
	path = append(slices.Clone(path), src.ref)
	if src.loading {
		return nil, ErrDependencyCycle(path)
	}

	src.loading = true
	src.tk, src.err = compile(src.file, &loaderScope{l, path}, l.opts)
	src.loading, src.done = false, true
	if src.err != nil && logger.IsVerbose() {
		logger.Verbose("toolkit", src.ref, "failed to compile")
	}
	return src.tk, src.err
}

// Provides dependencies of toolkit being compiled by loader
type loaderScope struct {
	l    *Loader
	path []qdef.ToolkitRef
}

func (s *loaderScope) Toolkit(ref qdef.ToolkitRef) (qdef.IToolkit, error) {
	return s.l.toolkit(ref, s.path)
}
