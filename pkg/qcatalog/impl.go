/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qcatalog

import (
	"bytes"
	"context"
	"errors"
	"io/fs"

	"github.com/untillpro/goutils/logger"
	"gopkg.in/yaml.v2"

	"github.com/voedger/qonfig/pkg/qdef"
	"github.com/voedger/qonfig/pkg/qdoc"
	"github.com/voedger/qonfig/pkg/qparser"
	"github.com/voedger/qonfig/pkg/qpromise"
)

func parseImpl(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, ErrInvalidCatalog("%v", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Returns joined errors of every invalid field
func (c *Catalog) validate() error {
	errs := make([]error, 0)
	if len(c.Toolkits) == 0 {
		errs = append(errs, ErrInvalidCatalog("no toolkit directories"))
	}
	for _, dir := range c.Toolkits {
		if !fs.ValidPath(dir) {
			errs = append(errs, ErrInvalidCatalog("toolkit directory «%s» is not a valid path", dir))
		}
	}
	for i, p := range c.Promises {
		if _, err := qdef.ParseToolkitRef(p.Toolkit); err != nil {
			errs = append(errs, ErrInvalidCatalog("promise %d: %v", i, err))
		}
		if p.Type == "" {
			errs = append(errs, ErrInvalidCatalog("promise %d: type is missed", i))
		}
	}
	if c.CacheSize < 0 {
		errs = append(errs, ErrInvalidCatalog("negative cache size %d", c.CacheSize))
	}
	if _, ok := logLevels[c.LogLevel]; !ok && c.LogLevel != "" {
		errs = append(errs, ErrInvalidCatalog("unknown log level «%s»", c.LogLevel))
	}
	return errors.Join(errs...)
}

func openImpl(fsys fs.FS, c *Catalog) (*Workspace, error) {
	if l, ok := logLevels[c.LogLevel]; ok {
		logger.SetLogLevel(l)
	}

	opts := []qparser.Option{qparser.WithDirs(c.Toolkits...)}
	if c.CacheSize > 0 {
		opts = append(opts, qparser.WithCacheSizes(c.CacheSize, c.CacheSize))
	}
	w := &Workspace{
		catalog: c,
		fsys:    fsys,
		loader:  qparser.NewLoader(fsys, opts...),
	}

	tt, err := w.loader.LoadAll()
	if err != nil {
		return nil, err
	}
	w.toolkits = tt

	reg, err := w.promises()
	if err != nil {
		return nil, err
	}
	w.parser = qdoc.NewParser(w.loader, qdoc.WithToolkits(tt...), qdoc.WithPromises(reg))

	if logger.IsVerbose() {
		logger.Verbose("workspace opened,", len(tt), "toolkits,", len(c.Promises), "promises")
	}
	return w, nil
}

// Registers external content fulfillers of promise bindings.
//
// Bindings with the same attribute share one content cache.
func (w *Workspace) promises() (*qdoc.PromiseRegistry, error) {
	reg := qdoc.NewPromiseRegistry()
	contents := make(map[string]*qpromise.ExternalContent)
	errs := make([]error, 0)
	for _, p := range w.catalog.Promises {
		ref, _ := qdef.ParseToolkitRef(p.Toolkit)
		tk, err := w.loader.Toolkit(ref)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t, err := tk.ElementDef(p.Type)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !t.Promise() {
			errs = append(errs, ErrInvalidCatalog("«%v» is not a promise", t))
			continue
		}

		attr := p.Attribute
		if attr == "" {
			attr = qpromise.DefaultRefAttribute
		}
		x, ok := contents[attr]
		if !ok {
			x = qpromise.NewExternalContent(w.fsys, qpromise.WithRefAttribute(attr))
			contents[attr] = x
		}
		reg.Register(ref, p.Type, x)
	}
	return reg, errors.Join(errs...)
}

func (w *Workspace) Catalog() *Catalog { return w.catalog }

// Returns compiled toolkits ordered by name and version
func (w *Workspace) Toolkits() []qdef.IToolkit { return w.toolkits }

// Returns toolkit satisfying reference
func (w *Workspace) Toolkit(ref qdef.ToolkitRef) (qdef.IToolkit, error) { return w.loader.Toolkit(ref) }

func (w *Workspace) Parser() *qdoc.Parser { return w.parser }

// Parses document file of workspace.
func (w *Workspace) ParseFile(ctx context.Context, name string, partial bool) (qdef.IElement, error) {
	data, err := fs.ReadFile(w.fsys, name)
	if err != nil {
		return nil, err
	}
	return w.parser.Parse(ctx, name, bytes.NewReader(data), partial)
}
