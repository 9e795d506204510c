/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qpromise

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/untillpro/goutils/logger"

	"github.com/voedger/qonfig/pkg/qdef"
	"github.com/voedger/qonfig/pkg/qdoc"
)

func (x *ExternalContent) Fulfill(ctx context.Context, p qdoc.Placeholder) (qdef.IElement, error) {
	file, fragment, err := x.reference(p.Element)
	if err != nil {
		return nil, err
	}
	key := file + FragmentSeparator + fragment
	return x.cache.Get(ctx, key, func(ctx context.Context) (qdef.IElement, error) {
		return x.load(ctx, p.Parser, file, fragment)
	})
}

// Returns normalized file path and fragment of placeholder reference
func (x *ExternalContent) reference(ph qdef.IElement) (file, fragment string, err error) {
	v, err := ph.AttributeByName(x.attr)
	if err != nil {
		return "", "", err
	}
	ref, ok := v.(string)
	if !ok || ref == "" {
		return "", "", ErrBadReference("«%v» has no reference in attribute «%s»", ph.Type(), x.attr)
	}
	file, fragment, _ = strings.Cut(ref, FragmentSeparator)

	src := ph.Position().File
	switch {
	case file == "":
		file = src
	case path.IsAbs(file):
		file = strings.TrimPrefix(path.Clean(file), "/")
	default:
		file = path.Join(path.Dir(src), file)
	}
	if file == "" || !fs.ValidPath(file) {
		return "", "", ErrBadReference("«%s» is outside of content root", ref)
	}
	return file, fragment, nil
}

// Reads file, selects fragment node and parses it as partial document
func (x *ExternalContent) load(ctx context.Context, p *qdoc.Parser, file, fragment string) (qdef.IElement, error) {
	content, err := fs.ReadFile(x.fsys, file)
	if err != nil {
		return nil, ErrBadReference("«%s»: %v", file, err)
	}
	doc, err := xmlquery.ParseWithOptions(bytes.NewReader(content), xmlquery.ParserOptions{WithLineNumbers: true})
	if err != nil {
		return nil, qdoc.ErrMalformed(file, err)
	}

	n, err := selectNode(doc, fragment)
	if err != nil {
		return nil, fmt.Errorf("«%s»: %w", file, err)
	}
	if logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("loading external content «%s%s%s»", file, FragmentSeparator, fragment))
	}
	return p.ParseNode(ctx, file, n, true)
}

// Returns document element or element selected by xpath expression
func selectNode(doc *xmlquery.Node, fragment string) (*xmlquery.Node, error) {
	if fragment == "" {
		for n := doc.FirstChild; n != nil; n = n.NextSibling {
			if n.Type == xmlquery.ElementNode {
				return n, nil
			}
		}
		return nil, ErrBadReference("no root element")
	}
	expr, err := xpath.Compile(fragment)
	if err != nil {
		return nil, ErrBadReference("fragment «%s»: %v", fragment, err)
	}
	n := xmlquery.QuerySelector(doc, expr)
	if n == nil || n.Type != xmlquery.ElementNode {
		return nil, ErrBadReference("fragment «%s» selects no element", fragment)
	}
	return n, nil
}
