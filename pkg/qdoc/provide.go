/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdoc

import (
	"context"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/voedger/qonfig/pkg/diag"
	"github.com/voedger/qonfig/pkg/qdef"
)

// Creates document parser.
//
// Namespace references of documents are resolved by provider. Provider may be nil
// if all toolkits are passed with WithToolkits option.
func NewParser(provider qdef.IToolkitProvider, opts ...Option) *Parser {
	p := &Parser{provider: provider}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Toolkits to resolve unqualified root tags and namespace references
func WithToolkits(tt ...qdef.IToolkit) Option {
	return func(p *Parser) {
		for _, tk := range tt {
			p.toolkits = appendToolkit(p.toolkits, tk)
		}
	}
}

// Registry to fulfill promise placeholders
func WithPromises(r *PromiseRegistry) Option {
	return func(p *Parser) { p.promises = r }
}

func NewPromiseRegistry() *PromiseRegistry {
	return &PromiseRegistry{fulfillers: make(map[string][]fulfillerEntry)}
}

// Parses type-level metadata content against metadata roles of owner.
//
// Content is a sequence of elements. Unqualified tags are resolved in owner toolkit.
// Lines of issues are counted from pos.
func ParseMetadata(owner qdef.IElementOrAddOn, content string, pos diag.Position) (qdef.IMetadata, error) {
	md := &metadata{owner: owner, pos: pos}
	s := diag.NewSession(owner.QualifiedName(), pos)

	src := "<" + metadataTag + ">" + content + "</" + metadataTag + ">"
	doc, err := xmlquery.ParseWithOptions(strings.NewReader(src), xmlquery.ParserOptions{WithLineNumbers: true})
	if err != nil {
		return nil, ErrMalformed(pos.String(), err)
	}
	root := documentElement(doc)

	line0 := 0
	if pos.Line > 0 {
		line0 = pos.Line - 1
	}
	p := NewParser(nil, WithToolkits(owner.Toolkit()))
	c := p.newContext(context.Background(), pos.File, line0, false)
	f := (*frame)(nil).push(c, root, s)
	sl := slot{owner: owner, roles: owner.MetaChildren(), meta: true, scope: p.toolkits}
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode {
			continue
		}
		if e := c.build(f, n, sl, s); e != nil {
			md.children = append(md.children, e)
		}
	}
	validateMultiplicity(owner.MetaChildren(), md.children, owner, s)

	if err := s.Err(); err != nil {
		return nil, err
	}
	return md, nil
}
