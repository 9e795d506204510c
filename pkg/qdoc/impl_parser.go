/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdoc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"
	"github.com/untillpro/goutils/logger"
	"golang.org/x/exp/slices"

	"github.com/voedger/qonfig/pkg/diag"
	"github.com/voedger/qonfig/pkg/qdef"
)

// Validating document parser.
//
// Parser is safe for concurrent use if its toolkit provider and promise fulfillers are.
type Parser struct {
	provider qdef.IToolkitProvider
	promises *PromiseRegistry
	toolkits []qdef.IToolkit
}

// Parses document from reader.
//
// In partial mode multiplicity and required/forbidden checks are skipped.
// Returns aggregate diag.Errors if any error is found.
func (p *Parser) Parse(ctx context.Context, file string, r io.Reader, partial bool) (qdef.IElement, error) {
	doc, err := xmlquery.ParseWithOptions(r, xmlquery.ParserOptions{WithLineNumbers: true})
	if err != nil {
		return nil, ErrMalformed(file, err)
	}
	root := documentElement(doc)
	if root == nil {
		return nil, ErrMalformed(file, errors.New("no root element"))
	}
	return p.ParseNode(ctx, file, root, partial)
}

// Parses document element node. Namespace bindings of node ancestors are visible.
func (p *Parser) ParseNode(ctx context.Context, file string, n *xmlquery.Node, partial bool) (qdef.IElement, error) {
	s := diag.NewSession(file, diag.Position{File: file})
	c := p.newContext(ctx, file, 0, partial)
	e := c.build(ancestorsFrame(c, n, s), n, slot{scope: p.toolkits}, s)
	if err := s.Err(); err != nil {
		return nil, err
	}
	if logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("%s: parsed %v, partial: %v", file, e, partial))
	}
	return e, nil
}

func (p *Parser) Promises() *PromiseRegistry { return p.promises }

func (p *Parser) newContext(ctx context.Context, file string, line0 int, partial bool) *docContext {
	return &docContext{
		ctx:     ctx,
		p:       p,
		file:    file,
		line0:   line0,
		partial: partial,
		uris:    make(map[string]qdef.IToolkit),
	}
}

// Returns toolkit satisfying reference: from parser toolkits or from provider
func (p *Parser) toolkit(ref qdef.ToolkitRef) (qdef.IToolkit, error) {
	for _, tk := range p.toolkits {
		if tk.Name() == ref.Name && tk.Version().Satisfies(ref.Version) {
			return tk, nil
		}
	}
	if p.provider == nil {
		return nil, qdef.ErrNotFound("toolkit «%v»", ref)
	}
	return p.provider.Toolkit(ref)
}

// State of single parse call
type docContext struct {
	ctx     context.Context
	p       *Parser
	file    string
	line0   int
	partial bool
	uris    map[string]qdef.IToolkit
}

// Roles, which children of element can fulfill
type slot struct {
	parent *element
	owner  qdef.IElementOrAddOn
	roles  []qdef.IChildDef
	meta   bool
	scope  []qdef.IToolkit
}

func (c *docContext) pos(n *xmlquery.Node) diag.Position {
	return diag.Position{File: c.file, Line: n.LineNumber + c.line0}
}

func (c *docContext) toolkitByURI(uri string) (qdef.IToolkit, error) {
	if tk, ok := c.uris[uri]; ok {
		return tk, nil
	}
	ref, err := qdef.ParseToolkitRef(uri)
	if err != nil {
		return nil, err
	}
	tk, err := c.p.toolkit(ref)
	if err != nil {
		return nil, err
	}
	c.uris[uri] = tk
	return tk, nil
}

// Builds element from node. Returns nil if element can not be built.
func (c *docContext) build(f *frame, n *xmlquery.Node, sl slot, s *diag.Session) *element {
	pos := c.pos(n)
	ns := s.For(n.Data, pos)
	f = f.push(c, n, ns)

	scope := slices.Clone(sl.scope)
	for _, tk := range f.toolkits() {
		scope = appendToolkit(scope, tk)
	}

	t, err := c.elementType(n, sl, scope, ns)
	if err != nil {
		ns.Error(err)
		return nil
	}
	if t.Abstract() {
		ns.Error(qdef.ErrAbstract("element-def «%v» can not be instantiated", t))
		return nil
	}

	e := newElement(t, pos)
	e.parent = sl.parent
	e.partial = c.partial

	var (
		roleText, extText string
		hasRole           bool
	)
	ordinary := make([]xmlquery.Attr, 0, len(n.Attr))
	for _, a := range n.Attr {
		switch {
		case isBinding(a), a.NamespaceURI == xmlNamespace:
		case a.Name.Space == "" && a.Name.Local == qdef.ReservedAttribute_Role:
			roleText, hasRole = a.Value, true
		case a.Name.Space == "" && a.Name.Local == qdef.ReservedAttribute_Extension:
			extText = a.Value
		default:
			ordinary = append(ordinary, a)
		}
	}

	for _, name := range splitList(extText) {
		a, err := c.addOn(f, t, scope, name)
		if err != nil {
			ns.Error(err)
			continue
		}
		if !a.IsAssignableFrom(t) {
			e.explicit = unionAddOns(e.explicit, a)
		}
	}

	switch {
	case sl.owner != nil && hasRole:
		for _, ref := range splitList(roleText) {
			r, err := c.role(f, sl, ref)
			if err != nil {
				ns.Error(err)
				continue
			}
			if !e.fulfills(r) {
				e.roles = append(e.roles, r.Declared())
				e.roleDefs = append(e.roleDefs, r)
			}
		}
	case sl.owner != nil:
		r, err := c.inferRole(t, e.explicit, sl)
		if err != nil {
			ns.Error(err)
			return nil
		}
		e.roles, e.roleDefs = []qdef.IChildDef{r.Declared()}, []qdef.IChildDef{r}
	case hasRole:
		ns.Error(ErrUnexpectedContent("root element «%v» can not fulfill roles", t))
	}

	c.inherit(e, scope, ns)

	for _, a := range ordinary {
		c.attribute(e, a, ns)
	}

	if text := nodeText(n); text != "" {
		if vs := e.instType.Value(); vs == nil {
			ns.Error(ErrUnexpectedContent("«%v» does not declare value, but text «%s» found", t, text))
		} else {
			e.value, e.valueText = vs.Type().Parse(text, ns), text
			e.hasValue, e.valueSpecified = true, true
		}
	}

	childScope := []qdef.IToolkit{t.Toolkit()}
	for _, tk := range scope {
		childScope = appendToolkit(childScope, tk)
	}
	csl := slot{parent: e, owner: e.instType, roles: e.instType.Children(), scope: childScope}
	for cn := n.FirstChild; cn != nil; cn = cn.NextSibling {
		if cn.Type != xmlquery.ElementNode {
			continue
		}
		if ch := c.build(f, cn, csl, ns); ch != nil {
			e.children = append(e.children, ch)
		}
	}

	e.applyDefaults()

	if t.Promise() {
		e.partial = true
		return c.fulfill(n, e, ns)
	}

	c.validate(e, ns)
	return e
}

// Resolves element-def of node
func (c *docContext) elementType(n *xmlquery.Node, sl slot, scope []qdef.IToolkit, s *diag.Session) (qdef.IElementDef, error) {
	if n.NamespaceURI != "" {
		tk, err := c.toolkitByURI(n.NamespaceURI)
		if err != nil {
			return nil, err
		}
		return tk.ElementDef(n.Data)
	}
	if len(scope) == 0 {
		return nil, qdef.ErrNotFound("no toolkit is bound to resolve «%s»", n.Data)
	}
	if sl.owner == nil {
		return c.rootType(n.Data, scope, s)
	}
	return findInScope(scope, n.Data, qdef.IToolkit.ElementDef)
}

// Resolves unqualified root tag among declared roots of toolkits in scope.
//
// If no toolkit declares roots, then all element-defs are candidates.
func (c *docContext) rootType(name string, scope []qdef.IToolkit, s *diag.Session) (qdef.IElementDef, error) {
	declared := false
	roots := make([]qdef.IElementDef, 0, 1)
	for _, tk := range scope {
		for _, r := range tk.Roots() {
			declared = true
			if r.Name() == name && !slices.Contains(roots, r) {
				roots = append(roots, r)
			}
		}
	}
	if !declared {
		return findInScope(scope, name, qdef.IToolkit.ElementDef)
	}
	switch len(roots) {
	case 0:
		return nil, qdef.ErrNotFound("root «%s» is not declared by %v", name, scope)
	case 1:
		if t, err := findInScope(scope, name, qdef.IToolkit.ElementDef); errors.Is(err, qdef.ErrAmbiguousError) || (err == nil && t != roots[0]) {
			s.Warning(fmt.Sprintf("root «%v» hides other element-defs «%s»", roots[0], name))
		}
		return roots[0], nil
	}
	return nil, qdef.ErrAmbiguous("root «%s» is declared by several toolkits: %v", name, roots)
}

// Resolves add-on from extension list
func (c *docContext) addOn(f *frame, t qdef.IElementDef, scope []qdef.IToolkit, name string) (qdef.IAddOn, error) {
	if prefix, n := qdef.SplitQualified(name); prefix != "" {
		tk, err := f.toolkit(prefix)
		if err != nil {
			return nil, err
		}
		return tk.AddOn(n)
	}
	if a, err := t.Toolkit().AddOn(name); err == nil {
		return a, nil
	}
	return findInScope(scope, name, qdef.IToolkit.AddOn)
}

// Resolves role reference: "name", "Owner.name" or "prefix:Owner.name"
func (c *docContext) role(f *frame, sl slot, ref string) (qdef.IChildDef, error) {
	prefix, rest := qdef.SplitQualified(ref)
	ownerName, name := qdef.SplitMember(rest)
	var (
		owner qdef.IElementOrAddOn
		err   error
	)
	switch {
	case prefix != "" && ownerName == "":
		return nil, qdef.ErrInvalid("role «%s» qualified by namespace requires owner type", ref)
	case prefix != "":
		tk, err := f.toolkit(prefix)
		if err != nil {
			return nil, err
		}
		if owner, err = tk.Type(ownerName); err != nil {
			return nil, err
		}
	case ownerName != "":
		if owner, err = sl.owner.KnownType(ownerName); err != nil {
			return nil, err
		}
	}
	if sl.meta {
		return sl.owner.FindMetaChild(owner, name)
	}
	return sl.owner.FindChild(owner, name)
}

// Returns the single role of slot, which element can fulfill
func (c *docContext) inferRole(t qdef.IElementDef, explicit []qdef.IAddOn, sl slot) (qdef.IChildDef, error) {
	cands := make([]qdef.IChildDef, 0, 1)
	bound := t
	if t.Promise() {
		bound = promiseBound(t)
	}
	for _, r := range sl.roles {
		if bound == nil || canFulfill(bound, explicit, r) {
			cands = append(cands, r)
		}
	}
	switch len(cands) {
	case 0:
		return nil, qdef.ErrNotFound("no role of «%v» can be fulfilled by «%v»", sl.owner, t)
	case 1:
		return cands[0], nil
	}
	return nil, qdef.ErrAmbiguous("«%v» can fulfill several roles of «%v»: %v, use «%s» attribute", t, sl.owner, cands, qdef.ReservedAttribute_Role)
}

func canFulfill(t qdef.IElementDef, explicit []qdef.IAddOn, r qdef.IChildDef) bool {
	if r.Type().IsAssignableFrom(t) {
		return true
	}
	addOns := unionAddOns(explicit, r.Inherits()...)
	if len(addOns) == 0 {
		return false
	}
	it, err := t.Toolkit().InstanceType(t, addOns)
	return err == nil && r.Type().IsAssignableFrom(it)
}

// Computes inheritance and instance type of element and checks its roles.
//
// Inheritance is explicit add-ons, add-ons of roles and add-ons of auto-inheritance rules
// of toolkits in scope, evaluated until no more add-ons found.
// Promise placeholder inherits explicit add-ons only, its roles are checked by content.
func (c *docContext) inherit(e *element, scope []qdef.IToolkit, s *diag.Session) {
	t := e.typ
	if t.Promise() {
		if len(e.explicit) > 0 {
			it, err := t.Toolkit().InstanceType(t, e.explicit)
			if err != nil {
				s.Error(err)
				return
			}
			e.instType = it
		}
		return
	}

	inh := slices.Clone(e.explicit)
	add := func(a qdef.IAddOn) bool {
		if a.IsAssignableFrom(t) || slices.Contains(inh, a) {
			return false
		}
		inh = append(inh, a)
		e.auto = append(e.auto, a)
		return true
	}
	for _, r := range e.roleDefs {
		for _, a := range r.Inherits() {
			add(a)
		}
	}
	scope = appendToolkit(scope, t.Toolkit())
	for changed := true; changed; {
		changed = false
		for _, tk := range scope {
			for _, a := range tk.AutoInheritance(t, inh, e.roles) {
				changed = add(a) || changed
			}
		}
	}

	if len(inh) > 0 {
		it, err := t.Toolkit().InstanceType(t, inh)
		if err != nil {
			s.Error(err)
		} else {
			e.instType = it
		}
	}

	for _, r := range e.roleDefs {
		if !r.Type().IsAssignableFrom(e.instType) {
			s.Error(qdef.ErrIncompatible("«%v» can not fulfill role «%v» of type «%v»", t, r.Declared(), r.Type()))
		}
		for _, req := range r.Requires() {
			if !req.IsAssignableFrom(e.instType) {
				s.Error(qdef.ErrIncompatible("role «%v» requires fillers to inherit «%v»", r.Declared(), req))
			}
		}
	}
}

// Parses ordinary attribute: "name", "Owner.name" or "prefix:Owner.name"
func (c *docContext) attribute(e *element, a xmlquery.Attr, s *diag.Session) {
	ownerName, name := qdef.SplitMember(a.Name.Local)
	var (
		owner qdef.IElementOrAddOn
		err   error
	)
	switch {
	case a.NamespaceURI != "" && ownerName == "":
		s.Error(qdef.ErrInvalid("attribute «%s:%s» qualified by namespace requires owner type", a.Name.Space, a.Name.Local))
		return
	case a.NamespaceURI != "":
		var tk qdef.IToolkit
		if tk, err = c.toolkitByURI(a.NamespaceURI); err == nil {
			owner, err = tk.Type(ownerName)
		}
	case ownerName != "":
		owner, err = e.instType.KnownType(ownerName)
	}
	if err != nil {
		s.Error(err)
		return
	}

	def, err := e.instType.FindAttribute(owner, name)
	if err != nil {
		s.Error(err)
		return
	}
	d := def.Declared()
	if _, dup := e.attrs[d]; dup {
		s.Error(qdef.ErrAlreadyExists("attribute «%v» is specified more than once", d))
		return
	}
	as := s.For(a.Name.Local, e.pos)
	e.setAttribute(d, attrValue{value: def.Type().Parse(a.Value, as), text: a.Value, specified: true})
}

// Checks required and forbidden attributes, value and children multiplicity. Skipped in partial mode.
func (c *docContext) validate(e *element, s *diag.Session) {
	if c.partial {
		return
	}
	for _, a := range e.instType.Attributes() {
		d := a.Declared()
		v, ok := e.attrs[d]
		switch a.Specify() {
		case qdef.SpecificationType_Required:
			if !ok {
				s.Error(qdef.ErrRequired("attribute «%v» of «%v»", d, e.typ))
			}
		case qdef.SpecificationType_Forbidden:
			if ok && v.specified {
				s.Error(qdef.ErrForbidden("attribute «%v» of «%v» can not be specified", d, e.typ))
			}
		}
	}
	if vs := e.instType.Value(); vs != nil {
		switch vs.Specify() {
		case qdef.SpecificationType_Required:
			if !e.hasValue {
				s.Error(qdef.ErrRequired("value of «%v»", e.typ))
			}
		case qdef.SpecificationType_Forbidden:
			if e.valueSpecified {
				s.Error(qdef.ErrForbidden("value of «%v» can not be specified", e.typ))
			}
		}
	}
	validateMultiplicity(e.instType.Children(), e.children, e.typ, s)
}

func validateMultiplicity(roles []qdef.IChildDef, children []*element, owner qdef.IElementOrAddOn, s *diag.Session) {
	for _, r := range roles {
		n := 0
		for _, ch := range children {
			if ch.fulfills(r) {
				n++
			}
		}
		if n < int(r.Min()) || (r.Max() != qdef.Occurs_Unbounded && n > int(r.Max())) {
			s.Error(qdef.ErrMultiplicity("role «%v» of «%v» expects %s children, found %d", r.Declared(), owner, occursRange(r.Min(), r.Max()), n))
		}
	}
}

// Resolves name in toolkits of scope. Several distinct types found is ambiguity.
func findInScope[T comparable](scope []qdef.IToolkit, name string, find func(qdef.IToolkit, string) (T, error)) (T, error) {
	var zero T
	found := make([]T, 0, 1)
	for _, tk := range scope {
		t, err := find(tk, name)
		switch {
		case err == nil:
			if !slices.Contains(found, t) {
				found = append(found, t)
			}
		case errors.Is(err, qdef.ErrAmbiguousError):
			return zero, err
		}
	}
	switch len(found) {
	case 0:
		return zero, qdef.ErrTypeNotFound(name)
	case 1:
		return found[0], nil
	}
	return zero, qdef.ErrAmbiguous("«%s» is declared by several toolkits: %v", name, found)
}
