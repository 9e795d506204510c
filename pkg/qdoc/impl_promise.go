/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdoc

import (
	"fmt"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/untillpro/goutils/logger"

	"github.com/voedger/qonfig/pkg/diag"
	"github.com/voedger/qonfig/pkg/qdef"
)

type fulfillerEntry struct {
	ref       qdef.ToolkitRef
	fulfiller IPromiseFulfiller
}

// Promise fulfillers keyed by toolkit and promise type name.
//
// Registry is safe for concurrent use.
type PromiseRegistry struct {
	mu         sync.RWMutex
	fulfillers map[string][]fulfillerEntry
}

func promiseKey(toolkit, typeName string) string {
	return toolkit + qdef.AliasSeparator + typeName
}

// Registers fulfiller for type of toolkit. Toolkit versions with same major and not less minor match.
func (r *PromiseRegistry) Register(ref qdef.ToolkitRef, typeName string, f IPromiseFulfiller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := promiseKey(ref.Name, typeName)
	r.fulfillers[k] = append(r.fulfillers[k], fulfillerEntry{ref, f})
}

// Returns fulfiller of type or of the nearest type in its extends chain.
//
// Returns nil if no fulfiller registered.
func (r *PromiseRegistry) Lookup(t qdef.IElementDef) IPromiseFulfiller {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for s := t; s != nil; s = s.Super() {
		tk := s.Toolkit()
		for _, e := range r.fulfillers[promiseKey(tk.Name(), s.Name())] {
			if tk.Version().Satisfies(e.ref.Version) {
				return e.fulfiller
			}
		}
	}
	return nil
}

// Returns the nearest ancestor of promise type, which is not a promise.
//
// Returns nil if promise type has no such ancestor and can be replaced by any content.
func promiseBound(t qdef.IElementDef) qdef.IElementDef {
	for s := t.Super(); s != nil; s = s.Super() {
		if !s.Promise() {
			return s
		}
	}
	return nil
}

// Replaces placeholder by external content.
//
// Template returned by fulfiller is rebuilt under placeholder roles and explicit inheritance.
func (c *docContext) fulfill(n *xmlquery.Node, ph *element, s *diag.Session) *element {
	f := c.p.promises.Lookup(ph.typ)
	if f == nil {
		s.Error(ErrNoFulfiller(ph.typ))
		return nil
	}
	if logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("%s: fulfilling %v", c.file, ph))
	}
	res, err := f.Fulfill(c.ctx, Placeholder{Element: ph, Roles: ph.roles, Node: n, Parser: c.p})
	if err != nil {
		s.Merge(err)
		return nil
	}
	tmpl, ok := res.(*element)
	if !ok || tmpl == nil {
		s.Error(ErrUnexpectedContent("fulfiller of «%v» returned foreign element %T", ph.typ, res))
		return nil
	}
	if b := promiseBound(ph.typ); b != nil && !b.IsAssignableFrom(tmpl.instType) {
		s.ErrorAt(ph.pos, qdef.ErrIncompatible("content «%v» of «%v» is not «%v»", tmpl.typ, ph.typ, b))
		return nil
	}
	e := c.rebuild(tmpl, ph.parent, ph.roleDefs, ph.explicit, s)
	e.promise, e.external = ph, tmpl
	return e
}

// Rebuilds element tree under new parent, roles and additional explicit inheritance.
//
// Auto-inheritance is recomputed and element is validated.
func (c *docContext) rebuild(src *element, parent *element, roleDefs []qdef.IChildDef, extra []qdef.IAddOn, s *diag.Session) *element {
	es := s.For(src.typ.Name(), src.pos)
	e := newElement(src.typ, src.pos)
	e.parent = parent
	e.partial = c.partial
	e.explicit = unionAddOns(src.explicit, extra...)
	e.roleDefs = roleDefs
	for _, r := range roleDefs {
		e.roles = append(e.roles, r.Declared())
	}

	scope := []qdef.IToolkit{src.typ.Toolkit()}
	if parent != nil {
		scope = appendToolkit(scope, parent.typ.Toolkit())
	}
	c.inherit(e, scope, es)

	for _, d := range src.attrOrder {
		if v := src.attrs[d]; v.specified {
			e.setAttribute(d, v)
		}
	}
	if src.valueSpecified {
		e.value, e.valueText, e.hasValue, e.valueSpecified = src.value, src.valueText, true, true
	}

	for _, ch := range src.children {
		rd := make([]qdef.IChildDef, 0, len(ch.roles))
		for _, r := range ch.roles {
			if eff := e.instType.Child(r); eff != nil {
				rd = append(rd, eff)
			}
		}
		nc := c.rebuild(ch, e, rd, nil, es)
		nc.promise, nc.external = ch.promise, ch.external
		e.children = append(e.children, nc)
	}

	e.applyDefaults()
	c.validate(e, es)
	return e
}
