/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdoc

import (
	"github.com/antchfx/xmlquery"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/voedger/qonfig/pkg/diag"
	"github.com/voedger/qonfig/pkg/qdef"
)

// Namespace bindings visible at document element.
//
// Frame is immutable. Element, which declares bindings, pushes overlay frame,
// its descendants see the overlay, siblings see the parent frame.
type frame struct {
	parent   *frame
	bindings map[string]qdef.IToolkit
}

// Returns frame with bindings declared by node or f itself if node declares nothing.
func (f *frame) push(c *docContext, n *xmlquery.Node, s *diag.Session) *frame {
	var bindings map[string]qdef.IToolkit
	for _, a := range n.Attr {
		if !isBinding(a) {
			continue
		}
		prefix := a.Name.Local
		if a.Name.Space == "" {
			prefix = ""
		}
		tk, err := c.toolkitByURI(a.Value)
		if err != nil {
			s.ErrorAt(c.pos(n), err)
			continue
		}
		if bindings == nil {
			bindings = make(map[string]qdef.IToolkit)
		}
		bindings[prefix] = tk
	}
	if bindings == nil {
		return f
	}
	return &frame{parent: f, bindings: bindings}
}

// Returns toolkit bound to prefix in nearest frame
func (f *frame) toolkit(prefix string) (qdef.IToolkit, error) {
	for fr := f; fr != nil; fr = fr.parent {
		if tk, ok := fr.bindings[prefix]; ok {
			return tk, nil
		}
	}
	return nil, qdef.ErrNotFound("namespace prefix «%s» is not bound", prefix)
}

// Returns distinct bound toolkits, nearest frames first
func (f *frame) toolkits() []qdef.IToolkit {
	res := make([]qdef.IToolkit, 0)
	for fr := f; fr != nil; fr = fr.parent {
		prefixes := maps.Keys(fr.bindings)
		slices.Sort(prefixes)
		for _, p := range prefixes {
			res = appendToolkit(res, fr.bindings[p])
		}
	}
	return res
}

// Builds frame of node ancestors, outermost first
func ancestorsFrame(c *docContext, n *xmlquery.Node, s *diag.Session) *frame {
	chain := make([]*xmlquery.Node, 0)
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == xmlquery.ElementNode {
			chain = append(chain, p)
		}
	}
	var f *frame
	for i := len(chain) - 1; i >= 0; i-- {
		f = f.push(c, chain[i], s)
	}
	return f
}
