/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdoc

import (
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/exp/slices"

	"github.com/voedger/qonfig/pkg/qdef"
)

func elements(ee []*element) []qdef.IElement {
	res := make([]qdef.IElement, 0, len(ee))
	for _, e := range ee {
		res = append(res, e)
	}
	return res
}

func childrenFor(ee []*element, role qdef.IChildDef) []qdef.IElement {
	res := make([]qdef.IElement, 0)
	if role == nil {
		return res
	}
	for _, e := range ee {
		if e.fulfills(role) {
			res = append(res, e)
		}
	}
	return res
}

// Splits role or extension list by commas and whitespaces
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(listSeparators, r) })
}

// Returns first element node of document
func documentElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

// Returns trimmed text of direct text children
func nodeText(n *xmlquery.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func isBinding(a xmlquery.Attr) bool {
	return a.Name.Space == xmlnsAttribute || (a.Name.Space == "" && a.Name.Local == xmlnsAttribute)
}

func unionAddOns(a []qdef.IAddOn, b ...qdef.IAddOn) []qdef.IAddOn {
	res := slices.Clone(a)
	for _, x := range b {
		if !slices.Contains(res, x) {
			res = append(res, x)
		}
	}
	return res
}

func appendToolkit(tt []qdef.IToolkit, t qdef.IToolkit) []qdef.IToolkit {
	if t == nil || slices.Contains(tt, t) {
		return tt
	}
	return append(tt, t)
}

func occursRange(min, max qdef.Occurs) string {
	if min == max {
		return min.String()
	}
	return min.String() + ".." + max.String()
}
