/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qparser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/voedger/qonfig/pkg/diag"
)

func position(p lexer.Position) diag.Position {
	return diag.Position{File: p.Filename, Line: p.Line, Column: p.Column, Offset: p.Offset}
}

// Returns "A -> B -> A" path from type to on path type
func cyclePath(path []*typeContext, to *typeContext) string {
	names := make([]string, 0, len(path)+1)
	from := 0
	for i, t := range path {
		if t == to {
			from = i
			break
		}
	}
	for _, t := range path[from:] {
		names = append(names, t.stmt.Name)
	}
	names = append(names, to.stmt.Name)
	return strings.Join(names, pathSeparator)
}

func typeDescription(st *TypeStmt) string {
	for _, item := range st.Items {
		if item.Description != nil {
			return item.Description.Text
		}
	}
	return ""
}

func (o ValueOpt) name() string {
	switch {
	case o.Specify != "":
		return "specify"
	case o.Default != nil:
		return "default"
	}
	return "description"
}

func (o ChildOpt) name() string {
	switch {
	case o.Min != nil:
		return "min"
	case o.Max != nil:
		return "max"
	case len(o.Inherits) > 0:
		return "inherits"
	case len(o.Requires) > 0:
		return "requires"
	}
	return "description"
}
