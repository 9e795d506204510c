/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdoc

import (
	"context"

	"github.com/antchfx/xmlquery"

	"github.com/voedger/qonfig/pkg/qdef"
)

// Promise placeholder found in document
type Placeholder struct {
	// Partial element built from placeholder node
	Element qdef.IElement

	// Declared roles the placeholder fulfills in parent, empty for root
	Roles []qdef.IChildDef

	// Source node of placeholder
	Node *xmlquery.Node

	// Parser, which found the placeholder. Fulfillers parse external content with it.
	Parser *Parser
}

// Fulfills promise placeholders with external content.
//
// Fulfiller returns a template: element tree parsed in partial mode.
// Template is rebuilt under placeholder roles and inheritance and validated.
type IPromiseFulfiller interface {
	Fulfill(ctx context.Context, p Placeholder) (qdef.IElement, error)
}

// Adapts function to IPromiseFulfiller
type PromiseFulfillerFunc func(ctx context.Context, p Placeholder) (qdef.IElement, error)

func (f PromiseFulfillerFunc) Fulfill(ctx context.Context, p Placeholder) (qdef.IElement, error) {
	return f(ctx, p)
}

// Parser option
type Option func(*Parser)
