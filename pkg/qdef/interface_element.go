/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import "github.com/voedger/qonfig/pkg/diag"

// Element of parsed document. Read only.
type IElement interface {
	// Returns element-def the element is instance of
	Type() IElementDef

	// Returns add-ons inherited explicitly by the element
	Inheritance() []IAddOn

	// Returns add-ons contributed by roles and auto-inheritance rules
	AutoInheritance() []IAddOn

	// Returns is element an instance of type: its element-def, inherited add-ons or their ancestors.
	IsInstance(t IElementOrAddOn) bool

	// Returns synthetic type which unifies element-def and all inherited add-ons
	InstanceType() IElementDef

	// Returns attribute value by declared or effective attribute.
	//
	// Returns default value if attribute is not specified; nil if attribute has no value.
	Attribute(attr IAttributeDef) any

	// Returns attribute text and is text exists
	AttributeText(attr IAttributeDef) (string, bool)

	// Finds attribute by name by the known types rule and returns its value.
	AttributeByName(name string) (any, error)

	// Returns attributes specified in document or defaulted, declared forms, in resolution order
	Attributes() []IAttributeDef

	// Returns typed value or nil
	Value() any

	// Returns value text and is value exists
	ValueText() (string, bool)

	// Returns all children in document order
	Children() []IElement

	// Returns children fulfilling the role, in document order
	ChildrenFor(role IChildDef) []IElement

	// Finds role by name by the known types rule and returns its children
	ChildrenByRole(name string) ([]IElement, error)

	// Returns parent element or nil for root
	Parent() IElement

	// Returns declared roles the element fulfills in parent
	ParentRoles() []IChildDef

	Position() diag.Position

	// Returns promise placeholder the element was fulfilled from or nil
	Promise() IElement

	// Returns root of external content the element was fulfilled from or nil
	External() IElement

	// Returns is element built without validation
	IsPartial() bool
}

// Type-level metadata content.
type IMetadata interface {
	Owner() IElementOrAddOn

	Children() []IElement

	// Returns children fulfilling the metadata role
	ChildrenFor(role IChildDef) []IElement

	Position() diag.Position
}
