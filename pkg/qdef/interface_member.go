/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import "github.com/voedger/qonfig/pkg/diag"

// Common part of attributes and element value specs
type IValueDef interface {
	// Returns type which declares or modifies definition
	Owner() IElementOrAddOn

	Type() IValueType

	Specify() SpecificationType

	// Returns parsed default value or nil if there is no default
	Default() any

	// Returns default text and is default exists
	DefaultText() (string, bool)

	Description() string

	Position() diag.Position

	// Returns is definition is the first introduction, not a modification.
	IsDeclared() bool
}

// Attribute definition.
//
// Declared attributes are identified by (owner, name).
type IAttributeDef interface {
	IValueDef

	Name() string

	// Returns the declared origin. Declared form returns itself.
	Declared() IAttributeDef
}

// Element value spec
type IValueSpec interface {
	IValueDef

	// Returns the declared origin. Declared form returns itself.
	Declared() IValueSpec
}

// Child role definition.
//
// Declared roles are identified by (owner, name).
type IChildDef interface {
	Owner() IElementOrAddOn

	Name() string

	// Returns required type of role fillers
	Type() IElementOrAddOn

	Min() Occurs

	// Returns maximum number of fillers, Occurs_Unbounded if infinite.
	Max() Occurs

	// Returns specification derived from multiplicity:
	//   - min > 0 is required,
	//   - max = 0 is forbidden,
	//   - optional otherwise.
	Specify() SpecificationType

	// Returns add-ons applied to every role filler
	Inherits() []IAddOn

	// Returns add-ons every role filler must inherit
	Requires() []IAddOn

	// Returns is role belongs to type metadata spec
	IsMetadata() bool

	Description() string

	Position() diag.Position

	IsDeclared() bool

	// Returns the declared origin. Declared form returns itself.
	Declared() IChildDef
}
