/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import "github.com/voedger/qonfig/pkg/diag"

// Kind of declared type
type TypeKind uint8

const (
	TypeKind_null TypeKind = iota
	TypeKind_ElementDef
	TypeKind_AddOn

	TypeKind_count
)

// Common part of element-defs and add-ons.
//
// Ref. to impl_type.go for implementation
type IElementOrAddOn interface {
	Toolkit() IToolkit

	Kind() TypeKind

	// Returns type name, unique within declaring toolkit
	Name() string

	// Returns "Toolkit vM.m:name"
	QualifiedName() string

	Abstract() bool

	Description() string

	Position() diag.Position

	// Returns is every instance of other type an instance of this type.
	//
	// Element-def is assignable from its descendants and from add-ons which require it or its descendants.
	// Add-on is assignable from add-ons and element-defs which inherit it.
	IsAssignableFrom(other IElementOrAddOn) bool

	// Returns all types this type is an instance of, including itself.
	// Ordered by toolkit and declaration
	Ancestors() []IElementOrAddOn

	// Returns all add-ons this type inherits, directly or transitively.
	FullInheritance() []IAddOn

	// Returns directly inherited add-ons
	Inherits() []IAddOn

	// Finds known type (this type or one of its ancestors) by name.
	//
	// Returns error if not found or if several unrelated known types have the name.
	KnownType(name string) (IElementOrAddOn, error)

	// Returns attributes declared by this type, in declaration order.
	DeclaredAttributes() []IAttributeDef

	// Returns effective attributes of this type, declared and inherited.
	Attributes() []IAttributeDef

	// Returns effective definition of the declared attribute at this type or nil if attribute is unknown.
	Attribute(declared IAttributeDef) IAttributeDef

	// Finds effective attribute by name.
	//
	// If owner is not nil, then only attributes declared by owner are considered.
	// Otherwise name is qualified by the known types rule: one match or one match shadowing
	// others along the same inheritance line resolves, several unrelated matches are ambiguous.
	FindAttribute(owner IElementOrAddOn, name string) (IAttributeDef, error)

	// Returns value spec declared by this type or nil.
	DeclaredValue() IValueSpec

	// Returns effective value spec or nil if type has no value.
	Value() IValueSpec

	// Returns child roles declared by this type, in declaration order.
	DeclaredChildren() []IChildDef

	// Returns effective child roles of this type.
	Children() []IChildDef

	// Returns effective definition of the declared role at this type or nil if role is unknown.
	Child(declared IChildDef) IChildDef

	// Finds effective child role by name. Qualification rules are the same as for FindAttribute.
	FindChild(owner IElementOrAddOn, name string) (IChildDef, error)

	// Returns metadata roles declared by this type.
	DeclaredMetaChildren() []IChildDef

	// Returns effective metadata roles of this type.
	MetaChildren() []IChildDef

	// Returns effective definition of the declared metadata role at this type.
	MetaChild(declared IChildDef) IChildDef

	// Finds effective metadata role by name.
	FindMetaChild(owner IElementOrAddOn, name string) (IChildDef, error)

	// Returns type-level metadata content or nil if type has no metadata content
	Metadata() IMetadata
}

// Element-def is concrete or abstract node type with single parent.
type IElementDef interface {
	IElementOrAddOn

	// Returns super element-def or nil
	Super() IElementDef

	// Returns is element-def is promise placeholder, which content is supplied by registered fulfiller.
	Promise() bool
}

// Add-on is mix-in type with multiple inheritance.
type IAddOn interface {
	IElementOrAddOn

	// Returns element-def which every instance of add-on must be assignable to.
	Requires() IElementDef
}

// Builds type members. Members are added by compile stages, ancestors first.
//
// All methods panic after toolkit is built.
type ITypeBuilder interface {
	IElementOrAddOn

	// Adds inherited add-on.
	AddInherits(addOn IAddOn)

	// Adds new attribute.
	//
	// Returns error if name is invalid, reserved or already declared by type,
	// or if default is not valid for value type.
	// Warnings are reported into r.
	AddAttribute(name string, decl ValueDecl, r diag.IReporter) (IAttributeDef, error)

	// Registers modification of the declared attribute, inherited from ancestors.
	//
	// Modification is applied by ResolveAttributes.
	ModifyAttribute(declared IAttributeDef, mod ValueDecl) error

	// Declares element value.
	SetValue(decl ValueDecl, r diag.IReporter) (IValueSpec, error)

	// Registers modification of inherited value spec.
	ModifyValue(mod ValueDecl) error

	// Unifies attributes and value inherited from parents and applies modifications.
	//
	// Parents must be resolved before. Problems are reported into r.
	ResolveAttributes(r diag.IReporter)

	// Adds new child role.
	AddChild(name string, decl ChildDecl) (IChildDef, error)

	// Registers modification of inherited child role.
	ModifyChild(declared IChildDef, mod ChildDecl) error

	// Unifies child roles inherited from parents and applies modifications.
	ResolveChildren(r diag.IReporter)

	// Adds new metadata role.
	AddMetaChild(name string, decl ChildDecl) (IChildDef, error)

	// Registers modification of inherited metadata role.
	ModifyMetaChild(declared IChildDef, mod ChildDecl) error

	// Unifies metadata roles inherited from parents and applies modifications.
	ResolveMetaChildren(r diag.IReporter)

	// Sets type-level metadata content.
	SetMetadata(md IMetadata)
}

type IElementBuilder interface {
	ITypeBuilder
	IElementDef

	// Sets super element-def
	SetSuper(super IElementDef)
}

type IAddOnBuilder interface {
	ITypeBuilder
	IAddOn

	// Sets required element-def
	SetRequires(e IElementDef)
}

// Declaration or modification of attribute or element value.
type ValueDecl struct {
	// Value type. Nil for modification means the overridden type is kept.
	Type IValueType

	// Specification. Null means derived
	Specify SpecificationType

	// Default text
	Default    string
	HasDefault bool

	Description string
	Pos         diag.Position
}

// Declaration or modification of child role.
type ChildDecl struct {
	// Required type of role fillers. Nil for modification means the overridden type is kept.
	Type IElementOrAddOn

	Min    Occurs
	HasMin bool
	Max    Occurs
	HasMax bool

	// Add-ons applied to role fillers
	Inherits []IAddOn

	// Add-ons role fillers must inherit
	Requires []IAddOn

	Description string
	Pos         diag.Position
}
