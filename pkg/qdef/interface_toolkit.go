/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import "github.com/voedger/qonfig/pkg/diag"

// Major and minor version of toolkit
type Version struct {
	Major uint
	Minor uint
}

// Reference to toolkit, rendered as "Name vMajor.Minor"
type ToolkitRef struct {
	Name    string
	Version Version
}

// Compiled toolkit. Immutable and safe for concurrent use.
//
// Name lookup methods work on the transitive closure of the toolkit:
// local declarations win, otherwise the name must match one type across dependencies.
// Qualified names "alias:name" look into the dependency with the alias.
type IToolkit interface {
	Ref() ToolkitRef

	Name() string

	Version() Version

	Description() string

	Position() diag.Position

	// Returns dependency aliases in declaration order
	DependencyAliases() []string

	// Returns dependency by alias or nil
	Dependency(alias string) IToolkit

	// Returns is this toolkit other or depends on it, directly or transitively.
	DependsOn(other IToolkit) bool

	// Finds value type by name, builtins included.
	ValueType(name string) (IValueType, error)

	// Returns value types declared by this toolkit
	DeclaredValueTypes() []IValueType

	// Finds element-def or add-on by name
	Type(name string) (IElementOrAddOn, error)

	// Finds element-def by name
	ElementDef(name string) (IElementDef, error)

	// Finds add-on by name
	AddOn(name string) (IAddOn, error)

	// Returns types declared by this toolkit, in declaration order
	DeclaredTypes() []IElementOrAddOn

	// Returns all types of transitive closure
	AllTypes() []IElementOrAddOn

	// Returns element-defs declared as document roots. Empty if toolkit declares no roots
	Roots() []IElementDef

	// Returns auto-inheritance rules declared by this toolkit
	DeclaredAutoInheritance() []IAutoInheritanceRule

	// Evaluates auto-inheritance rules of transitive closure.
	//
	// Returns add-ons which must be added to the element of type t,
	// explicitly inheriting the specified add-ons and fulfilling the specified roles.
	// Returned add-ons do not include already inherited ones.
	AutoInheritance(t IElementDef, inheritance []IAddOn, roles []IChildDef) []IAddOn

	// Returns synthetic view of element-def t extended with add-ons.
	//
	// Members of the view are unified over t and all add-ons.
	// Returns error if add-ons are not compatible with t or if members conflict.
	InstanceType(t IElementDef, addOns []IAddOn) (IElementDef, error)
}

// Builds toolkit in stages, driven by compiler.
type IToolkitBuilder interface {
	Ref() ToolkitRef

	SetDescription(d string)

	// Adds dependency with alias.
	AddDependency(alias string, tk IToolkit) error

	// Adds value type.
	AddValueType(vt IValueType) error

	// Finds value type, declared or from dependencies
	ValueType(name string) (IValueType, error)

	// Adds element-def stub.
	AddElementDef(name string, abstract, promise bool, descr string, pos diag.Position) (IElementBuilder, error)

	// Adds add-on stub.
	AddAddOn(name string, abstract bool, descr string, pos diag.Position) (IAddOnBuilder, error)

	// Finds type, declared or from dependencies
	Type(name string) (IElementOrAddOn, error)

	// Adds root element-def
	AddRoot(e IElementDef) error

	// Resolves members not resolved yet, validates types and computes closure.
	//
	// Types can not be changed after, but auto-inheritance rules can be added.
	Freeze(r diag.IReporter)

	// Adds auto-inheritance rule. Types must be frozen.
	AddAutoInheritance(addOns []IAddOn, targets []AutoInheritanceTarget, pos diag.Position) (IAutoInheritanceRule, error)

	// Freezes types if not frozen yet, indexes auto-inheritance rules and returns compiled toolkit.
	//
	// Problems are reported into r. Returns nil if any error was reported by Freeze or Build.
	Build(r diag.IReporter) IToolkit
}

// Finds compiled toolkits by reference.
type IToolkitProvider interface {
	// Returns toolkit with the same name and major version and minor version not less than requested.
	Toolkit(ref ToolkitRef) (IToolkit, error)
}

// Target of auto-inheritance rule. At least one of fields is not nil.
type AutoInheritanceTarget struct {
	Type IElementOrAddOn
	Role IChildDef
}

// Auto-inheritance rule adds add-ons to elements, which type is assignable to target type
// and/or which fulfill target role.
type IAutoInheritanceRule interface {
	Toolkit() IToolkit
	AddOns() []IAddOn
	Targets() []AutoInheritanceTarget
	Position() diag.Position
}
