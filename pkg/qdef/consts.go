/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

// Reserved names of structural document attributes.
//
// Attributes and child roles can not be declared with these names.
const (
	ReservedAttribute_Role      = "role"
	ReservedAttribute_Extension = "with-extension"
)

// Names of builtin value types
const (
	ValueTypeName_String  = "string"
	ValueTypeName_Boolean = "boolean"
	ValueTypeName_Int     = "int"
)

const (
	Occurs_Unbounded    = Occurs(0xffff)
	Occurs_UnboundedStr = "inf"
)

const (
	// Separates toolkit alias from type or value type name, e.g. "core:named"
	AliasSeparator = ":"

	// Separates owner type name from member name, e.g. "named.name"
	MemberSeparator = "."
)

// Default sizes of per-toolkit caches
const (
	DefaultAutoInheritanceCacheSize = 1024
	DefaultInstanceTypeCacheSize    = 1024
)

const (
	booleanTrue  = "true"
	booleanFalse = "false"
)

const (
	intBase    = 10
	intBitSize = 64
)
