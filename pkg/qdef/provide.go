/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import (
	"fmt"

	"github.com/voedger/qonfig/pkg/diag"
)

var (
	StringType  IValueType = stringType{valueType{ValueTypeName_String, ValueKind_String, diag.Position{}}}
	BooleanType IValueType = booleanType{valueType{ValueTypeName_Boolean, ValueKind_Boolean, diag.Position{}}}
	IntType     IValueType = intType{valueType{ValueTypeName_Int, ValueKind_Int, diag.Position{}}}
)

var builtinValueTypes = map[string]IValueType{
	ValueTypeName_String:  StringType,
	ValueTypeName_Boolean: BooleanType,
	ValueTypeName_Int:     IntType,
}

// Returns builtin value types: string, boolean and int
func BuiltinValueTypes() []IValueType {
	return []IValueType{StringType, BooleanType, IntType}
}

// Returns new toolkit builder.
func NewToolkitBuilder(ref ToolkitRef, pos diag.Position) IToolkitBuilder {
	return NewToolkitBuilderWithCaches(ref, pos, DefaultAutoInheritanceCacheSize, DefaultInstanceTypeCacheSize)
}

// Returns new toolkit builder with specified sizes of auto-inheritance and instance type caches.
//
// # Panics:
//   - if any size is not positive
func NewToolkitBuilderWithCaches(ref ToolkitRef, pos diag.Position, autoCacheSize, instanceCacheSize int) IToolkitBuilder {
	if autoCacheSize <= 0 || instanceCacheSize <= 0 {
		panic(fmt.Errorf("cache sizes must be positive, got %d and %d", autoCacheSize, instanceCacheSize))
	}
	return &toolkitBuilder{
		tk:            newToolkit(ref, pos),
		autoCacheSize: autoCacheSize,
		instCacheSize: instanceCacheSize,
	}
}

// Returns new pattern value type. Pattern must match the whole text.
func NewPatternType(name, pattern string, pos diag.Position) (IPatternType, error) {
	return newPatternType(name, pattern, pos)
}

// Returns new literal value type.
func NewLiteralType(name, literal string, pos diag.Position) ILiteralType {
	return &literalType{valueType{name, ValueKind_Literal, pos}, literal}
}

// Returns new one-of value type with ordered alternatives.
func NewOneOfType(name string, alternatives []IValueType, pos diag.Position) (IOneOfType, error) {
	if len(alternatives) == 0 {
		return nil, ErrInvalid("one-of value type «%s» has no alternatives", name)
	}
	return &oneOfType{valueType{name, ValueKind_OneOf, pos}, alternatives}, nil
}

// Returns new explicit value type, which wraps another type with prefix and suffix.
func NewExplicitType(name string, wrapped IValueType, prefix, suffix string, pos diag.Position) (IExplicitType, error) {
	if wrapped == nil {
		return nil, ErrInvalid("explicit value type «%s» wraps nothing", name)
	}
	if prefix == "" && suffix == "" {
		return nil, ErrInvalid("explicit value type «%s» has neither prefix nor suffix", name)
	}
	return &explicitType{valueType{name, ValueKind_Explicit, pos}, wrapped, prefix, suffix}, nil
}

// Returns new external value type with pluggable parser.
func NewExternalType(name string, parser ExternalParser, pos diag.Position) (IExternalType, error) {
	if parser == nil {
		return nil, ErrInvalid("external value type «%s» has no parser", name)
	}
	return &externalType{valueType{name, ValueKind_External, pos}, parser}, nil
}
