/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import (
	"regexp"

	"github.com/voedger/qonfig/pkg/diag"
)

// Kind of value type
type ValueKind uint8

const (
	ValueKind_null ValueKind = iota
	ValueKind_String
	ValueKind_Boolean
	ValueKind_Int
	ValueKind_Pattern
	ValueKind_Literal
	ValueKind_OneOf
	ValueKind_Explicit
	ValueKind_External

	ValueKind_count
)

// Value type converts attribute or element text into typed value.
//
// Value types are immutable and safe for concurrent use.
type IValueType interface {
	// Returns value type name. Builtin names are "string", "boolean" and "int".
	Name() string

	Kind() ValueKind

	// Returns declaration position. Builtins have no position.
	Position() diag.Position

	// Parses text into typed value.
	//
	// Never fails: problem is reported into r and NoValue is returned.
	// Nil reporter discards problems.
	Parse(text string, r diag.IReporter) any

	// Returns is text structurally acceptable for the type. Used by one-of types.
	Matches(text string) bool

	// Returns is v a value which could be produced by Parse.
	IsInstance(v any) bool

	// Renders value produced by Parse back into text.
	Format(v any) string
}

// Value type matched by anchored regular expression
type IPatternType interface {
	IValueType
	Pattern() *regexp.Regexp
}

// Value type with single fixed text
type ILiteralType interface {
	IValueType
	Literal() string
}

// Value type with ordered alternatives, first match wins
type IOneOfType interface {
	IValueType
	Alternatives() []IValueType
}

// Value type wrapping another type with required prefix and suffix
type IExplicitType interface {
	IValueType
	Wrapped() IValueType
	Prefix() string
	Suffix() string
}

// Function which parses text of external value type.
type ExternalParser func(text string) (any, error)

// Value type with pluggable parser
type IExternalType interface {
	IValueType
	Parser() ExternalParser
}
