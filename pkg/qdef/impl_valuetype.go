/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/voedger/qonfig/pkg/diag"
)

type noValue struct{}

func (noValue) String() string { return "<no value>" }

// Substituted for the value which failed to parse.
var NoValue any = noValue{}

var valueKindNames = [ValueKind_count]string{
	ValueKind_null:     "null",
	ValueKind_String:   "string",
	ValueKind_Boolean:  "boolean",
	ValueKind_Int:      "int",
	ValueKind_Pattern:  "pattern",
	ValueKind_Literal:  "literal",
	ValueKind_OneOf:    "one-of",
	ValueKind_Explicit: "explicit",
	ValueKind_External: "external",
}

func (k ValueKind) String() string {
	if k < ValueKind_count {
		return valueKindNames[k]
	}
	return fmt.Sprintf("ValueKind(%d)", k)
}

func report(r diag.IReporter, err error) {
	if r != nil {
		r.Error(err)
	}
}

type valueType struct {
	name string
	kind ValueKind
	pos  diag.Position
}

func (t valueType) Name() string { return t.name }

func (t valueType) Kind() ValueKind { return t.kind }

func (t valueType) Position() diag.Position { return t.pos }

func (t valueType) String() string { return fmt.Sprintf("%v «%s»", t.kind, t.name) }

// # Implements:
//   - IValueType
type stringType struct{ valueType }

func (stringType) Parse(text string, _ diag.IReporter) any { return text }

func (stringType) Matches(string) bool { return true }

func (stringType) IsInstance(v any) bool {
	_, ok := v.(string)
	return ok
}

func (stringType) Format(v any) string { return fmt.Sprint(v) }

// # Implements:
//   - IValueType
type booleanType struct{ valueType }

func (t booleanType) Parse(text string, r diag.IReporter) any {
	switch text {
	case booleanTrue:
		return true
	case booleanFalse:
		return false
	}
	report(r, ErrInvalid("value «%s» is not %s, expected «%s» or «%s»", text, t.name, booleanTrue, booleanFalse))
	return NoValue
}

func (booleanType) Matches(text string) bool { return text == booleanTrue || text == booleanFalse }

func (booleanType) IsInstance(v any) bool {
	_, ok := v.(bool)
	return ok
}

func (booleanType) Format(v any) string { return fmt.Sprint(v) }

// # Implements:
//   - IValueType
type intType struct{ valueType }

func (t intType) Parse(text string, r diag.IReporter) any {
	i, err := strconv.ParseInt(text, intBase, intBitSize)
	if err != nil {
		report(r, ErrInvalid("value «%s» is not %s", text, t.name))
		return NoValue
	}
	return i
}

func (intType) Matches(text string) bool {
	_, err := strconv.ParseInt(text, intBase, intBitSize)
	return err == nil
}

func (intType) IsInstance(v any) bool {
	_, ok := v.(int64)
	return ok
}

func (intType) Format(v any) string { return fmt.Sprint(v) }

// # Implements:
//   - IPatternType
type patternType struct {
	valueType
	source string
	re     *regexp.Regexp
}

func newPatternType(name, pattern string, pos diag.Position) (*patternType, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, ErrInvalid("pattern «%s» of value type «%s»: %v", pattern, name, err)
	}
	return &patternType{valueType{name, ValueKind_Pattern, pos}, pattern, re}, nil
}

func (t patternType) Pattern() *regexp.Regexp { return t.re }

func (t patternType) Parse(text string, r diag.IReporter) any {
	if !t.re.MatchString(text) {
		report(r, ErrInvalid("value «%s» does not match pattern «%s» of «%s»", text, t.source, t.name))
		return NoValue
	}
	return text
}

func (t patternType) Matches(text string) bool { return t.re.MatchString(text) }

func (t patternType) IsInstance(v any) bool {
	s, ok := v.(string)
	return ok && t.re.MatchString(s)
}

func (patternType) Format(v any) string { return fmt.Sprint(v) }

// # Implements:
//   - ILiteralType
type literalType struct {
	valueType
	literal string
}

func (t literalType) Literal() string { return t.literal }

func (t literalType) Parse(text string, r diag.IReporter) any {
	if text != t.literal {
		report(r, ErrInvalid("value «%s» is not literal «%s» of «%s»", text, t.literal, t.name))
		return NoValue
	}
	return text
}

func (t literalType) Matches(text string) bool { return text == t.literal }

func (t literalType) IsInstance(v any) bool {
	s, ok := v.(string)
	return ok && s == t.literal
}

func (t literalType) Format(any) string { return t.literal }

// # Implements:
//   - IOneOfType
type oneOfType struct {
	valueType
	alts []IValueType
}

func (t oneOfType) Alternatives() []IValueType { return t.alts }

func (t oneOfType) Parse(text string, r diag.IReporter) any {
	for _, a := range t.alts {
		if a.Matches(text) {
			return a.Parse(text, r)
		}
	}
	report(r, ErrInvalid("value «%s» does not match any of %s alternatives", text, t.alternativeNames()))
	return NoValue
}

func (t oneOfType) Matches(text string) bool {
	for _, a := range t.alts {
		if a.Matches(text) {
			return true
		}
	}
	return false
}

func (t oneOfType) IsInstance(v any) bool {
	for _, a := range t.alts {
		if a.IsInstance(v) {
			return true
		}
	}
	return false
}

func (t oneOfType) Format(v any) string {
	for _, a := range t.alts {
		if a.IsInstance(v) {
			return a.Format(v)
		}
	}
	return fmt.Sprint(v)
}

func (t oneOfType) alternativeNames() string {
	nn := make([]string, 0, len(t.alts))
	for _, a := range t.alts {
		nn = append(nn, a.Name())
	}
	return fmt.Sprintf("«%s» (%s)", t.name, strings.Join(nn, ", "))
}

// # Implements:
//   - IExplicitType
type explicitType struct {
	valueType
	wrapped        IValueType
	prefix, suffix string
}

func (t explicitType) Wrapped() IValueType { return t.wrapped }

func (t explicitType) Prefix() string { return t.prefix }

func (t explicitType) Suffix() string { return t.suffix }

func (t explicitType) strip(text string) (string, bool) {
	if len(text) < len(t.prefix)+len(t.suffix) {
		return text, false
	}
	if !strings.HasPrefix(text, t.prefix) || !strings.HasSuffix(text, t.suffix) {
		return text, false
	}
	return text[len(t.prefix) : len(text)-len(t.suffix)], true
}

func (t explicitType) Parse(text string, r diag.IReporter) any {
	inner, ok := t.strip(text)
	if !ok {
		report(r, ErrInvalid("value «%s» of «%s» must start with «%s» and end with «%s»", text, t.name, t.prefix, t.suffix))
		return NoValue
	}
	return t.wrapped.Parse(inner, r)
}

func (t explicitType) Matches(text string) bool {
	inner, ok := t.strip(text)
	return ok && t.wrapped.Matches(inner)
}

func (t explicitType) IsInstance(v any) bool { return t.wrapped.IsInstance(v) }

func (t explicitType) Format(v any) string { return t.prefix + t.wrapped.Format(v) + t.suffix }

// # Implements:
//   - IExternalType
type externalType struct {
	valueType
	parser ExternalParser
}

func (t externalType) Parser() ExternalParser { return t.parser }

func (t externalType) Parse(text string, r diag.IReporter) any {
	v, err := t.parser(text)
	if err != nil {
		report(r, ErrInvalid("value «%s» of «%s»: %v", text, t.name, err))
		return NoValue
	}
	return v
}

func (t externalType) Matches(text string) bool {
	_, err := t.parser(text)
	return err == nil
}

func (externalType) IsInstance(v any) bool { return v != nil && v != NoValue }

func (externalType) Format(v any) string { return fmt.Sprint(v) }
