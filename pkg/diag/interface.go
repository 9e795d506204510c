/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package diag

// Source position of a diagnosed construct.
//
// Zero values of fields are omitted when printed.
type Position struct {
	File   string
	Line   int
	Column int
	Offset int
}

// Severity of issue
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Narrow sink to report problems into.
//
// Implemented by *Session.
type IReporter interface {
	// Reports error at reporter position.
	Error(err error)

	// Reports warning at reporter position.
	Warning(msg string)
}

// Single positioned diagnostic.
//
// # Implements:
//   - error
type Issue struct {
	Pos      Position
	Severity Severity
	Message  string

	// Slash separated session path, e.g. "Base v1.0/widget/name"
	Path string

	// Optional underlying error
	Cause error
}
