/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package diag

import "strings"

// Aggregate failure raised at the boundary of compile or parse call.
//
// # Implements:
//   - error
type Errors struct {
	Issues []Issue
}

// Lists error issues, one per line
func (e *Errors) Error() string {
	s := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		s = append(s, i.Error())
	}
	return strings.Join(s, "\n")
}

// Makes errors.Is and errors.As look into every issue.
func (e *Errors) Unwrap() []error {
	errs := make([]error, 0, len(e.Issues))
	for _, i := range e.Issues {
		errs = append(errs, i)
	}
	return errs
}
