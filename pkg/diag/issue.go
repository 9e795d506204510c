/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package diag

import "fmt"

// Returns "file:line:col: message". Position is omitted if not valid.
func (i Issue) Error() string {
	if i.Pos.IsValid() {
		return fmt.Sprintf("%v: %s", i.Pos, i.Message)
	}
	return i.Message
}

func (i Issue) Unwrap() error { return i.Cause }

// Returns issue text prefixed with severity, used for printing warnings.
func (i Issue) String() string {
	return fmt.Sprintf("%v: %v", i.Severity, i.Error())
}
