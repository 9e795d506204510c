/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package diag

import (
	"fmt"
	"strings"
)

// Returns is position points to something.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0
}

// Renders position as "file:line:col".
func (p Position) String() string {
	s := strings.Builder{}
	s.WriteString(p.File)
	if p.Line > 0 {
		fmt.Fprintf(&s, ":%d", p.Line)
		if p.Column > 0 {
			fmt.Fprintf(&s, ":%d", p.Column)
		}
	}
	return s.String()
}

func (s Severity) String() string {
	if n, ok := severityNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Severity(%d)", s)
}
