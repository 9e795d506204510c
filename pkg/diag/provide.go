/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package diag

// Creates new root session.
//
// Name and position are used as defaults for issues reported directly into session.
func NewSession(name string, pos Position) *Session {
	return &Session{name: name, pos: pos}
}
