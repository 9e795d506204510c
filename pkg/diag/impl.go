/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package diag

import (
	"errors"
	"fmt"

	"github.com/untillpro/goutils/logger"
)

// Diagnostics session tree.
//
// Session mirrors the structure of compiled schema or parsed document:
// every node of it may open a child session. Session is not safe for concurrent use.
//
// # Implements:
//   - IReporter
type Session struct {
	name     string
	pos      Position
	parent   *Session
	children []*Session
	issues   []Issue
	errors   int
	warnings int
}

// Opens child session with specified name and default position.
//
// If position is not valid, then the position of session is used.
func (s *Session) For(name string, pos Position) *Session {
	if !pos.IsValid() {
		pos = s.pos
	}
	c := &Session{name: name, pos: pos, parent: s}
	s.children = append(s.children, c)
	return c
}

func (s *Session) Name() string { return s.name }

func (s *Session) Position() Position { return s.pos }

func (s *Session) Parent() *Session { return s.parent }

// Returns slash separated names from root to this session
func (s *Session) Path() string {
	if s.parent == nil {
		return s.name
	}
	p := s.parent.Path()
	if p == "" {
		return s.name
	}
	return p + pathSeparator + s.name
}

// Records issue. Empty issue position is replaced by session position.
func (s *Session) Report(i Issue) {
	if !i.Pos.IsValid() {
		i.Pos = s.pos
	}
	if i.Path == "" {
		i.Path = s.Path()
	}
	s.issues = append(s.issues, i)
	for p := s; p != nil; p = p.parent {
		switch i.Severity {
		case SeverityError:
			p.errors++
		case SeverityWarning:
			p.warnings++
		}
	}
	if logger.IsVerbose() {
		logger.Verbose(i.String())
	}
}

func (s *Session) Error(err error) {
	s.ErrorAt(s.pos, err)
}

func (s *Session) ErrorAt(pos Position, err error) {
	if i, ok := err.(Issue); ok {
		if !i.Pos.IsValid() {
			i.Pos = pos
		}
		s.Report(i)
		return
	}
	s.Report(Issue{Pos: pos, Severity: SeverityError, Message: err.Error(), Cause: err})
}

// Reports every issue of aggregate failure, other errors are reported as single error.
func (s *Session) Merge(err error) {
	var ee *Errors
	if errors.As(err, &ee) {
		for _, i := range ee.Issues {
			s.Report(i)
		}
		return
	}
	s.Error(err)
}

func (s *Session) Errorf(format string, args ...any) {
	s.Error(fmt.Errorf(format, args...))
}

func (s *Session) Warning(msg string) {
	s.WarningAt(s.pos, msg)
}

func (s *Session) WarningAt(pos Position, msg string) {
	s.Report(Issue{Pos: pos, Severity: SeverityWarning, Message: msg})
}

func (s *Session) Warningf(format string, args ...any) {
	s.Warning(fmt.Sprintf(format, args...))
}

func (s *Session) Info(msg string) {
	s.Report(Issue{Severity: SeverityInfo, Message: msg})
}

// Returns is any error reported into session or its descendants.
func (s *Session) HasErrors() bool { return s.errors > 0 }

// Returns count of errors reported into session and its descendants.
func (s *Session) ErrorCount() int { return s.errors }

// Returns count of warnings reported into session and its descendants.
func (s *Session) WarningCount() int { return s.warnings }

// Returns all issues of session and its descendants, depth first.
func (s *Session) Issues() []Issue {
	ii := make([]Issue, 0, len(s.issues))
	s.collect(func(i Issue) { ii = append(ii, i) })
	return ii
}

// Returns aggregate failure, which lists all errors reported into session tree.
//
// Returns nil if no errors reported. Warnings never produce failure.
func (s *Session) Err() error {
	if !s.HasErrors() {
		return nil
	}
	e := &Errors{}
	s.collect(func(i Issue) {
		if i.Severity == SeverityError {
			e.Issues = append(e.Issues, i)
		}
	})
	return e
}

// Writes warnings of session tree to log.
func (s *Session) LogWarnings() {
	s.collect(func(i Issue) {
		if i.Severity == SeverityWarning {
			logger.Warning(i.Error())
		}
	})
}

func (s *Session) collect(cb func(Issue)) {
	for _, i := range s.issues {
		cb(i)
	}
	for _, c := range s.children {
		c.collect(cb)
	}
}
