/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/exp/slices"
)

var validNameRegexp = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_\-]*$`)

// Returns is name valid for toolkit, type, value type and member names.
//
// Valid names start with letter or underscore, continued by letters, digits, underscores and dashes.
func ValidName(name string) (bool, error) {
	if name == "" {
		return false, ErrInvalidName("empty name")
	}
	if !validNameRegexp.MatchString(name) {
		return false, ErrInvalidName("«%s»", name)
	}
	return true, nil
}

func validateMemberName(name string) error {
	if ok, err := ValidName(name); !ok {
		return err
	}
	if IsReservedName(name) {
		return ErrReservedName(name)
	}
	return nil
}

// Returns is name reserved for structural document attributes.
func IsReservedName(name string) bool {
	return name == ReservedAttribute_Role || name == ReservedAttribute_Extension
}

// Splits "alias:name" into alias and name. Alias is empty for simple names.
func SplitQualified(name string) (alias, simple string) {
	if a, n, ok := strings.Cut(name, AliasSeparator); ok {
		return a, n
	}
	return "", name
}

// Splits "owner.name" into owner and member name. Owner is empty for simple names.
func SplitMember(name string) (owner, member string) {
	if i := strings.LastIndex(name, MemberSeparator); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func addOns(tt []*elementOrAddOn) []IAddOn {
	aa := make([]IAddOn, 0, len(tt))
	for _, t := range tt {
		aa = append(aa, t)
	}
	return aa
}

func childDefs(cc []*childDef) []IChildDef {
	l := make([]IChildDef, 0, len(cc))
	for _, c := range cc {
		l = append(l, c)
	}
	return l
}

func typeRecords[T IElementOrAddOn](tt []T) []*elementOrAddOn {
	res := make([]*elementOrAddOn, 0, len(tt))
	for _, t := range tt {
		r := any(t).(*elementOrAddOn)
		if !slices.Contains(res, r) {
			res = append(res, r)
		}
	}
	return res
}

func unionTypes(a, b []*elementOrAddOn) []*elementOrAddOn {
	res := slices.Clone(a)
	for _, t := range b {
		if !slices.Contains(res, t) {
			res = append(res, t)
		}
	}
	return res
}

func sameTypeSets(a, b []*elementOrAddOn) bool {
	if len(a) != len(b) {
		return false
	}
	for _, t := range a {
		if !slices.Contains(b, t) {
			return false
		}
	}
	return true
}

// Returns type, which is descendant of all others, or conflicting types.
func mostSpecificType(tt []*elementOrAddOn) (*elementOrAddOn, []*elementOrAddOn) {
	if len(tt) == 0 {
		return nil, nil
	}
	for _, t := range tt {
		all := true
		for _, o := range tt {
			if !t.extends(o) {
				all = false
				break
			}
		}
		if all {
			return t, nil
		}
	}
	return nil, tt
}

// Orders types by toolkit and declaration order
func sortTypes(tt []*elementOrAddOn) {
	slices.SortFunc(tt, func(a, b *elementOrAddOn) bool {
		if a.tk != b.tk {
			return a.tk.ref.String() < b.tk.ref.String()
		}
		return a.handle < b.handle
	})
}

// Collects errors reported into it.
//
// # Implements:
//   - diag.IReporter
type errCollector struct {
	errs []error
}

func (c *errCollector) Error(err error) { c.errs = append(c.errs, err) }

func (c *errCollector) Warning(string) {}

func (c *errCollector) err() error { return errors.Join(c.errs...) }

// Counts errors passed to underlying reporter
//
// # Implements:
//   - diag.IReporter
type countingReporter struct {
	r      errorWarningReporter
	errors int
}

type errorWarningReporter interface {
	Error(err error)
	Warning(msg string)
}

func (c *countingReporter) Error(err error) {
	c.errors++
	c.r.Error(err)
}

func (c *countingReporter) Warning(msg string) { c.r.Warning(msg) }
