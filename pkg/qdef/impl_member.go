/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/voedger/qonfig/pkg/diag"
)

// Member of type: attribute, value spec or child role
type member interface {
	comparable
	ownerType() *elementOrAddOn
	memberName() string
}

// Effective members of type, keyed by declared form.
type memberSet[M member] struct {
	effective map[M]M
	ordered   []M
}

func newMemberSet[M member]() *memberSet[M] {
	return &memberSet[M]{effective: make(map[M]M)}
}

func (s *memberSet[M]) add(declared, effective M) {
	if _, ok := s.effective[declared]; !ok {
		s.ordered = append(s.ordered, declared)
	}
	s.effective[declared] = effective
}

func (s *memberSet[M]) get(declared M) (M, bool) {
	if s == nil {
		var zero M
		return zero, false
	}
	m, ok := s.effective[declared]
	return m, ok
}

func (s *memberSet[M]) list() []M {
	if s == nil {
		return nil
	}
	l := make([]M, 0, len(s.ordered))
	for _, d := range s.ordered {
		l = append(l, s.effective[d])
	}
	return l
}

// Member inherited from parents of type
type inherited[M member] struct {
	declared  M
	effective M
	conflicts []M
}

// Unifies members of parents.
//
// For every declared member the most specific candidates are selected:
// candidate is dropped if other candidate owner descends from its owner.
// Several different candidates left are conflict.
func inheritMembers[M member](parents []*elementOrAddOn, set func(*elementOrAddOn) *memberSet[M], equal func(a, b M) bool) []inherited[M] {
	order := make([]M, 0)
	cands := make(map[M][]M)
	for _, p := range parents {
		ps := set(p)
		if ps == nil {
			continue
		}
		for _, d := range ps.ordered {
			e := ps.effective[d]
			if _, ok := cands[d]; !ok {
				order = append(order, d)
			}
			if !slices.Contains(cands[d], e) {
				cands[d] = append(cands[d], e)
			}
		}
	}

	res := make([]inherited[M], 0, len(order))
	for _, d := range order {
		cc := mostSpecific(cands[d])
		inh := inherited[M]{declared: d, effective: cc[0]}
		for _, c := range cc[1:] {
			if !equal(cc[0], c) {
				inh.conflicts = cc
				break
			}
		}
		res = append(res, inh)
	}
	return res
}

// Drops candidates shadowed by candidates declared by descendants of their owners.
func mostSpecific[M member](cands []M) []M {
	if len(cands) < 2 {
		return cands
	}
	res := make([]M, 0, len(cands))
	for i, c := range cands {
		shadowed := false
		for j, c2 := range cands {
			if i == j {
				continue
			}
			o, o2 := c.ownerType(), c2.ownerType()
			if o != o2 && o2.hasAncestor(o) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			res = append(res, c)
		}
	}
	return res
}

// Selects single member by the known types rule.
func pickMember[M member](cands []M, what func() string) (M, error) {
	var zero M
	cc := mostSpecific(cands)
	switch len(cc) {
	case 0:
		return zero, ErrNotFound("%s", what())
	case 1:
		return cc[0], nil
	}
	owners := make([]string, 0, len(cc))
	for _, c := range cc {
		owners = append(owners, c.ownerType().QualifiedName())
	}
	slices.Sort(owners)
	return zero, ErrAmbiguous("%s is declared by unrelated types %v", what(), owners)
}

func conflictOwners[M member](cc []M) string {
	s := make([]string, 0, len(cc))
	for _, c := range cc {
		s = append(s, fmt.Sprintf("«%v»", c.ownerType()))
	}
	slices.Sort(s)
	return fmt.Sprint(s)
}

// Common part of attributes and value specs.
//
// # Implements:
//   - IValueDef
type valueDef struct {
	owner   *elementOrAddOn
	typ     IValueType
	specify SpecificationType
	def     any
	defText string
	hasDef  bool
	pos     diag.Position
	descr   string
}

func (v *valueDef) Owner() IElementOrAddOn { return v.owner }

func (v *valueDef) Type() IValueType { return v.typ }

func (v *valueDef) Specify() SpecificationType { return v.specify }

func (v *valueDef) Default() any {
	if !v.hasDef {
		return nil
	}
	return v.def
}

func (v *valueDef) DefaultText() (string, bool) { return v.defText, v.hasDef }

func (v *valueDef) Description() string { return v.descr }

func (v *valueDef) Position() diag.Position { return v.pos }

func (v *valueDef) ownerType() *elementOrAddOn { return v.owner }

func (v *valueDef) declare(decl ValueDecl, what string, r diag.IReporter) error {
	spec, err := deriveDeclaredSpecification(decl.Specify, decl.HasDefault)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	v.specify = spec
	if decl.HasDefault {
		if spec == SpecificationType_Required {
			r.Warning(fmt.Sprintf("default «%s» of required %s is ignored", decl.Default, what))
			return nil
		}
		v.hasDef, v.defText = true, decl.Default
		v.def = v.typ.Parse(decl.Default, r)
	}
	return nil
}

func (v *valueDef) modify(base *valueDef, mod ValueDecl, what string, r diag.IReporter) {
	if base.specify == SpecificationType_Forbidden && mod.Specify == SpecificationType_null && mod.Type != nil && mod.Type != base.typ {
		r.Error(ErrForbidden("type of forbidden %s can not be changed without specification", what))
		return
	}
	if mod.Type != nil && mod.Type != base.typ {
		v.typ = mod.Type
		if base.hasDef && !mod.HasDefault {
			v.def = v.typ.Parse(base.defText, r)
		}
	}
	if mod.HasDefault {
		v.hasDef, v.defText = true, mod.Default
		v.def = v.typ.Parse(mod.Default, r)
	}
	spec, err := deriveModifiedSpecification(base.specify, mod.Specify, mod.HasDefault, v.hasDef)
	if err != nil {
		r.Error(fmt.Errorf("%s: %w", what, err))
		v.typ, v.specify = base.typ, base.specify
		v.def, v.defText, v.hasDef = base.def, base.defText, base.hasDef
		return
	}
	v.specify = spec
	if spec == SpecificationType_Required && mod.HasDefault {
		r.Warning(fmt.Sprintf("default «%s» of required %s is ignored", mod.Default, what))
		v.hasDef, v.defText, v.def = false, "", nil
	}
}

func equalValueDefs(a, b *valueDef) bool {
	return a.typ == b.typ && a.specify == b.specify && a.hasDef == b.hasDef && a.defText == b.defText
}

// # Implements:
//   - IAttributeDef
type attributeDef struct {
	valueDef
	name     string
	declared *attributeDef
}

func (a *attributeDef) Name() string { return a.name }

func (a *attributeDef) Declared() IAttributeDef { return a.declared }

func (a *attributeDef) IsDeclared() bool { return a.declared == a }

func (a *attributeDef) memberName() string { return a.name }

func (a *attributeDef) String() string {
	return fmt.Sprintf("%s%s%s", a.owner.Name(), MemberSeparator, a.name)
}

func equalAttributes(a, b *attributeDef) bool { return equalValueDefs(&a.valueDef, &b.valueDef) }

// # Implements:
//   - IValueSpec
type valueSpec struct {
	valueDef
	declared *valueSpec
}

func (v *valueSpec) Declared() IValueSpec { return v.declared }

func (v *valueSpec) IsDeclared() bool { return v.declared == v }

func (v *valueSpec) memberName() string { return "" }

func (v *valueSpec) String() string { return fmt.Sprintf("value of %s", v.owner.Name()) }

func equalValueSpecs(a, b *valueSpec) bool { return equalValueDefs(&a.valueDef, &b.valueDef) }

// # Implements:
//   - IChildDef
type childDef struct {
	owner    *elementOrAddOn
	declared *childDef
	name     string
	typ      *elementOrAddOn
	min      Occurs
	max      Occurs
	inherits []*elementOrAddOn
	requires []*elementOrAddOn
	meta     bool
	pos      diag.Position
	descr    string
}

func (c *childDef) Owner() IElementOrAddOn { return c.owner }

func (c *childDef) Name() string { return c.name }

func (c *childDef) Type() IElementOrAddOn { return c.typ }

func (c *childDef) Min() Occurs { return c.min }

func (c *childDef) Max() Occurs { return c.max }

func (c *childDef) Specify() SpecificationType {
	switch {
	case c.min > 0:
		return SpecificationType_Required
	case c.max == 0:
		return SpecificationType_Forbidden
	default:
		return SpecificationType_Optional
	}
}

func (c *childDef) Inherits() []IAddOn { return addOns(c.inherits) }

func (c *childDef) Requires() []IAddOn { return addOns(c.requires) }

func (c *childDef) IsMetadata() bool { return c.meta }

func (c *childDef) Description() string { return c.descr }

func (c *childDef) Position() diag.Position { return c.pos }

func (c *childDef) IsDeclared() bool { return c.declared == c }

func (c *childDef) Declared() IChildDef { return c.declared }

func (c *childDef) ownerType() *elementOrAddOn { return c.owner }

func (c *childDef) memberName() string { return c.name }

func (c *childDef) String() string {
	return fmt.Sprintf("%s%s%s", c.owner.Name(), MemberSeparator, c.name)
}

func (c *childDef) what() string {
	if c.meta {
		return fmt.Sprintf("metadata role «%v»", c)
	}
	return fmt.Sprintf("role «%v»", c)
}

func equalChildren(a, b *childDef) bool {
	return a.typ == b.typ && a.min == b.min && a.max == b.max &&
		sameTypeSets(a.inherits, b.inherits) && sameTypeSets(a.requires, b.requires)
}

// Checks that role fillers can inherit the add-ons.
func checkRoleInherits(typ *elementOrAddOn, inherits []*elementOrAddOn, what string) error {
	for _, a := range inherits {
		if req := a.requiredElement(); req != nil && !typ.extends(req) {
			return ErrIncompatible("%s inherits «%v», which requires «%v», but role type is «%v»", what, a, req, typ)
		}
	}
	return nil
}
