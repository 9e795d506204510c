/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/voedger/qonfig/pkg/diag"
)

// # Implements:
//   - IAutoInheritanceRule
type autoInheritanceRule struct {
	tk      *toolkit
	addOns  []*elementOrAddOn
	targets []AutoInheritanceTarget
	pos     diag.Position
}

func (r *autoInheritanceRule) Toolkit() IToolkit { return r.tk }

func (r *autoInheritanceRule) AddOns() []IAddOn { return addOns(r.addOns) }

func (r *autoInheritanceRule) Targets() []AutoInheritanceTarget { return slices.Clone(r.targets) }

func (r *autoInheritanceRule) Position() diag.Position { return r.pos }

type typeRole struct {
	t    *elementOrAddOn
	role *childDef
}

// Auto-inheritance rules of toolkit closure, indexed by targets
type autoInheritanceIndex struct {
	byType map[*elementOrAddOn][]*autoInheritanceRule
	byRole map[*childDef][]*autoInheritanceRule
	byPair map[typeRole][]*autoInheritanceRule
}

func newAutoInheritanceIndex(rules []*autoInheritanceRule) *autoInheritanceIndex {
	idx := &autoInheritanceIndex{
		byType: make(map[*elementOrAddOn][]*autoInheritanceRule),
		byRole: make(map[*childDef][]*autoInheritanceRule),
		byPair: make(map[typeRole][]*autoInheritanceRule),
	}
	for _, r := range rules {
		for _, trg := range r.targets {
			var (
				t    *elementOrAddOn
				role *childDef
			)
			if trg.Type != nil {
				t = trg.Type.(*elementOrAddOn)
			}
			if trg.Role != nil {
				role = trg.Role.(*childDef).declared
			}
			switch {
			case t != nil && role != nil:
				k := typeRole{t, role}
				idx.byPair[k] = append(idx.byPair[k], r)
			case t != nil:
				idx.byType[t] = append(idx.byType[t], r)
			case role != nil:
				idx.byRole[role] = append(idx.byRole[role], r)
			}
		}
	}
	return idx
}

// Evaluates rules until no more add-ons are added.
//
// Roles are matched by identity of their declared forms, not by names.
func (idx *autoInheritanceIndex) evaluate(t *elementOrAddOn, inheritance []*elementOrAddOn, roles []IChildDef) []*elementOrAddOn {
	instanceOf := make(map[*elementOrAddOn]struct{})
	addAncestors := func(a *elementOrAddOn) {
		a.sealHierarchy()
		for anc := range a.ancestors {
			instanceOf[anc] = struct{}{}
		}
	}
	addAncestors(t)
	for _, a := range inheritance {
		addAncestors(a)
	}

	declaredRoles := make([]*childDef, 0, len(roles))
	for _, r := range roles {
		if c, ok := r.(*childDef); ok && !slices.Contains(declaredRoles, c.declared) {
			declaredRoles = append(declaredRoles, c.declared)
		}
	}

	added := make([]*elementOrAddOn, 0)
	apply := func(rules []*autoInheritanceRule) bool {
		changed := false
		for _, r := range rules {
			for _, a := range r.addOns {
				if _, ok := instanceOf[a]; ok {
					continue
				}
				added = append(added, a)
				addAncestors(a)
				changed = true
			}
		}
		return changed
	}

	for changed := true; changed; {
		changed = false
		types := make([]*elementOrAddOn, 0, len(instanceOf))
		for anc := range instanceOf {
			types = append(types, anc)
		}
		sortTypes(types)
		for _, anc := range types {
			changed = apply(idx.byType[anc]) || changed
			for _, role := range declaredRoles {
				changed = apply(idx.byPair[typeRole{anc, role}]) || changed
			}
		}
		for _, role := range declaredRoles {
			changed = apply(idx.byRole[role]) || changed
		}
	}

	sortTypes(added)
	return added
}

func autoInheritanceKey(t *elementOrAddOn, inheritance []IAddOn, roles []IChildDef) string {
	aa := make([]string, 0, len(inheritance))
	for _, a := range inheritance {
		aa = append(aa, a.QualifiedName())
	}
	slices.Sort(aa)
	rr := make([]string, 0, len(roles))
	for _, r := range roles {
		d := r.Declared()
		rr = append(rr, d.Owner().QualifiedName()+MemberSeparator+d.Name())
	}
	slices.Sort(rr)
	return t.QualifiedName() + "+" + strings.Join(aa, ",") + "@" + strings.Join(rr, ",")
}

func instanceTypeKey(t *elementOrAddOn, inheritance []*elementOrAddOn) string {
	s := strings.Builder{}
	s.WriteString(t.QualifiedName())
	for _, a := range inheritance {
		s.WriteString("+")
		s.WriteString(a.QualifiedName())
	}
	return s.String()
}
