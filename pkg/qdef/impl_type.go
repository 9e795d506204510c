/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/voedger/qonfig/pkg/diag"
)

var typeKindNames = [TypeKind_count]string{
	TypeKind_null:       "null",
	TypeKind_ElementDef: "element-def",
	TypeKind_AddOn:      "add-on",
}

func (k TypeKind) String() string {
	if k < TypeKind_count {
		return typeKindNames[k]
	}
	return fmt.Sprintf("TypeKind(%d)", k)
}

type attrMod struct {
	declared *attributeDef
	decl     ValueDecl
}

type childMod struct {
	declared *childDef
	decl     ChildDecl
}

// Type record in toolkit arena.
//
// # Implements:
//   - IElementDef, IElementBuilder
//   - IAddOn, IAddOnBuilder
type elementOrAddOn struct {
	tk        *toolkit
	handle    int
	kind      TypeKind
	name      string
	abstract  bool
	promise   bool
	descr     string
	pos       diag.Position
	synthetic bool
	frozen    bool

	super    *elementOrAddOn
	requires *elementOrAddOn
	inherits []*elementOrAddOn

	// computed by sealHierarchy
	ancestors        map[*elementOrAddOn]struct{}
	ancestorsOrdered []*elementOrAddOn
	required         *elementOrAddOn
	requiredConflict []*elementOrAddOn

	declaredAttrs []*attributeDef
	attrMods      []attrMod
	attrs         *memberSet[*attributeDef]

	declaredValue *valueSpec
	valueMod      *ValueDecl
	values        *memberSet[*valueSpec]

	declaredChildren []*childDef
	childMods        []childMod
	children         *memberSet[*childDef]

	declaredMeta []*childDef
	metaMods     []childMod
	metaChildren *memberSet[*childDef]

	metadata IMetadata
}

func newElementOrAddOn(tk *toolkit, kind TypeKind, name string, abstract bool, descr string, pos diag.Position) *elementOrAddOn {
	return &elementOrAddOn{
		tk:       tk,
		kind:     kind,
		name:     name,
		abstract: abstract,
		descr:    descr,
		pos:      pos,
	}
}

func (t *elementOrAddOn) Toolkit() IToolkit { return t.tk }

func (t *elementOrAddOn) Kind() TypeKind { return t.kind }

func (t *elementOrAddOn) Name() string { return t.name }

func (t *elementOrAddOn) QualifiedName() string {
	return fmt.Sprintf("%v%s%s", t.tk.ref, AliasSeparator, t.name)
}

func (t *elementOrAddOn) String() string { return t.QualifiedName() }

func (t *elementOrAddOn) Abstract() bool { return t.abstract }

func (t *elementOrAddOn) Promise() bool { return t.promise }

func (t *elementOrAddOn) Description() string { return t.descr }

func (t *elementOrAddOn) Position() diag.Position { return t.pos }

func (t *elementOrAddOn) Super() IElementDef {
	if t.super == nil {
		return nil
	}
	return t.super
}

func (t *elementOrAddOn) Requires() IElementDef {
	if r := t.requiredElement(); r != nil {
		return r
	}
	return nil
}

func (t *elementOrAddOn) Inherits() []IAddOn { return addOns(t.inherits) }

func (t *elementOrAddOn) IsAssignableFrom(other IElementOrAddOn) bool {
	o, ok := other.(*elementOrAddOn)
	if !ok || o == nil {
		return false
	}
	return o.hasAncestor(t)
}

func (t *elementOrAddOn) Ancestors() []IElementOrAddOn {
	t.sealHierarchy()
	aa := make([]IElementOrAddOn, 0, len(t.ancestorsOrdered))
	for _, a := range t.ancestorsOrdered {
		aa = append(aa, a)
	}
	return aa
}

func (t *elementOrAddOn) FullInheritance() []IAddOn {
	t.sealHierarchy()
	aa := make([]IAddOn, 0)
	for _, a := range t.ancestorsOrdered {
		if a.kind == TypeKind_AddOn && a != t {
			aa = append(aa, a)
		}
	}
	return aa
}

func (t *elementOrAddOn) KnownType(name string) (IElementOrAddOn, error) {
	t.sealHierarchy()
	cands := make([]*elementOrAddOn, 0, 1)
	for _, a := range t.ancestorsOrdered {
		if a.name == name {
			cands = append(cands, a)
		}
	}
	switch len(cands) {
	case 0:
		return nil, ErrNotFound("type «%s» is not known to «%v»", name, t)
	case 1:
		return cands[0], nil
	}
	return nil, ErrAmbiguous("several types «%s» are known to «%v»", name, t)
}

func (t *elementOrAddOn) DeclaredAttributes() []IAttributeDef {
	aa := make([]IAttributeDef, 0, len(t.declaredAttrs))
	for _, a := range t.declaredAttrs {
		aa = append(aa, a)
	}
	return aa
}

func (t *elementOrAddOn) Attributes() []IAttributeDef {
	l := t.attrs.list()
	aa := make([]IAttributeDef, 0, len(l))
	for _, a := range l {
		aa = append(aa, a)
	}
	return aa
}

func (t *elementOrAddOn) Attribute(declared IAttributeDef) IAttributeDef {
	d, ok := declared.(*attributeDef)
	if !ok || d == nil {
		return nil
	}
	if a, ok := t.attrs.get(d.declared); ok {
		return a
	}
	return nil
}

func (t *elementOrAddOn) FindAttribute(owner IElementOrAddOn, name string) (IAttributeDef, error) {
	d, err := t.findDeclaredAttribute(owner, name)
	if err != nil {
		return nil, err
	}
	if a, ok := t.attrs.get(d); ok {
		return a, nil
	}
	return d, nil
}

func (t *elementOrAddOn) findDeclaredAttribute(owner IElementOrAddOn, name string) (*attributeDef, error) {
	return findDeclared(t, owner, name, func(t *elementOrAddOn) []*attributeDef { return t.declaredAttrs }, "attribute")
}

func (t *elementOrAddOn) DeclaredValue() IValueSpec {
	if t.declaredValue == nil {
		return nil
	}
	return t.declaredValue
}

func (t *elementOrAddOn) Value() IValueSpec {
	if l := t.values.list(); len(l) > 0 {
		return l[0]
	}
	return nil
}

func (t *elementOrAddOn) DeclaredChildren() []IChildDef { return childDefs(t.declaredChildren) }

func (t *elementOrAddOn) Children() []IChildDef { return childDefs(t.children.list()) }

func (t *elementOrAddOn) Child(declared IChildDef) IChildDef {
	return t.effectiveChild(t.children, declared)
}

func (t *elementOrAddOn) FindChild(owner IElementOrAddOn, name string) (IChildDef, error) {
	d, err := findDeclared(t, owner, name, func(t *elementOrAddOn) []*childDef { return t.declaredChildren }, "role")
	if err != nil {
		return nil, err
	}
	if c, ok := t.children.get(d); ok {
		return c, nil
	}
	return d, nil
}

func (t *elementOrAddOn) DeclaredMetaChildren() []IChildDef { return childDefs(t.declaredMeta) }

func (t *elementOrAddOn) MetaChildren() []IChildDef { return childDefs(t.metaChildren.list()) }

func (t *elementOrAddOn) MetaChild(declared IChildDef) IChildDef {
	return t.effectiveChild(t.metaChildren, declared)
}

func (t *elementOrAddOn) FindMetaChild(owner IElementOrAddOn, name string) (IChildDef, error) {
	d, err := findDeclared(t, owner, name, func(t *elementOrAddOn) []*childDef { return t.declaredMeta }, "metadata role")
	if err != nil {
		return nil, err
	}
	if c, ok := t.metaChildren.get(d); ok {
		return c, nil
	}
	return d, nil
}

func (t *elementOrAddOn) effectiveChild(set *memberSet[*childDef], declared IChildDef) IChildDef {
	d, ok := declared.(*childDef)
	if !ok || d == nil {
		return nil
	}
	if c, ok := set.get(d.declared); ok {
		return c
	}
	return nil
}

func (t *elementOrAddOn) Metadata() IMetadata {
	if t.synthetic {
		return t.super.Metadata()
	}
	return t.metadata
}

// Finds declared member of known types
func findDeclared[M member](t *elementOrAddOn, owner IElementOrAddOn, name string, declared func(*elementOrAddOn) []M, what string) (M, error) {
	var zero M
	t.sealHierarchy()
	if owner != nil {
		o, ok := owner.(*elementOrAddOn)
		if !ok || !t.hasAncestor(o) {
			return zero, ErrNotFound("type «%v» is not known to «%v»", owner, t)
		}
		for _, m := range declared(o) {
			if m.memberName() == name {
				return m, nil
			}
		}
		return zero, ErrNotFound("%s «%s%s%s»", what, o.name, MemberSeparator, name)
	}
	cands := make([]M, 0, 1)
	for _, a := range t.ancestorsOrdered {
		for _, m := range declared(a) {
			if m.memberName() == name {
				cands = append(cands, m)
			}
		}
	}
	return pickMember(cands, func() string { return fmt.Sprintf("%s «%s» of «%v»", what, name, t) })
}

// Returns is a an ancestor of t or t itself
func (t *elementOrAddOn) hasAncestor(a *elementOrAddOn) bool {
	t.sealHierarchy()
	_, ok := t.ancestors[a]
	return ok
}

// Returns is t descends from element-def e through extends chain.
// Add-on is checked by element-def it requires.
func (t *elementOrAddOn) extends(e *elementOrAddOn) bool {
	if t.kind == TypeKind_AddOn {
		if r := t.requiredElement(); r != nil {
			return r.extends(e)
		}
		return false
	}
	for s := t; s != nil; s = s.super {
		if s == e {
			return true
		}
	}
	return false
}

// Returns direct parents: super, required element-def and inherited add-ons
func (t *elementOrAddOn) parents() []*elementOrAddOn {
	pp := make([]*elementOrAddOn, 0, len(t.inherits)+2)
	if t.super != nil {
		pp = append(pp, t.super)
	}
	if r := t.requiredElement(); r != nil && t.kind == TypeKind_AddOn {
		pp = append(pp, r)
	}
	pp = append(pp, t.inherits...)
	return pp
}

// Returns element-def the add-on requires, declared or derived from inherited add-ons
func (t *elementOrAddOn) requiredElement() *elementOrAddOn {
	if t.kind != TypeKind_AddOn {
		return nil
	}
	t.sealHierarchy()
	return t.required
}

// Computes ancestors set. Hierarchy edges can not be changed after.
func (t *elementOrAddOn) sealHierarchy() {
	if t.ancestors != nil {
		return
	}
	t.ancestors = map[*elementOrAddOn]struct{}{t: {}}

	if t.kind == TypeKind_AddOn {
		t.required = t.requires
		if t.required == nil {
			cands := make([]*elementOrAddOn, 0)
			for _, a := range t.inherits {
				if r := a.requiredElement(); r != nil && !slices.Contains(cands, r) {
					cands = append(cands, r)
				}
			}
			t.required, t.requiredConflict = mostSpecificType(cands)
		}
	}

	merge := func(p *elementOrAddOn) {
		if p == nil {
			return
		}
		p.sealHierarchy()
		for a := range p.ancestors {
			t.ancestors[a] = struct{}{}
		}
	}
	merge(t.super)
	merge(t.required)
	for _, a := range t.inherits {
		merge(a)
	}

	t.ancestorsOrdered = make([]*elementOrAddOn, 0, len(t.ancestors))
	for a := range t.ancestors {
		t.ancestorsOrdered = append(t.ancestorsOrdered, a)
	}
	sortTypes(t.ancestorsOrdered)
}

func (t *elementOrAddOn) mustBuilding() {
	if t.frozen {
		panic(fmt.Errorf("type «%v» is frozen and can not be changed", t))
	}
}

func (t *elementOrAddOn) mustHierarchyOpen() {
	t.mustBuilding()
	if t.ancestors != nil {
		panic(fmt.Errorf("hierarchy of «%v» is sealed and can not be changed", t))
	}
}

func (t *elementOrAddOn) SetSuper(super IElementDef) {
	t.mustHierarchyOpen()
	if t.kind != TypeKind_ElementDef {
		panic(fmt.Errorf("add-on «%v» can not extend element-def", t))
	}
	if super != nil {
		t.super = super.(*elementOrAddOn)
	}
}

func (t *elementOrAddOn) SetRequires(e IElementDef) {
	t.mustHierarchyOpen()
	if t.kind != TypeKind_AddOn {
		panic(fmt.Errorf("element-def «%v» can not require element-def", t))
	}
	if e != nil {
		t.requires = e.(*elementOrAddOn)
	}
}

func (t *elementOrAddOn) AddInherits(addOn IAddOn) {
	t.mustHierarchyOpen()
	a := addOn.(*elementOrAddOn)
	if !slices.Contains(t.inherits, a) {
		t.inherits = append(t.inherits, a)
	}
}

func (t *elementOrAddOn) AddAttribute(name string, decl ValueDecl, r diag.IReporter) (IAttributeDef, error) {
	t.mustBuilding()
	if err := validateMemberName(name); err != nil {
		return nil, err
	}
	for _, a := range t.declaredAttrs {
		if a.name == name {
			return nil, ErrAlreadyExists("attribute «%s» in «%v»", name, t)
		}
	}
	if decl.Type == nil {
		return nil, ErrInvalid("attribute «%s» of «%v» has no type", name, t)
	}
	a := &attributeDef{
		valueDef: valueDef{owner: t, typ: decl.Type, pos: decl.Pos, descr: decl.Description},
		name:     name,
	}
	a.declared = a
	if err := a.declare(decl, fmt.Sprintf("attribute «%v»", a), r); err != nil {
		return nil, err
	}
	t.declaredAttrs = append(t.declaredAttrs, a)
	return a, nil
}

func (t *elementOrAddOn) ModifyAttribute(declared IAttributeDef, mod ValueDecl) error {
	t.mustBuilding()
	d := declared.(*attributeDef).declared
	if d.owner == t {
		return ErrInvalid("attribute «%v» is declared by «%v» and can not be modified there", d, t)
	}
	if !t.hasAncestor(d.owner) {
		return ErrNotFound("attribute «%v» is not inherited by «%v»", d, t)
	}
	for _, m := range t.attrMods {
		if m.declared == d {
			return ErrAlreadyExists("modification of attribute «%v» in «%v»", d, t)
		}
	}
	t.attrMods = append(t.attrMods, attrMod{d, mod})
	return nil
}

func (t *elementOrAddOn) SetValue(decl ValueDecl, r diag.IReporter) (IValueSpec, error) {
	t.mustBuilding()
	if t.declaredValue != nil {
		return nil, ErrAlreadyExists("value of «%v»", t)
	}
	if decl.Type == nil {
		return nil, ErrInvalid("value of «%v» has no type", t)
	}
	v := &valueSpec{valueDef: valueDef{owner: t, typ: decl.Type, pos: decl.Pos, descr: decl.Description}}
	v.declared = v
	if err := v.declare(decl, fmt.Sprintf("value of «%v»", t), r); err != nil {
		return nil, err
	}
	t.declaredValue = v
	return v, nil
}

func (t *elementOrAddOn) ModifyValue(mod ValueDecl) error {
	t.mustBuilding()
	if t.valueMod != nil {
		return ErrAlreadyExists("modification of value in «%v»", t)
	}
	t.valueMod = &mod
	return nil
}

func (t *elementOrAddOn) ResolveAttributes(r diag.IReporter) {
	t.mustBuilding()
	t.sealHierarchy()
	parents := t.parents()

	t.attrs = newMemberSet[*attributeDef]()
	mods := make(map[*attributeDef]ValueDecl, len(t.attrMods))
	for _, m := range t.attrMods {
		mods[m.declared] = m.decl
	}
	for _, inh := range inheritMembers(parents, func(p *elementOrAddOn) *memberSet[*attributeDef] { return p.attrs }, equalAttributes) {
		eff := inh.effective
		mod, modified := mods[inh.declared]
		if len(inh.conflicts) > 0 && !modified {
			r.Error(ErrIncompatible("«%v» inherits conflicting definitions of attribute «%v» from %s", t, inh.declared, conflictOwners(inh.conflicts)))
		}
		if modified {
			eff = t.modifiedAttribute(eff, mod, r)
			delete(mods, inh.declared)
		}
		t.attrs.add(inh.declared, eff)
	}
	for _, m := range t.attrMods {
		if _, ok := mods[m.declared]; ok {
			r.Error(ErrNotFound("attribute «%v» to modify in «%v»", m.declared, t))
		}
	}
	for _, a := range t.declaredAttrs {
		t.attrs.add(a, a)
	}

	t.resolveValue(parents, r)
}

func (t *elementOrAddOn) modifiedAttribute(base *attributeDef, mod ValueDecl, r diag.IReporter) *attributeDef {
	m := &attributeDef{valueDef: base.valueDef, name: base.name, declared: base.declared}
	m.owner, m.pos = t, mod.Pos
	if mod.Description != "" {
		m.descr = mod.Description
	}
	m.modify(&base.valueDef, mod, fmt.Sprintf("attribute «%v»", base.declared), r)
	return m
}

func (t *elementOrAddOn) resolveValue(parents []*elementOrAddOn, r diag.IReporter) {
	t.values = newMemberSet[*valueSpec]()
	inh := inheritMembers(parents, func(p *elementOrAddOn) *memberSet[*valueSpec] { return p.values }, equalValueSpecs)

	if len(inh) > 1 {
		dd := make([]*valueSpec, 0, len(inh))
		for _, i := range inh {
			dd = append(dd, i.declared)
		}
		r.Error(ErrIncompatible("«%v» inherits unrelated value declarations from %s", t, conflictOwners(dd)))
	}

	switch {
	case t.declaredValue != nil:
		if len(inh) > 0 {
			r.Error(ErrAlreadyExists("«%v» declares value, but inherits value of «%v»", t, inh[0].declared.owner))
		}
		t.values.add(t.declaredValue, t.declaredValue)
	case len(inh) > 0:
		i := inh[0]
		eff := i.effective
		if len(i.conflicts) > 0 && t.valueMod == nil {
			r.Error(ErrIncompatible("«%v» inherits conflicting definitions of value from %s", t, conflictOwners(i.conflicts)))
		}
		if t.valueMod != nil {
			m := &valueSpec{valueDef: eff.valueDef, declared: eff.declared}
			m.owner, m.pos = t, t.valueMod.Pos
			if t.valueMod.Description != "" {
				m.descr = t.valueMod.Description
			}
			m.modify(&eff.valueDef, *t.valueMod, fmt.Sprintf("value of «%v»", t), r)
			eff = m
		}
		t.values.add(i.declared, eff)
	case t.valueMod != nil:
		r.Error(ErrNotFound("value to modify in «%v»", t))
	}
}

func (t *elementOrAddOn) AddChild(name string, decl ChildDecl) (IChildDef, error) {
	t.mustBuilding()
	c, err := t.newChild(name, decl, t.declaredChildren, false)
	if err != nil {
		return nil, err
	}
	t.declaredChildren = append(t.declaredChildren, c)
	return c, nil
}

func (t *elementOrAddOn) AddMetaChild(name string, decl ChildDecl) (IChildDef, error) {
	t.mustBuilding()
	c, err := t.newChild(name, decl, t.declaredMeta, true)
	if err != nil {
		return nil, err
	}
	t.declaredMeta = append(t.declaredMeta, c)
	return c, nil
}

func (t *elementOrAddOn) newChild(name string, decl ChildDecl, declared []*childDef, meta bool) (*childDef, error) {
	if err := validateMemberName(name); err != nil {
		return nil, err
	}
	for _, c := range declared {
		if c.name == name {
			return nil, ErrAlreadyExists("role «%s» in «%v»", name, t)
		}
	}
	if decl.Type == nil {
		return nil, ErrInvalid("role «%s» of «%v» has no type", name, t)
	}
	c := &childDef{
		owner:    t,
		name:     name,
		typ:      decl.Type.(*elementOrAddOn),
		min:      1,
		meta:     meta,
		pos:      decl.Pos,
		descr:    decl.Description,
		inherits: typeRecords(decl.Inherits),
		requires: typeRecords(decl.Requires),
	}
	c.declared = c
	if decl.HasMin {
		c.min = decl.Min
	}
	switch {
	case decl.HasMax:
		c.max = decl.Max
	case c.min > 1:
		c.max = c.min
	default:
		c.max = 1
	}
	if c.max < c.min {
		return nil, ErrInvalid("%s: max %v is less than min %v", c.what(), c.max, c.min)
	}
	if err := checkRoleInherits(c.typ, c.inherits, c.what()); err != nil {
		return nil, err
	}
	return c, nil
}

func (t *elementOrAddOn) ModifyChild(declared IChildDef, mod ChildDecl) error {
	t.mustBuilding()
	return t.registerChildMod(declared, mod, &t.childMods)
}

func (t *elementOrAddOn) ModifyMetaChild(declared IChildDef, mod ChildDecl) error {
	t.mustBuilding()
	return t.registerChildMod(declared, mod, &t.metaMods)
}

func (t *elementOrAddOn) registerChildMod(declared IChildDef, mod ChildDecl, mods *[]childMod) error {
	d := declared.(*childDef).declared
	if d.owner == t {
		return ErrInvalid("%s is declared by «%v» and can not be modified there", d.what(), t)
	}
	if !t.hasAncestor(d.owner) {
		return ErrNotFound("%s is not inherited by «%v»", d.what(), t)
	}
	for _, m := range *mods {
		if m.declared == d {
			return ErrAlreadyExists("modification of %s in «%v»", d.what(), t)
		}
	}
	*mods = append(*mods, childMod{d, mod})
	return nil
}

func (t *elementOrAddOn) ResolveChildren(r diag.IReporter) {
	t.mustBuilding()
	t.children = t.resolveChildren(func(p *elementOrAddOn) *memberSet[*childDef] { return p.children }, t.childMods, t.declaredChildren, r)
}

func (t *elementOrAddOn) ResolveMetaChildren(r diag.IReporter) {
	t.mustBuilding()
	t.metaChildren = t.resolveChildren(func(p *elementOrAddOn) *memberSet[*childDef] { return p.metaChildren }, t.metaMods, t.declaredMeta, r)
}

func (t *elementOrAddOn) resolveChildren(set func(*elementOrAddOn) *memberSet[*childDef], childMods []childMod, declared []*childDef, r diag.IReporter) *memberSet[*childDef] {
	t.sealHierarchy()
	res := newMemberSet[*childDef]()
	mods := make(map[*childDef]ChildDecl, len(childMods))
	for _, m := range childMods {
		mods[m.declared] = m.decl
	}
	for _, inh := range inheritMembers(t.parents(), set, equalChildren) {
		eff := inh.effective
		mod, modified := mods[inh.declared]
		if len(inh.conflicts) > 0 && !modified {
			r.Error(ErrIncompatible("«%v» inherits conflicting definitions of %s from %s", t, inh.declared.what(), conflictOwners(inh.conflicts)))
		}
		if modified {
			eff = t.modifiedChild(eff, mod, r)
			delete(mods, inh.declared)
		}
		res.add(inh.declared, eff)
	}
	for _, m := range childMods {
		if _, ok := mods[m.declared]; ok {
			r.Error(ErrNotFound("%s to modify in «%v»", m.declared.what(), t))
		}
	}
	for _, c := range declared {
		res.add(c, c)
	}
	return res
}

func (t *elementOrAddOn) modifiedChild(base *childDef, mod ChildDecl, r diag.IReporter) *childDef {
	m := *base
	m.owner, m.pos = t, mod.Pos
	if mod.Description != "" {
		m.descr = mod.Description
	}
	what := base.declared.what()

	if mod.Type != nil {
		typ := mod.Type.(*elementOrAddOn)
		if !base.typ.IsAssignableFrom(typ) {
			r.Error(ErrIncompatible("%s: type «%v» is not assignable to «%v»", what, typ, base.typ))
		} else {
			m.typ = typ
		}
	}
	if mod.HasMin {
		if mod.Min < base.min {
			r.Error(ErrInvalid("%s: min %v is less than inherited min %v", what, mod.Min, base.min))
		} else {
			m.min = mod.Min
		}
	}
	if mod.HasMax {
		if mod.Max > base.max {
			r.Error(ErrInvalid("%s: max %v is greater than inherited max %v", what, mod.Max, base.max))
		} else {
			m.max = mod.Max
		}
	}
	if m.max < m.min {
		r.Error(ErrInvalid("%s: max %v is less than min %v", what, m.max, m.min))
		m.min, m.max = base.min, base.max
	}

	inherits := typeRecords(mod.Inherits)
	if err := checkRoleInherits(m.typ, inherits, what); err != nil {
		r.Error(err)
	} else {
		m.inherits = unionTypes(base.inherits, inherits)
	}
	m.requires = unionTypes(base.requires, typeRecords(mod.Requires))
	return &m
}

func (t *elementOrAddOn) SetMetadata(md IMetadata) {
	if t.metadata != nil {
		panic(fmt.Errorf("metadata of «%v» is already set", t))
	}
	t.metadata = md
}

// Validates type after all members are resolved
func (t *elementOrAddOn) validate(r diag.IReporter) {
	switch t.kind {
	case TypeKind_ElementDef:
		for _, a := range t.ancestorsOrdered {
			if a.kind != TypeKind_AddOn || (t.super != nil && t.super.hasAncestor(a)) {
				continue
			}
			if req := a.requiredElement(); req != nil && !t.extends(req) {
				r.Error(ErrIncompatible("«%v» inherits «%v», which requires «%v»", t, a, req))
			}
		}
		if t.promise && t.abstract && !t.synthetic {
			r.Error(ErrInvalid("promise «%v» can not be abstract", t))
		}
	case TypeKind_AddOn:
		if len(t.requiredConflict) > 0 {
			r.Error(ErrIncompatible("add-on «%v» inherits unrelated requirements %v", t, t.requiredConflict))
		}
		if req := t.requiredElement(); req != nil {
			for _, p := range t.inherits {
				if pr := p.requiredElement(); pr != nil && !req.extends(pr) {
					r.Error(ErrIncompatible("add-on «%v» requires «%v», but inherited «%v» requires «%v»", t, req, p, pr))
				}
			}
		}
	}
}
