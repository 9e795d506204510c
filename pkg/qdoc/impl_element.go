/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdoc

import (
	"fmt"

	"github.com/voedger/qonfig/pkg/diag"
	"github.com/voedger/qonfig/pkg/qdef"
)

type attrValue struct {
	value     any
	text      string
	specified bool
}

// Element of parsed document.
//
// Element is mutable only while document is built.
//
// # Implements:
//   - qdef.IElement
type element struct {
	typ      qdef.IElementDef
	instType qdef.IElementDef
	explicit []qdef.IAddOn
	auto     []qdef.IAddOn

	attrs     map[qdef.IAttributeDef]attrValue
	attrOrder []qdef.IAttributeDef

	value          any
	valueText      string
	hasValue       bool
	valueSpecified bool

	children []*element
	parent   *element
	roles    []qdef.IChildDef
	roleDefs []qdef.IChildDef

	pos      diag.Position
	promise  *element
	external *element
	partial  bool
}

func newElement(t qdef.IElementDef, pos diag.Position) *element {
	return &element{
		typ:      t,
		instType: t,
		attrs:    make(map[qdef.IAttributeDef]attrValue),
		pos:      pos,
	}
}

func (e *element) Type() qdef.IElementDef { return e.typ }

func (e *element) Inheritance() []qdef.IAddOn { return e.explicit }

func (e *element) AutoInheritance() []qdef.IAddOn { return e.auto }

func (e *element) IsInstance(t qdef.IElementOrAddOn) bool {
	return t != nil && t.IsAssignableFrom(e.instType)
}

func (e *element) InstanceType() qdef.IElementDef { return e.instType }

func (e *element) Attribute(attr qdef.IAttributeDef) any {
	if attr == nil {
		return nil
	}
	if v, ok := e.attrs[attr.Declared()]; ok {
		return v.value
	}
	return nil
}

func (e *element) AttributeText(attr qdef.IAttributeDef) (string, bool) {
	if attr == nil {
		return "", false
	}
	v, ok := e.attrs[attr.Declared()]
	return v.text, ok
}

func (e *element) AttributeByName(name string) (any, error) {
	ownerName, n := qdef.SplitMember(name)
	var owner qdef.IElementOrAddOn
	if ownerName != "" {
		o, err := e.instType.KnownType(ownerName)
		if err != nil {
			return nil, err
		}
		owner = o
	}
	a, err := e.instType.FindAttribute(owner, n)
	if err != nil {
		return nil, err
	}
	return e.Attribute(a), nil
}

func (e *element) Attributes() []qdef.IAttributeDef { return e.attrOrder }

func (e *element) Value() any {
	if !e.hasValue {
		return nil
	}
	return e.value
}

func (e *element) ValueText() (string, bool) { return e.valueText, e.hasValue }

func (e *element) Children() []qdef.IElement { return elements(e.children) }

func (e *element) ChildrenFor(role qdef.IChildDef) []qdef.IElement {
	return childrenFor(e.children, role)
}

func (e *element) ChildrenByRole(name string) ([]qdef.IElement, error) {
	ownerName, n := qdef.SplitMember(name)
	var owner qdef.IElementOrAddOn
	if ownerName != "" {
		o, err := e.instType.KnownType(ownerName)
		if err != nil {
			return nil, err
		}
		owner = o
	}
	r, err := e.instType.FindChild(owner, n)
	if err != nil {
		return nil, err
	}
	return e.ChildrenFor(r), nil
}

func (e *element) Parent() qdef.IElement {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *element) ParentRoles() []qdef.IChildDef { return e.roles }

func (e *element) Position() diag.Position { return e.pos }

func (e *element) Promise() qdef.IElement {
	if e.promise == nil {
		return nil
	}
	return e.promise
}

func (e *element) External() qdef.IElement {
	if e.external == nil {
		return nil
	}
	return e.external
}

func (e *element) IsPartial() bool { return e.partial }

func (e *element) String() string { return fmt.Sprintf("«%v» at %v", e.typ, e.pos) }

func (e *element) setAttribute(declared qdef.IAttributeDef, v attrValue) {
	if _, ok := e.attrs[declared]; !ok {
		e.attrOrder = append(e.attrOrder, declared)
	}
	e.attrs[declared] = v
}

// Sets defaults of attributes and value, which are not specified
func (e *element) applyDefaults() {
	for _, a := range e.instType.Attributes() {
		d := a.Declared()
		if _, ok := e.attrs[d]; ok {
			continue
		}
		if text, ok := a.DefaultText(); ok {
			e.setAttribute(d, attrValue{value: a.Default(), text: text})
		}
	}
	if vs := e.instType.Value(); vs != nil && !e.hasValue {
		if text, ok := vs.DefaultText(); ok {
			e.value, e.valueText, e.hasValue = vs.Default(), text, true
		}
	}
}

func (e *element) fulfills(role qdef.IChildDef) bool {
	d := role.Declared()
	for _, r := range e.roles {
		if r == d {
			return true
		}
	}
	return false
}

// Type-level metadata content
//
// # Implements:
//   - qdef.IMetadata
type metadata struct {
	owner    qdef.IElementOrAddOn
	children []*element
	pos      diag.Position
}

func (m *metadata) Owner() qdef.IElementOrAddOn { return m.owner }

func (m *metadata) Children() []qdef.IElement { return elements(m.children) }

func (m *metadata) ChildrenFor(role qdef.IChildDef) []qdef.IElement {
	return childrenFor(m.children, role)
}

func (m *metadata) Position() diag.Position { return m.pos }
