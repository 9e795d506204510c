/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/untillpro/goutils/logger"
	"golang.org/x/exp/slices"

	"github.com/voedger/qonfig/pkg/diag"
)

// # Implements:
//   - IToolkit
type toolkit struct {
	ref        ToolkitRef
	descr      string
	pos        diag.Position
	deps       map[string]*toolkit
	depAliases []string

	valueTypes        map[string]IValueType
	valueTypesOrdered []IValueType

	// types arena, handle is index
	types       []*elementOrAddOn
	typesByName map[string]*elementOrAddOn
	roots       []*elementOrAddOn
	rules       []*autoInheritanceRule

	typesFrozen bool
	built       bool

	// transitive closure, computed by freeze
	allTypes     []*elementOrAddOn
	closure      map[string][]*elementOrAddOn
	closureRules []*autoInheritanceRule
	index        *autoInheritanceIndex

	autoCache *lru.Cache[string, []*elementOrAddOn]
	instances *lru.Cache[string, *elementOrAddOn]
}

func newToolkit(ref ToolkitRef, pos diag.Position) *toolkit {
	return &toolkit{
		ref:         ref,
		pos:         pos,
		deps:        make(map[string]*toolkit),
		valueTypes:  make(map[string]IValueType),
		typesByName: make(map[string]*elementOrAddOn),
	}
}

func (tk *toolkit) Ref() ToolkitRef { return tk.ref }

func (tk *toolkit) Name() string { return tk.ref.Name }

func (tk *toolkit) Version() Version { return tk.ref.Version }

func (tk *toolkit) Description() string { return tk.descr }

func (tk *toolkit) Position() diag.Position { return tk.pos }

func (tk *toolkit) String() string { return tk.ref.String() }

func (tk *toolkit) DependencyAliases() []string { return slices.Clone(tk.depAliases) }

func (tk *toolkit) Dependency(alias string) IToolkit {
	if d, ok := tk.deps[alias]; ok {
		return d
	}
	return nil
}

func (tk *toolkit) DependsOn(other IToolkit) bool {
	if other == nil {
		return false
	}
	if o, ok := other.(*toolkit); ok && o == tk {
		return true
	}
	for _, d := range tk.deps {
		if d.DependsOn(other) {
			return true
		}
	}
	return false
}

func (tk *toolkit) ValueType(name string) (IValueType, error) {
	if alias, n := SplitQualified(name); alias != "" {
		d, ok := tk.deps[alias]
		if !ok {
			return nil, ErrNotFound("toolkit alias «%s» in «%v»", alias, tk)
		}
		return d.ValueType(n)
	}
	if vt, ok := builtinValueTypes[name]; ok {
		return vt, nil
	}
	if vt, ok := tk.valueTypes[name]; ok {
		return vt, nil
	}
	found := make([]IValueType, 0, 1)
	for _, alias := range tk.depAliases {
		if vt, err := tk.deps[alias].ValueType(name); err == nil && !slices.Contains(found, vt) {
			found = append(found, vt)
		}
	}
	switch len(found) {
	case 0:
		return nil, ErrValueTypeNotFound(name)
	case 1:
		return found[0], nil
	}
	return nil, ErrAmbiguous("value type «%s» is declared by several dependencies of «%v»", name, tk)
}

func (tk *toolkit) DeclaredValueTypes() []IValueType { return slices.Clone(tk.valueTypesOrdered) }

func (tk *toolkit) Type(name string) (IElementOrAddOn, error) {
	t, err := tk.findType(name)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (tk *toolkit) ElementDef(name string) (IElementDef, error) {
	t, err := tk.findType(name)
	if err != nil {
		return nil, err
	}
	if t.kind != TypeKind_ElementDef {
		return nil, ErrNotFound("element-def «%s», found add-on «%v»", name, t)
	}
	return t, nil
}

func (tk *toolkit) AddOn(name string) (IAddOn, error) {
	t, err := tk.findType(name)
	if err != nil {
		return nil, err
	}
	if t.kind != TypeKind_AddOn {
		return nil, ErrNotFound("add-on «%s», found element-def «%v»", name, t)
	}
	return t, nil
}

// Finds type by simple or qualified name
func (tk *toolkit) findType(name string) (*elementOrAddOn, error) {
	if alias, n := SplitQualified(name); alias != "" {
		d, ok := tk.deps[alias]
		if !ok {
			return nil, ErrNotFound("toolkit alias «%s» in «%v»", alias, tk)
		}
		return d.findType(n)
	}
	found := tk.lookup(name)
	switch len(found) {
	case 0:
		return nil, ErrTypeNotFound(name)
	case 1:
		return found[0], nil
	}
	where := make([]string, 0, len(found))
	for _, t := range found {
		where = append(where, t.tk.ref.String())
	}
	slices.Sort(where)
	return nil, ErrAmbiguous("type «%s» is declared by %v", name, where)
}

// Returns visible types with simple name: local declaration or distinct types from dependencies
func (tk *toolkit) lookup(name string) []*elementOrAddOn {
	if tk.closure != nil {
		return tk.closure[name]
	}
	if t, ok := tk.typesByName[name]; ok {
		return []*elementOrAddOn{t}
	}
	found := make([]*elementOrAddOn, 0, 1)
	for _, alias := range tk.depAliases {
		for _, t := range tk.deps[alias].lookup(name) {
			if !slices.Contains(found, t) {
				found = append(found, t)
			}
		}
	}
	return found
}

func (tk *toolkit) DeclaredTypes() []IElementOrAddOn { return typesList(tk.types) }

func (tk *toolkit) AllTypes() []IElementOrAddOn { return typesList(tk.allTypes) }

func (tk *toolkit) Roots() []IElementDef {
	rr := make([]IElementDef, 0, len(tk.roots))
	for _, r := range tk.roots {
		rr = append(rr, r)
	}
	return rr
}

func (tk *toolkit) DeclaredAutoInheritance() []IAutoInheritanceRule {
	rr := make([]IAutoInheritanceRule, 0, len(tk.rules))
	for _, r := range tk.rules {
		rr = append(rr, r)
	}
	return rr
}

func (tk *toolkit) AutoInheritance(t IElementDef, inheritance []IAddOn, roles []IChildDef) []IAddOn {
	tk.mustBuilt()
	e := t.(*elementOrAddOn)
	key := autoInheritanceKey(e, inheritance, roles)
	if res, ok := tk.autoCache.Get(key); ok {
		return addOns(res)
	}
	res := tk.index.evaluate(e, typeRecords(inheritance), roles)
	tk.autoCache.Add(key, res)
	if logger.IsVerbose() && len(res) > 0 {
		logger.Verbose(fmt.Sprintf("%v: auto-inheritance of «%v» %s: %v", tk, e, key, res))
	}
	return addOns(res)
}

func (tk *toolkit) InstanceType(t IElementDef, inheritance []IAddOn) (IElementDef, error) {
	tk.mustBuilt()
	e := t.(*elementOrAddOn)
	extra := make([]*elementOrAddOn, 0, len(inheritance))
	for _, a := range typeRecords(inheritance) {
		if !e.hasAncestor(a) {
			extra = append(extra, a)
		}
	}
	if len(extra) == 0 {
		return e, nil
	}
	sortTypes(extra)
	key := instanceTypeKey(e, extra)
	if s, ok := tk.instances.Get(key); ok {
		return s, nil
	}
	s, err := newInstanceType(e, extra)
	if err != nil {
		return nil, err
	}
	tk.instances.Add(key, s)
	return s, nil
}

func (tk *toolkit) mustBuilt() {
	if !tk.built {
		panic(fmt.Errorf("toolkit «%v» is not built", tk))
	}
}

// Computes transitive closure of types
func (tk *toolkit) freezeClosure() {
	tk.allTypes = slices.Clone(tk.types)
	closure := make(map[string][]*elementOrAddOn)
	for _, t := range tk.types {
		closure[t.name] = []*elementOrAddOn{t}
	}
	for _, alias := range tk.depAliases {
		d := tk.deps[alias]
		for _, t := range d.allTypes {
			if !slices.Contains(tk.allTypes, t) {
				tk.allTypes = append(tk.allTypes, t)
			}
		}
		for name, tt := range d.closure {
			if _, local := tk.typesByName[name]; local {
				continue
			}
			for _, t := range tt {
				if !slices.Contains(closure[name], t) {
					closure[name] = append(closure[name], t)
				}
			}
		}
	}
	tk.closure = closure
}

// Creates synthetic element-def, which unifies t and add-ons
func newInstanceType(t *elementOrAddOn, inheritance []*elementOrAddOn) (*elementOrAddOn, error) {
	s := newElementOrAddOn(t.tk, TypeKind_ElementDef, t.name, t.abstract, t.descr, t.pos)
	s.handle, s.promise, s.synthetic = t.handle, t.promise, true
	s.super = t
	s.inherits = inheritance
	s.sealHierarchy()

	errs := &errCollector{}
	s.ResolveAttributes(errs)
	s.ResolveChildren(errs)
	s.ResolveMetaChildren(errs)
	s.validate(errs)
	s.frozen = true
	if err := errs.err(); err != nil {
		return nil, err
	}
	return s, nil
}

func typesList(tt []*elementOrAddOn) []IElementOrAddOn {
	l := make([]IElementOrAddOn, 0, len(tt))
	for _, t := range tt {
		l = append(l, t)
	}
	return l
}
