/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/exp/slices"

	"github.com/voedger/qonfig/pkg/diag"
)

// # Implements:
//   - IToolkitBuilder
type toolkitBuilder struct {
	tk            *toolkit
	autoCacheSize int
	instCacheSize int
	errors        int
}

func (b *toolkitBuilder) Ref() ToolkitRef { return b.tk.ref }

func (b *toolkitBuilder) SetDescription(d string) {
	b.mustNotBuilt()
	b.tk.descr = d
}

func (b *toolkitBuilder) AddDependency(alias string, dep IToolkit) error {
	b.mustNotBuilt()
	if ok, err := ValidName(alias); !ok {
		return err
	}
	if _, ok := b.tk.deps[alias]; ok {
		return ErrAlreadyExists("dependency alias «%s» in «%v»", alias, b.tk)
	}
	d, ok := dep.(*toolkit)
	if !ok || !d.built {
		panic(fmt.Errorf("dependency «%v» of «%v» is not built", dep, b.tk))
	}
	if d.DependsOn(b.tk) {
		return ErrCircularInheritance(fmt.Sprintf("toolkit «%v» depends on «%v»", d, b.tk))
	}
	b.tk.deps[alias] = d
	b.tk.depAliases = append(b.tk.depAliases, alias)
	return nil
}

func (b *toolkitBuilder) AddValueType(vt IValueType) error {
	b.mustNotBuilt()
	name := vt.Name()
	if ok, err := ValidName(name); !ok {
		return err
	}
	if _, ok := builtinValueTypes[name]; ok {
		return ErrAlreadyExists("value type «%s» is builtin", name)
	}
	if _, ok := b.tk.valueTypes[name]; ok {
		return ErrAlreadyExists("value type «%s» in «%v»", name, b.tk)
	}
	b.tk.valueTypes[name] = vt
	b.tk.valueTypesOrdered = append(b.tk.valueTypesOrdered, vt)
	return nil
}

func (b *toolkitBuilder) ValueType(name string) (IValueType, error) { return b.tk.ValueType(name) }

func (b *toolkitBuilder) addType(kind TypeKind, name string, abstract bool, descr string, pos diag.Position) (*elementOrAddOn, error) {
	b.mustNotBuilt()
	if b.tk.typesFrozen {
		panic(fmt.Errorf("types of «%v» are frozen", b.tk))
	}
	if ok, err := ValidName(name); !ok {
		return nil, err
	}
	if t, ok := b.tk.typesByName[name]; ok {
		return nil, ErrAlreadyExists("type «%s» in «%v», already declared at %v", name, b.tk, t.pos)
	}
	t := newElementOrAddOn(b.tk, kind, name, abstract, descr, pos)
	t.handle = len(b.tk.types)
	b.tk.types = append(b.tk.types, t)
	b.tk.typesByName[name] = t
	return t, nil
}

func (b *toolkitBuilder) AddElementDef(name string, abstract, promise bool, descr string, pos diag.Position) (IElementBuilder, error) {
	t, err := b.addType(TypeKind_ElementDef, name, abstract, descr, pos)
	if err != nil {
		return nil, err
	}
	t.promise = promise
	return t, nil
}

func (b *toolkitBuilder) AddAddOn(name string, abstract bool, descr string, pos diag.Position) (IAddOnBuilder, error) {
	t, err := b.addType(TypeKind_AddOn, name, abstract, descr, pos)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (b *toolkitBuilder) Type(name string) (IElementOrAddOn, error) { return b.tk.Type(name) }

func (b *toolkitBuilder) AddRoot(e IElementDef) error {
	b.mustNotBuilt()
	t := e.(*elementOrAddOn)
	if t.abstract {
		return ErrAbstract("root «%v» can not be abstract", t)
	}
	if slices.Contains(b.tk.roots, t) {
		return ErrAlreadyExists("root «%v» in «%v»", t, b.tk)
	}
	b.tk.roots = append(b.tk.roots, t)
	return nil
}

// Validates types and computes closure.
//
// Types can not be added or changed after freeze, but auto-inheritance rules can.
// Members of types, which are not resolved yet, are resolved parents first.
func (b *toolkitBuilder) Freeze(r diag.IReporter) {
	b.mustNotBuilt()
	cr := &countingReporter{r: r}
	defer func() { b.errors += cr.errors }()

	visiting := make(map[*elementOrAddOn]bool)
	var resolve func(t *elementOrAddOn)
	resolve = func(t *elementOrAddOn) {
		if visiting[t] {
			return
		}
		visiting[t] = true
		for _, p := range t.parents() {
			if p.tk == b.tk {
				resolve(p)
			}
		}
		if t.attrs == nil {
			t.ResolveAttributes(cr)
		}
		if t.children == nil {
			t.ResolveChildren(cr)
		}
		if t.metaChildren == nil {
			t.ResolveMetaChildren(cr)
		}
	}

	for _, t := range b.tk.types {
		t.sealHierarchy()
		resolve(t)
	}
	for _, t := range b.tk.types {
		t.validate(cr)
	}
	for _, t := range b.tk.types {
		t.frozen = true
	}
	b.tk.freezeClosure()
	b.tk.typesFrozen = true
}

func (b *toolkitBuilder) AddAutoInheritance(addOns []IAddOn, targets []AutoInheritanceTarget, pos diag.Position) (IAutoInheritanceRule, error) {
	b.mustNotBuilt()
	if !b.tk.typesFrozen {
		panic(fmt.Errorf("types of «%v» must be frozen before auto-inheritance rules are added", b.tk))
	}
	if len(addOns) == 0 {
		return nil, ErrInvalid("auto-inheritance rule without add-ons")
	}
	if len(targets) == 0 {
		return nil, ErrInvalid("auto-inheritance rule without targets")
	}
	rule := &autoInheritanceRule{tk: b.tk, addOns: typeRecords(addOns), pos: pos}
	for _, trg := range targets {
		if trg.Type == nil && trg.Role == nil {
			return nil, ErrInvalid("auto-inheritance target without type and role")
		}
		var scope *elementOrAddOn
		if trg.Role != nil {
			trg.Role = trg.Role.Declared()
			scope = trg.Role.(*childDef).typ
		}
		if trg.Type != nil {
			scope = trg.Type.(*elementOrAddOn)
		}
		for _, a := range rule.addOns {
			if req := a.requiredElement(); req != nil && !scope.extends(req) {
				return nil, ErrIncompatible("auto-inherited «%v» requires «%v», but target «%v» is not assignable to it", a, req, scope)
			}
		}
		rule.targets = append(rule.targets, trg)
	}
	b.tk.rules = append(b.tk.rules, rule)
	return rule, nil
}

func (b *toolkitBuilder) Build(r diag.IReporter) IToolkit {
	if !b.tk.typesFrozen {
		b.Freeze(r)
	}
	b.mustNotBuilt()
	tk := b.tk

	tk.closureRules = slices.Clone(tk.rules)
	for _, alias := range tk.depAliases {
		for _, rule := range tk.deps[alias].closureRules {
			if !slices.Contains(tk.closureRules, rule) {
				tk.closureRules = append(tk.closureRules, rule)
			}
		}
	}
	tk.index = newAutoInheritanceIndex(tk.closureRules)

	var err error
	if tk.autoCache, err = lru.New[string, []*elementOrAddOn](b.autoCacheSize); err != nil {
		panic(err)
	}
	if tk.instances, err = lru.New[string, *elementOrAddOn](b.instCacheSize); err != nil {
		panic(err)
	}
	tk.built = true

	if b.errors > 0 {
		return nil
	}
	return tk
}

func (b *toolkitBuilder) mustNotBuilt() {
	if b.tk.built {
		panic(fmt.Errorf("toolkit «%v» is already built", b.tk))
	}
}
