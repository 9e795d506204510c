/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qparser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/untillpro/goutils/logger"
	"golang.org/x/exp/slices"

	"github.com/voedger/qonfig/pkg/diag"
	"github.com/voedger/qonfig/pkg/qdef"
	"github.com/voedger/qonfig/pkg/qdoc"
)

type edgeKind uint8

const (
	edgeKind_Extends edgeKind = iota
	edgeKind_Requires
	edgeKind_Inherits
)

// Hierarchy edge of declared type
type edge struct {
	kind    edgeKind
	ref     RefAST
	target  qdef.IElementOrAddOn
	local   *typeContext
	dropped bool
}

type typeContext struct {
	stmt    *TypeStmt
	builder qdef.ITypeBuilder
	s       *diag.Session
	edges   []edge

	// same toolkit parents, resolved before type in each stage
	parents []*typeContext
}

type buildContext struct {
	file     *FileToolkitAST
	provider qdef.IToolkitProvider
	opts     *options
	s        *diag.Session
	b        qdef.IToolkitBuilder
	types    []*typeContext
	byName   map[string]*typeContext
	tk       qdef.IToolkit
}

func newBuildContext(file *FileToolkitAST, provider qdef.IToolkitProvider, opts *options) (*buildContext, error) {
	ref, err := file.Ast.Ref()
	if err != nil {
		return nil, err
	}
	pos := position(file.Ast.Pos)
	return &buildContext{
		file:     file,
		provider: provider,
		opts:     opts,
		s:        diag.NewSession(ref.String(), pos),
		b:        qdef.NewToolkitBuilderWithCaches(ref, pos, opts.autoCacheSize, opts.instanceCacheSize),
		types:    make([]*typeContext, 0),
		byName:   make(map[string]*typeContext),
	}, nil
}

type buildFunc func()

func (c *buildContext) build() (qdef.IToolkit, error) {
	if logger.IsVerbose() {
		logger.Verbose("compiling toolkit", c.b.Ref(), "from", c.file.FileName)
	}

	var steps = []buildFunc{
		c.header,
		c.valueTypes,
		c.stubs,
		c.edges,
		c.roots,
		c.attributes,
		c.attributeMods,
		c.children,
		c.childMods,
		c.metaChildren,
		c.metaMods,
		c.freeze,
		c.autoInheritance,
		c.finish,
		c.metadata,
	}
	for _, step := range steps {
		step()
	}

	c.s.LogWarnings()
	if err := c.s.Err(); err != nil {
		return nil, err
	}
	if logger.IsVerbose() {
		logger.Verbose("toolkit", c.b.Ref(), "compiled,", len(c.types), "types declared")
	}
	return c.tk, nil
}

// Applies description and dependencies of toolkit
func (c *buildContext) header() {
	descr := false
	for _, item := range c.file.Ast.Items {
		switch {
		case item.Description != nil:
			if descr {
				c.s.ErrorAt(position(item.Description.Pos), qdef.ErrAlreadyExists("description of «%v»", c.b.Ref()))
				continue
			}
			descr = true
			c.b.SetDescription(item.Description.Text)
		case item.Uses != nil:
			c.uses(item.Uses)
		}
	}
}

func (c *buildContext) uses(u *UsesStmt) {
	s := c.s.For(u.Alias, position(u.Pos))
	v, err := qdef.ParseVersion(u.Version)
	if err != nil {
		s.Error(err)
		return
	}
	ref := qdef.ToolkitRef{Name: u.Name, Version: v}
	if c.provider == nil {
		s.Error(qdef.ErrNotFound("toolkit «%v», no toolkit provider", ref))
		return
	}
	dep, err := c.provider.Toolkit(ref)
	if err != nil {
		s.Merge(err)
		return
	}
	if err := c.b.AddDependency(u.Alias, dep); err != nil {
		s.Error(err)
	}
}

// Declares value types. Value types may refer to each other in any order.
func (c *buildContext) valueTypes() {
	decls := make(map[string]*ValueTypeStmt)
	order := make([]*ValueTypeStmt, 0)
	for _, item := range c.file.Ast.Items {
		if item.ValueTypes == nil {
			continue
		}
		for i := range item.ValueTypes.Items {
			st := &item.ValueTypes.Items[i]
			name, pos := st.name()
			if _, ok := decls[name]; ok {
				c.s.ErrorAt(position(pos), qdef.ErrAlreadyExists("value type «%s» in «%v»", name, c.b.Ref()))
				continue
			}
			decls[name] = st
			order = append(order, st)
		}
	}

	resolved := make(map[string]qdef.IValueType)
	path := make([]string, 0)

	var resolve func(st *ValueTypeStmt) qdef.IValueType

	ref := func(r RefAST, s *diag.Session) qdef.IValueType {
		if d, ok := decls[r.Head]; ok && r.Tail == "" {
			if i := slices.Index(path, r.Head); i >= 0 {
				s.ErrorAt(position(r.Pos), qdef.ErrCircularInheritance(strings.Join(append(slices.Clone(path[i:]), r.Head), pathSeparator)))
				return nil
			}
			return resolve(d)
		}
		vt, err := c.b.ValueType(r.String())
		if err != nil {
			s.ErrorAt(position(r.Pos), err)
			return nil
		}
		return vt
	}

	resolve = func(st *ValueTypeStmt) qdef.IValueType {
		name, lpos := st.name()
		if vt, ok := resolved[name]; ok {
			return vt
		}
		pos := position(lpos)
		s := c.s.For(name, pos)

		path = append(path, name)
		defer func() { path = path[:len(path)-1] }()

		var (
			vt  qdef.IValueType
			err error
		)
		switch {
		case st.Pattern != nil:
			vt, err = qdef.NewPatternType(name, st.Pattern.Pattern, pos)
		case st.Literal != nil:
			vt = qdef.NewLiteralType(name, st.Literal.Literal, pos)
		case st.OneOf != nil:
			alts := make([]qdef.IValueType, 0, len(st.OneOf.Alternatives))
			for _, r := range st.OneOf.Alternatives {
				if a := ref(r, s); a != nil {
					alts = append(alts, a)
				}
			}
			if len(alts) == len(st.OneOf.Alternatives) {
				vt, err = qdef.NewOneOfType(name, alts, pos)
			}
		case st.Explicit != nil:
			if w := ref(st.Explicit.Wrapped, s); w != nil {
				vt, err = qdef.NewExplicitType(name, w, st.Explicit.Prefix, st.Explicit.Suffix, pos)
			}
		default:
			if p, ok := c.opts.externals[name]; ok {
				vt, err = qdef.NewExternalType(name, p, pos)
			} else {
				err = qdef.ErrNotFound("parser of external value type «%s» is not registered", name)
			}
		}
		if err != nil {
			s.Error(err)
			vt = nil
		}
		if vt != nil {
			if err := c.b.AddValueType(vt); err != nil {
				s.Error(err)
			}
		}
		resolved[name] = vt
		return vt
	}

	for _, st := range order {
		resolve(st)
	}
}

// Stage 1: declares type stubs
func (c *buildContext) stubs() {
	for _, item := range c.file.Ast.Items {
		st := item.Type
		if st == nil {
			continue
		}
		pos := position(st.Pos)
		s := c.s.For(st.Name, pos)

		var (
			b   qdef.ITypeBuilder
			err error
		)
		if st.isAddOn() {
			if st.Promise {
				s.Error(qdef.ErrInvalid("add-on «%s» can not be promise", st.Name))
			}
			b, err = c.b.AddAddOn(st.Name, st.Abstract, typeDescription(st), pos)
		} else {
			b, err = c.b.AddElementDef(st.Name, st.Abstract, st.Promise, typeDescription(st), pos)
		}
		if err != nil {
			s.Error(err)
			continue
		}
		t := &typeContext{stmt: st, builder: b, s: s}
		c.types = append(c.types, t)
		c.byName[st.Name] = t
	}
}

// Stage 2: resolves extends, requires and inherits edges, drops edges which close cycles
func (c *buildContext) edges() {
	for _, t := range c.types {
		st := t.stmt
		if st.Extends != nil {
			if st.isAddOn() {
				t.s.ErrorAt(position(st.Extends.Pos), qdef.ErrInvalid("add-on «%s» can not extend element-def, use requires", st.Name))
			} else {
				c.addEdge(t, edgeKind_Extends, *st.Extends)
			}
		}
		if st.Requires != nil {
			if st.isAddOn() {
				c.addEdge(t, edgeKind_Requires, *st.Requires)
			} else {
				t.s.ErrorAt(position(st.Requires.Pos), qdef.ErrInvalid("element-def «%s» can not require element-def, use extends", st.Name))
			}
		}
		for _, r := range st.Inherits {
			c.addEdge(t, edgeKind_Inherits, r)
		}
	}

	const (
		unvisited = iota
		onPath
		visited
	)
	state := make(map[*typeContext]int, len(c.types))
	path := make([]*typeContext, 0)
	var visit func(t *typeContext)
	visit = func(t *typeContext) {
		state[t] = onPath
		path = append(path, t)
		for i := range t.edges {
			e := &t.edges[i]
			if e.local == nil {
				continue
			}
			switch state[e.local] {
			case onPath:
				e.dropped = true
				t.s.ErrorAt(position(e.ref.Pos), qdef.ErrCircularInheritance(cyclePath(path, e.local)))
			case unvisited:
				visit(e.local)
			}
		}
		path = path[:len(path)-1]
		state[t] = visited
	}
	for _, t := range c.types {
		if state[t] == unvisited {
			visit(t)
		}
	}

	for _, t := range c.types {
		for _, e := range t.edges {
			if e.dropped {
				continue
			}
			switch e.kind {
			case edgeKind_Extends:
				t.builder.(qdef.IElementBuilder).SetSuper(e.target.(qdef.IElementDef))
			case edgeKind_Requires:
				t.builder.(qdef.IAddOnBuilder).SetRequires(e.target.(qdef.IElementDef))
			default:
				t.builder.AddInherits(e.target.(qdef.IAddOn))
			}
			if e.local != nil && !slices.Contains(t.parents, e.local) {
				t.parents = append(t.parents, e.local)
			}
		}
	}
}

func (c *buildContext) addEdge(t *typeContext, kind edgeKind, ref RefAST) {
	var (
		target qdef.IElementOrAddOn
		err    error
	)
	if kind == edgeKind_Inherits {
		target, err = c.addOn(ref)
	} else {
		target, err = c.elementDef(ref)
	}
	if err != nil {
		t.s.ErrorAt(position(ref.Pos), err)
		return
	}
	var local *typeContext
	if l, ok := c.byName[target.Name()]; ok && target.Toolkit().Ref() == c.b.Ref() {
		local = l
	}
	t.edges = append(t.edges, edge{kind: kind, ref: ref, target: target, local: local})
}

// Declares roots of documents
func (c *buildContext) roots() {
	for _, item := range c.file.Ast.Items {
		if item.Root == nil {
			continue
		}
		for _, r := range item.Root.Types {
			e, err := c.elementDef(r)
			if err == nil {
				err = c.b.AddRoot(e)
			}
			if err != nil {
				c.s.ErrorAt(position(r.Pos), err)
			}
		}
	}
}

// Walks types depth first, parents before descendants
func (c *buildContext) walk(stage func(t *typeContext)) {
	done := make(map[*typeContext]bool, len(c.types))
	var visit func(t *typeContext)
	visit = func(t *typeContext) {
		if done[t] {
			return
		}
		done[t] = true
		for _, p := range t.parents {
			visit(p)
		}
		stage(t)
	}
	for _, t := range c.types {
		visit(t)
	}
}

// Stage 3: declares attributes and values
func (c *buildContext) attributes() {
	c.walk(func(t *typeContext) {
		for _, item := range t.stmt.Items {
			switch {
			case item.Attribute != nil:
				a := item.Attribute
				s := t.s.For(a.Name, position(a.Pos))
				decl, ok := c.valueDecl(&a.Type, a.Opts, a.Pos, "attribute «"+a.Name+"»", s)
				if !ok {
					continue
				}
				if _, err := t.builder.AddAttribute(a.Name, decl, s); err != nil {
					s.Error(err)
				}
			case item.Value != nil:
				v := item.Value
				s := t.s.For(valueSessionName, position(v.Pos))
				decl, ok := c.valueDecl(&v.Type, v.Opts, v.Pos, "value", s)
				if !ok {
					continue
				}
				if _, err := t.builder.SetValue(decl, s); err != nil {
					s.Error(err)
				}
			}
		}
	})
}

// Stage 4: modifies inherited attributes and values, resolves effective attributes
func (c *buildContext) attributeMods() {
	c.walk(func(t *typeContext) {
		for _, item := range t.stmt.Items {
			switch {
			case item.ModifyAttr != nil:
				ma := item.ModifyAttr
				s := t.s.For(ma.Member.String(), position(ma.Pos))
				attr, err := findMember(c, t, ma.Member, qdef.IElementOrAddOn.FindAttribute)
				if err != nil {
					s.ErrorAt(position(ma.Member.Pos), err)
					continue
				}
				decl, ok := c.valueDecl(ma.Type, ma.Opts, ma.Pos, "attribute «"+ma.Member.String()+"»", s)
				if !ok {
					continue
				}
				if err := t.builder.ModifyAttribute(attr, decl); err != nil {
					s.Error(err)
				}
			case item.ModifyValue != nil:
				mv := item.ModifyValue
				s := t.s.For(valueSessionName, position(mv.Pos))
				decl, ok := c.valueDecl(mv.Type, mv.Opts, mv.Pos, "value", s)
				if !ok {
					continue
				}
				if err := t.builder.ModifyValue(decl); err != nil {
					s.Error(err)
				}
			}
		}
		t.builder.ResolveAttributes(t.s)
	})
}

// Stage 5: declares child roles
func (c *buildContext) children() {
	c.walk(func(t *typeContext) {
		for _, item := range t.stmt.Items {
			if item.Child != nil {
				c.addChild(t, item.Child, t.builder.AddChild)
			}
		}
	})
}

// Stage 6: modifies inherited roles, resolves effective roles
func (c *buildContext) childMods() {
	c.walk(func(t *typeContext) {
		for _, item := range t.stmt.Items {
			if item.ModifyChild != nil {
				c.modifyChild(t, item.ModifyChild, qdef.IElementOrAddOn.FindChild, t.builder.ModifyChild)
			}
		}
		t.builder.ResolveChildren(t.s)
	})
}

// Stage 7: declares metadata roles
func (c *buildContext) metaChildren() {
	c.walk(func(t *typeContext) {
		for _, item := range t.stmt.Items {
			if item.Metadata == nil {
				continue
			}
			for _, mi := range item.Metadata.Items {
				if mi.Child != nil {
					c.addChild(t, mi.Child, t.builder.AddMetaChild)
				}
			}
		}
	})
}

// Stage 8: modifies inherited metadata roles, resolves effective metadata roles
func (c *buildContext) metaMods() {
	c.walk(func(t *typeContext) {
		for _, item := range t.stmt.Items {
			if item.Metadata == nil {
				continue
			}
			for _, mi := range item.Metadata.Items {
				if mi.Modify != nil {
					c.modifyChild(t, mi.Modify, qdef.IElementOrAddOn.FindMetaChild, t.builder.ModifyMetaChild)
				}
			}
		}
		t.builder.ResolveMetaChildren(t.s)
	})
}

// Stage 9: validates types and computes toolkit closure
func (c *buildContext) freeze() {
	c.b.Freeze(c.s)
}

// Declares auto-inheritance rules
func (c *buildContext) autoInheritance() {
	for _, item := range c.file.Ast.Items {
		a := item.AutoInherit
		if a == nil {
			continue
		}
		pos := position(a.Pos)
		s := c.s.For("auto-inherit", pos)
		ok := true

		addOns := make([]qdef.IAddOn, 0, len(a.AddOns))
		for _, r := range a.AddOns {
			addOn, err := c.addOn(r)
			if err != nil {
				s.ErrorAt(position(r.Pos), err)
				ok = false
				continue
			}
			addOns = append(addOns, addOn)
		}

		targets := make([]qdef.AutoInheritanceTarget, 0, len(a.Targets))
		for _, ts := range a.Targets {
			var trg qdef.AutoInheritanceTarget
			if ts.Type != nil {
				typ, err := c.b.Type(ts.Type.String())
				if err != nil {
					s.ErrorAt(position(ts.Type.Pos), err)
					ok = false
					continue
				}
				trg.Type = typ
			}
			if ts.Role != nil {
				owner, err := c.b.Type(ts.Role.Owner.String())
				if err == nil {
					trg.Role, err = owner.FindChild(nil, ts.Role.Name)
				}
				if err != nil {
					s.ErrorAt(position(ts.Role.Pos), err)
					ok = false
					continue
				}
			}
			if trg.Type == nil && trg.Role == nil {
				s.ErrorAt(position(ts.Pos), qdef.ErrInvalid("auto-inheritance target without type and role"))
				ok = false
				continue
			}
			targets = append(targets, trg)
		}

		if !ok {
			continue
		}
		if _, err := c.b.AddAutoInheritance(addOns, targets, pos); err != nil {
			s.Error(err)
		}
	}
}

func (c *buildContext) finish() {
	c.tk = c.b.Build(c.s)
}

// Parses metadata content of types against their metadata roles
func (c *buildContext) metadata() {
	if c.tk == nil {
		return
	}
	for _, t := range c.types {
		var meta *MetaStmt
		for _, item := range t.stmt.Items {
			if item.Meta == nil {
				continue
			}
			if meta != nil {
				t.s.ErrorAt(position(item.Meta.Pos), qdef.ErrAlreadyExists("metadata content of «%v»", t.builder))
				continue
			}
			meta = item.Meta
		}
		if meta == nil && len(t.builder.MetaChildren()) == 0 {
			continue
		}

		content, pos := "", t.stmt.Pos
		if meta != nil {
			content, pos = meta.Content, meta.Pos
		}
		md, err := qdoc.ParseMetadata(t.builder, content, position(pos))
		if err != nil {
			t.s.Merge(err)
			continue
		}
		t.builder.SetMetadata(md)
	}
}

func (c *buildContext) elementDef(r RefAST) (qdef.IElementDef, error) {
	t, err := c.b.Type(r.String())
	if err != nil {
		return nil, err
	}
	if t.Kind() != qdef.TypeKind_ElementDef {
		return nil, qdef.ErrNotFound("element-def «%v», found add-on «%v»", r, t)
	}
	return t.(qdef.IElementDef), nil
}

func (c *buildContext) addOn(r RefAST) (qdef.IAddOn, error) {
	t, err := c.b.Type(r.String())
	if err != nil {
		return nil, err
	}
	if t.Kind() != qdef.TypeKind_AddOn {
		return nil, qdef.ErrNotFound("add-on «%v», found element-def «%v»", r, t)
	}
	return t.(qdef.IAddOn), nil
}

// Returns type, which declares member: type itself, one of known types or qualified type of dependency
func (c *buildContext) memberOwner(t *typeContext, r RefAST) (qdef.IElementOrAddOn, error) {
	if r.Tail != "" {
		return c.b.Type(r.String())
	}
	if r.Head == t.stmt.Name {
		return t.builder, nil
	}
	return t.builder.KnownType(r.Head)
}

func findMember[M any](c *buildContext, t *typeContext, r MemberRefAST, find func(qdef.IElementOrAddOn, qdef.IElementOrAddOn, string) (M, error)) (M, error) {
	owner, err := c.memberOwner(t, r.Owner)
	if err != nil {
		var zero M
		return zero, err
	}
	return find(t.builder, owner, r.Name)
}

// Builds declaration of attribute or value. Returns false if declaration is malformed.
func (c *buildContext) valueDecl(typ *RefAST, opts []ValueOpt, pos lexer.Position, what string, s *diag.Session) (qdef.ValueDecl, bool) {
	decl := qdef.ValueDecl{Pos: position(pos)}
	ok := true
	if typ != nil {
		vt, err := c.b.ValueType(typ.String())
		if err != nil {
			s.ErrorAt(position(typ.Pos), err)
			ok = false
		}
		decl.Type = vt
	}
	seen := make(map[string]bool, len(opts))
	for _, o := range opts {
		name := o.name()
		if seen[name] {
			s.ErrorAt(position(o.Pos), errDuplicateOption(what, name))
			ok = false
			continue
		}
		seen[name] = true
		switch {
		case o.Specify != "":
			spec, err := qdef.ParseSpecificationType(o.Specify)
			if err != nil {
				s.ErrorAt(position(o.Pos), err)
				ok = false
				continue
			}
			decl.Specify = spec
		case o.Default != nil:
			decl.Default, decl.HasDefault = *o.Default, true
		case o.Description != nil:
			decl.Description = *o.Description
		}
	}
	return decl, ok
}

// Builds declaration of child role. Returns false if declaration is malformed.
func (c *buildContext) childDecl(typ *RefAST, opts []ChildOpt, pos lexer.Position, what string, s *diag.Session) (qdef.ChildDecl, bool) {
	decl := qdef.ChildDecl{Pos: position(pos)}
	ok := true
	if typ != nil {
		t, err := c.b.Type(typ.String())
		if err != nil {
			s.ErrorAt(position(typ.Pos), err)
			ok = false
		}
		decl.Type = t
	}
	addOns := func(rr []RefAST) []qdef.IAddOn {
		aa := make([]qdef.IAddOn, 0, len(rr))
		for _, r := range rr {
			a, err := c.addOn(r)
			if err != nil {
				s.ErrorAt(position(r.Pos), err)
				ok = false
				continue
			}
			aa = append(aa, a)
		}
		return aa
	}
	seen := make(map[string]bool, len(opts))
	for _, o := range opts {
		name := o.name()
		if seen[name] {
			s.ErrorAt(position(o.Pos), errDuplicateOption(what, name))
			ok = false
			continue
		}
		seen[name] = true
		switch {
		case o.Min != nil:
			occ, err := qdef.ParseOccurs(*o.Min)
			if err != nil {
				s.ErrorAt(position(o.Pos), err)
				ok = false
				continue
			}
			decl.Min, decl.HasMin = occ, true
		case o.Max != nil:
			occ, err := qdef.ParseOccurs(*o.Max)
			if err != nil {
				s.ErrorAt(position(o.Pos), err)
				ok = false
				continue
			}
			decl.Max, decl.HasMax = occ, true
		case len(o.Inherits) > 0:
			decl.Inherits = addOns(o.Inherits)
		case len(o.Requires) > 0:
			decl.Requires = addOns(o.Requires)
		case o.Description != nil:
			decl.Description = *o.Description
		}
	}
	return decl, ok
}

func (c *buildContext) addChild(t *typeContext, cs *ChildStmt, add func(string, qdef.ChildDecl) (qdef.IChildDef, error)) {
	s := t.s.For(cs.Name, position(cs.Pos))
	decl, ok := c.childDecl(&cs.Type, cs.Opts, cs.Pos, "role «"+cs.Name+"»", s)
	if !ok {
		return
	}
	if _, err := add(cs.Name, decl); err != nil {
		s.Error(err)
	}
}

func (c *buildContext) modifyChild(t *typeContext, ms *ModifyChildStmt,
	find func(qdef.IElementOrAddOn, qdef.IElementOrAddOn, string) (qdef.IChildDef, error),
	modify func(qdef.IChildDef, qdef.ChildDecl) error) {
	s := t.s.For(ms.Member.String(), position(ms.Pos))
	child, err := findMember(c, t, ms.Member, find)
	if err != nil {
		s.ErrorAt(position(ms.Member.Pos), err)
		return
	}
	decl, ok := c.childDecl(ms.Type, ms.Opts, ms.Pos, "role «"+ms.Member.String()+"»", s)
	if !ok {
		return
	}
	if err := modify(child, decl); err != nil {
		s.Error(err)
	}
}

func compile(file *FileToolkitAST, provider qdef.IToolkitProvider, opts *options) (qdef.IToolkit, error) {
	c, err := newBuildContext(file, provider, opts)
	if err != nil {
		return nil, err
	}
	return c.build()
}
