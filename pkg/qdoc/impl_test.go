/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdoc

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voedger/qonfig/pkg/diag"
	"github.com/voedger/qonfig/pkg/qdef"
)

var baseRef = qdef.ToolkitRef{Name: "Base", Version: qdef.Version{Major: 1}}

// Builds toolkit:
//
//	add-on named { attribute name: string; }
//	element-def widget inherits named { metadata { child-def note: entry min=0 max=inf; } }
//	element-def entry { value: int optional; }
//	add-on tagged requires entry { attribute tag: string default "t"; }
//	element-def list { child-def item: entry min=0 max=inf; }
//	element-def strict-list extends list { modify child-def list.item min=1; }
//	element-def pair { child-def part: entry min=2 max=4; }
//	element-def holder { child-def a: entry; child-def b: entry min=0; }
//	element-def box { child-def w: widget min=0; child-def e: entry min=0; }
//	promise element-def include { attribute ref: string; }
//	promise element-def entry-ref extends entry { attribute ref: string; }
//	auto-inherit tagged { target role list.item; }
func testToolkit(t *testing.T) qdef.IToolkit {
	require := require.New(t)

	pos := diag.Position{File: "base.qtd", Line: 1}
	s := diag.NewSession("Base v1.0", pos)
	b := qdef.NewToolkitBuilder(baseRef, pos)

	named, err := b.AddAddOn("named", false, "", pos)
	require.NoError(err)
	_, err = named.AddAttribute("name", qdef.ValueDecl{Type: qdef.StringType}, s)
	require.NoError(err)

	widget, err := b.AddElementDef("widget", false, false, "", pos)
	require.NoError(err)
	widget.AddInherits(named)

	entry, err := b.AddElementDef("entry", false, false, "", pos)
	require.NoError(err)
	_, err = entry.SetValue(qdef.ValueDecl{Type: qdef.IntType, Specify: qdef.SpecificationType_Optional}, s)
	require.NoError(err)

	_, err = widget.AddMetaChild("note", qdef.ChildDecl{Type: entry, HasMin: true, Max: qdef.Occurs_Unbounded, HasMax: true})
	require.NoError(err)

	tagged, err := b.AddAddOn("tagged", false, "", pos)
	require.NoError(err)
	tagged.SetRequires(entry)
	_, err = tagged.AddAttribute("tag", qdef.ValueDecl{Type: qdef.StringType, Default: "t", HasDefault: true}, s)
	require.NoError(err)

	list, err := b.AddElementDef("list", false, false, "", pos)
	require.NoError(err)
	item, err := list.AddChild("item", qdef.ChildDecl{Type: entry, HasMin: true, Max: qdef.Occurs_Unbounded, HasMax: true})
	require.NoError(err)

	strict, err := b.AddElementDef("strict-list", false, false, "", pos)
	require.NoError(err)
	strict.SetSuper(list)
	require.NoError(strict.ModifyChild(item, qdef.ChildDecl{Min: 1, HasMin: true}))

	pair, err := b.AddElementDef("pair", false, false, "", pos)
	require.NoError(err)
	_, err = pair.AddChild("part", qdef.ChildDecl{Type: entry, Min: 2, HasMin: true, Max: 4, HasMax: true})
	require.NoError(err)

	holder, err := b.AddElementDef("holder", false, false, "", pos)
	require.NoError(err)
	_, err = holder.AddChild("a", qdef.ChildDecl{Type: entry})
	require.NoError(err)
	_, err = holder.AddChild("b", qdef.ChildDecl{Type: entry, HasMin: true})
	require.NoError(err)

	box, err := b.AddElementDef("box", false, false, "", pos)
	require.NoError(err)
	_, err = box.AddChild("w", qdef.ChildDecl{Type: widget, HasMin: true})
	require.NoError(err)
	_, err = box.AddChild("e", qdef.ChildDecl{Type: entry, HasMin: true})
	require.NoError(err)

	include, err := b.AddElementDef("include", false, true, "", pos)
	require.NoError(err)
	_, err = include.AddAttribute("ref", qdef.ValueDecl{Type: qdef.StringType}, s)
	require.NoError(err)

	entryRef, err := b.AddElementDef("entry-ref", false, true, "", pos)
	require.NoError(err)
	entryRef.SetSuper(entry)
	_, err = entryRef.AddAttribute("ref", qdef.ValueDecl{Type: qdef.StringType}, s)
	require.NoError(err)

	for _, r := range []qdef.IElementDef{widget, list, strict, pair, holder, box, include, entryRef} {
		require.NoError(b.AddRoot(r))
	}

	b.Freeze(s)
	_, err = b.AddAutoInheritance([]qdef.IAddOn{tagged}, []qdef.AutoInheritanceTarget{{Role: item}}, pos)
	require.NoError(err)

	tk := b.Build(s)
	require.NoError(s.Err())
	return tk
}

func parse(tk qdef.IToolkit, doc string, partial bool, opts ...Option) (qdef.IElement, error) {
	p := NewParser(nil, append([]Option{WithToolkits(tk)}, opts...)...)
	return p.Parse(context.Background(), "doc.xml", strings.NewReader(doc), partial)
}

func TestNamedWidget(t *testing.T) {
	require := require.New(t)
	tk := testToolkit(t)

	e, err := parse(tk, `<widget name="ok"/>`, false)
	require.NoError(err)
	require.Equal("Base v1.0:widget", e.Type().QualifiedName())
	require.Nil(e.Parent())
	require.False(e.IsPartial())

	v, err := e.AttributeByName("name")
	require.NoError(err)
	require.Equal("ok", v)

	v, err = e.AttributeByName("named.name")
	require.NoError(err)
	require.Equal("ok", v)

	named, err := tk.AddOn("named")
	require.NoError(err)
	require.True(e.IsInstance(named))
	require.Len(e.Attributes(), 1)
	text, ok := e.AttributeText(e.Attributes()[0])
	require.True(ok)
	require.Equal("ok", text)

	t.Run("required attribute is absent", func(t *testing.T) {
		_, err := parse(tk, `<widget/>`, false)
		require.ErrorIs(err, qdef.ErrRequiredError)
		require.ErrorContains(err, "attribute «named.name» of «Base v1.0:widget»")
	})

	t.Run("partial document skips required checks", func(t *testing.T) {
		e, err := parse(tk, `<widget/>`, true)
		require.NoError(err)
		require.True(e.IsPartial())
		v, err := e.AttributeByName("name")
		require.NoError(err)
		require.Nil(v)
	})

	t.Run("unknown attribute", func(t *testing.T) {
		_, err := parse(tk, `<widget name="ok" title="x"/>`, true)
		require.ErrorIs(err, qdef.ErrNotFoundError)
	})

	t.Run("unexpected text", func(t *testing.T) {
		_, err := parse(tk, `<widget name="ok">text</widget>`, false)
		require.ErrorIs(err, ErrUnexpectedContentError)
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := parse(tk, `<widget name="ok">`, false)
		require.ErrorIs(err, ErrMalformedError)
	})

	t.Run("root can not fulfill roles", func(t *testing.T) {
		_, err := parse(tk, `<widget role="item" name="ok"/>`, false)
		require.ErrorIs(err, ErrUnexpectedContentError)
	})
}

func TestListMultiplicity(t *testing.T) {
	require := require.New(t)
	tk := testToolkit(t)

	list, err := tk.ElementDef("list")
	require.NoError(err)
	item := list.DeclaredChildren()[0]
	tagged, err := tk.AddOn("tagged")
	require.NoError(err)

	for _, n := range []int{0, 1, 5} {
		doc := "<list>" + strings.Repeat("<entry/>", n) + "</list>"
		e, err := parse(tk, doc, false)
		require.NoError(err, doc)
		require.Len(e.Children(), n)
		require.Len(e.ChildrenFor(item), n)
	}

	e, err := parse(tk, `<list><entry>5</entry></list>`, false)
	require.NoError(err)
	entry := e.Children()[0]
	require.Equal(int64(5), entry.Value())
	require.Same(e, entry.Parent())
	require.Equal([]qdef.IChildDef{item}, entry.ParentRoles())

	t.Run("role filler auto-inherits add-on", func(t *testing.T) {
		require.True(entry.IsInstance(tagged))
		require.Equal([]qdef.IAddOn{tagged}, entry.AutoInheritance())
		require.Empty(entry.Inheritance())
		v, err := entry.AttributeByName("tag")
		require.NoError(err)
		require.Equal("t", v)
	})

	t.Run("children by role name", func(t *testing.T) {
		cc, err := e.ChildrenByRole("item")
		require.NoError(err)
		require.Len(cc, 1)
		_, err = e.ChildrenByRole("part")
		require.ErrorIs(err, qdef.ErrNotFoundError)
	})

	t.Run("modified min of extending type", func(t *testing.T) {
		_, err := parse(tk, `<strict-list/>`, false)
		require.ErrorIs(err, qdef.ErrMultiplicityError)
		require.ErrorContains(err, "role «list.item» of «Base v1.0:strict-list» expects 1..inf children, found 0")

		e, err := parse(tk, `<strict-list><entry/></strict-list>`, false)
		require.NoError(err)
		require.Len(e.ChildrenFor(item), 1)
	})

	t.Run("malformed value", func(t *testing.T) {
		_, err := parse(tk, `<list><entry>five</entry></list>`, false)
		require.Error(err)
	})
}

func TestPairMultiplicity(t *testing.T) {
	require := require.New(t)
	tk := testToolkit(t)

	for n := 1; n <= 5; n++ {
		doc := "<pair>" + strings.Repeat("<entry/>", n) + "</pair>"
		_, err := parse(tk, doc, false)
		if n >= 2 && n <= 4 {
			require.NoError(err, doc)
			continue
		}
		require.ErrorIs(err, qdef.ErrMultiplicityError, doc)
		require.ErrorContains(err, fmt.Sprintf("expects 2..4 children, found %d", n))

		_, err = parse(tk, doc, true)
		require.NoError(err, "partial %s", doc)
	}
}

func TestRoles(t *testing.T) {
	require := require.New(t)
	tk := testToolkit(t)

	t.Run("ambiguous role", func(t *testing.T) {
		_, err := parse(tk, `<holder><entry/></holder>`, false)
		require.ErrorIs(err, qdef.ErrAmbiguousError)
	})

	t.Run("explicit roles", func(t *testing.T) {
		e, err := parse(tk, `<holder><entry role="a"/><entry role="holder.b">2</entry></holder>`, false)
		require.NoError(err)
		b, err := e.ChildrenByRole("b")
		require.NoError(err)
		require.Len(b, 1)
		require.Equal(int64(2), b[0].Value())
	})

	t.Run("element fulfills several roles", func(t *testing.T) {
		e, err := parse(tk, `<holder><entry role="a, b"/></holder>`, false)
		require.NoError(err)
		require.Len(e.Children()[0].ParentRoles(), 2)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := parse(tk, `<holder><entry role="c"/></holder>`, false)
		require.ErrorIs(err, qdef.ErrNotFoundError)
	})

	t.Run("no role can be fulfilled", func(t *testing.T) {
		_, err := parse(tk, `<list><widget name="x"/></list>`, false)
		require.ErrorIs(err, qdef.ErrNotFoundError)
		require.ErrorContains(err, "no role of «Base v1.0:list» can be fulfilled by «Base v1.0:widget»")
	})
}

func TestNamespaces(t *testing.T) {
	require := require.New(t)
	tk := testToolkit(t)

	t.Run("prefixed root and attribute", func(t *testing.T) {
		e, err := parse(tk, `<b:widget xmlns:b="Base v1.0" b:named.name="x"/>`, false)
		require.NoError(err)
		v, err := e.AttributeByName("name")
		require.NoError(err)
		require.Equal("x", v)
	})

	t.Run("default namespace", func(t *testing.T) {
		e, err := parse(tk, `<widget xmlns="Base v1.0" name="y"/>`, false)
		require.NoError(err)
		require.Equal("widget", e.Type().Name())
	})

	t.Run("qualified root is not restricted by roots", func(t *testing.T) {
		e, err := parse(tk, `<b:entry xmlns:b="Base v1.0">7</b:entry>`, false)
		require.NoError(err)
		require.Equal(int64(7), e.Value())

		_, err = parse(tk, `<entry>7</entry>`, false)
		require.ErrorIs(err, qdef.ErrNotFoundError)
	})

	t.Run("unsatisfied version", func(t *testing.T) {
		_, err := parse(tk, `<b:widget xmlns:b="Base v1.5" name="x"/>`, false)
		require.ErrorIs(err, qdef.ErrNotFoundError)
	})

	t.Run("bindings are scoped by element", func(t *testing.T) {
		_, err := parse(tk, `<holder><entry role="x:holder.a" xmlns:x="Base v1.0"/><entry role="b"/></holder>`, false)
		require.NoError(err)

		_, err = parse(tk, `<holder><entry role="a" xmlns:x="Base v1.0"/><entry role="x:holder.b"/></holder>`, false)
		require.ErrorIs(err, qdef.ErrNotFoundError)
		require.ErrorContains(err, "namespace prefix «x» is not bound")
	})

	t.Run("explicit extension", func(t *testing.T) {
		e, err := parse(tk, `<b:entry xmlns:b="Base v1.0" with-extension="b:tagged" tag="z"/>`, false)
		require.NoError(err)
		tagged, _ := tk.AddOn("tagged")
		require.Equal([]qdef.IAddOn{tagged}, e.Inheritance())
		v, err := e.AttributeByName("tagged.tag")
		require.NoError(err)
		require.Equal("z", v)
	})
}

func TestPromise(t *testing.T) {
	tk := testToolkit(t)

	templates := map[string]string{
		"five":   `<b:entry xmlns:b="Base v1.0">5</b:entry>`,
		"widget": `<b:widget xmlns:b="Base v1.0" name="w"/>`,
	}
	reg := NewPromiseRegistry()
	fulfiller := PromiseFulfillerFunc(func(ctx context.Context, p Placeholder) (qdef.IElement, error) {
		ref, err := p.Element.AttributeByName("ref")
		if err != nil {
			return nil, err
		}
		content, ok := templates[ref.(string)]
		if !ok {
			return nil, fmt.Errorf("unknown reference «%v»", ref)
		}
		return p.Parser.Parse(ctx, ref.(string), strings.NewReader(content), true)
	})
	reg.Register(baseRef, "include", fulfiller)
	reg.Register(baseRef, "entry-ref", fulfiller)

	t.Run("placeholder fulfills role", func(t *testing.T) {
		require := require.New(t)
		e, err := parse(tk, `<list><include ref="five"/><entry/></list>`, false, WithPromises(reg))
		require.NoError(err)
		require.Len(e.Children(), 2)

		ch := e.Children()[0]
		require.Equal("entry", ch.Type().Name())
		require.Equal(int64(5), ch.Value())
		require.False(ch.IsPartial())
		require.Same(e, ch.Parent())

		tagged, _ := tk.AddOn("tagged")
		require.True(ch.IsInstance(tagged))

		require.NotNil(ch.Promise())
		require.Equal("include", ch.Promise().Type().Name())
		require.True(ch.Promise().IsPartial())
		require.NotNil(ch.External())
		require.True(ch.External().IsPartial())
	})

	t.Run("root placeholder", func(t *testing.T) {
		require := require.New(t)
		e, err := parse(tk, `<include ref="widget"/>`, false, WithPromises(reg))
		require.NoError(err)
		require.Equal("widget", e.Type().Name())
		v, err := e.AttributeByName("name")
		require.NoError(err)
		require.Equal("w", v)
	})

	t.Run("content does not fulfill role", func(t *testing.T) {
		require := require.New(t)
		_, err := parse(tk, `<list><include ref="widget"/></list>`, false, WithPromises(reg))
		require.ErrorIs(err, qdef.ErrIncompatibleError)
	})

	t.Run("content must be instance of placeholder super", func(t *testing.T) {
		require := require.New(t)
		e, err := parse(tk, `<entry-ref ref="five"/>`, false, WithPromises(reg))
		require.NoError(err)
		require.Equal("entry", e.Type().Name())
		require.Equal(int64(5), e.Value())
		require.Equal("entry-ref", e.Promise().Type().Name())

		_, err = parse(tk, `<entry-ref ref="widget"/>`, false, WithPromises(reg))
		require.ErrorIs(err, qdef.ErrIncompatibleError)
		require.ErrorContains(err, "doc.xml:1")
	})

	t.Run("role is inferred from placeholder super", func(t *testing.T) {
		require := require.New(t)
		e, err := parse(tk, `<box><entry-ref ref="five"/></box>`, false, WithPromises(reg))
		require.NoError(err)
		require.Len(e.Children(), 1)
		ch := e.Children()[0]
		require.Equal("entry", ch.Type().Name())
		require.Len(ch.ParentRoles(), 1)
		require.Equal("e", ch.ParentRoles()[0].Name())

		_, err = parse(tk, `<box><include ref="five"/></box>`, false, WithPromises(reg))
		require.ErrorIs(err, qdef.ErrAmbiguousError)

		e, err = parse(tk, `<box><include ref="five" role="e"/></box>`, false, WithPromises(reg))
		require.NoError(err)
		require.Equal(int64(5), e.Children()[0].Value())
	})

	t.Run("fulfiller failure", func(t *testing.T) {
		require := require.New(t)
		_, err := parse(tk, `<list><include ref="nope"/></list>`, false, WithPromises(reg))
		require.ErrorContains(err, "unknown reference «nope»")
	})

	t.Run("no fulfiller", func(t *testing.T) {
		require := require.New(t)
		_, err := parse(tk, `<list><include ref="five"/></list>`, false)
		require.ErrorIs(err, ErrNoFulfillerError)
	})
}

func TestMetadata(t *testing.T) {
	require := require.New(t)
	tk := testToolkit(t)

	w, err := tk.ElementDef("widget")
	require.NoError(err)
	note := w.DeclaredMetaChildren()[0]

	md, err := ParseMetadata(w, `<entry>1</entry><entry role="note">2</entry>`, diag.Position{File: "base.qtd", Line: 10})
	require.NoError(err)
	require.Equal(w, md.Owner())
	cc := md.ChildrenFor(note)
	require.Len(cc, 2)
	require.Equal(int64(1), cc[0].Value())
	require.Equal(int64(2), cc[1].Value())
	require.Nil(cc[0].Parent())

	t.Run("content must fulfill metadata roles", func(t *testing.T) {
		_, err := ParseMetadata(w, `<widget name="x"/>`, diag.Position{File: "base.qtd", Line: 10})
		require.ErrorIs(err, qdef.ErrNotFoundError)
	})
}
