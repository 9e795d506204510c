/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qparser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/voedger/qonfig/pkg/diag"
	"github.com/voedger/qonfig/pkg/qdef"
	"github.com/voedger/qonfig/pkg/qdoc"
)

const baseSource = `-- base widgets
toolkit Base v1.0 {
	description "Base widgets";
	value-types {
		pattern id ` + "`[a-z][a-z0-9]*`" + `;
		literal none "none";
		one-of ref (none, id);
		explicit quoted string prefix "'" suffix "'";
	}
	root widget, list, strict-list;

	add-on named {
		attribute name: string required;
	}
	element-def widget inherits named {
		description "Named widget";
		attribute title: quoted optional;
		attribute link: ref default "none";
	}
	element-def entry {
		value: int optional;
	}
	element-def list {
		child-def item: entry min=0 max=inf;
	}
	element-def strict-list extends list {
		modify child-def list.item min=1;
	}
	element-def pair {
		child-def part: entry min=2 max=4;
	}
}
`

func compileSource(t *testing.T, file, src string, provider qdef.IToolkitProvider, opts ...Option) (qdef.IToolkit, error) {
	ast, err := ParseToolkit(file, src)
	require.NoError(t, err)
	return CompileToolkit(&FileToolkitAST{FileName: file, Ast: ast}, provider, opts...)
}

func parseDoc(tk qdef.IToolkit, doc string) (qdef.IElement, error) {
	return qdoc.NewParser(nil, qdoc.WithToolkits(tk)).Parse(context.Background(), "doc.xml", strings.NewReader(doc), false)
}

func TestCompileBase(t *testing.T) {
	require := require.New(t)

	tk, err := compileSource(t, "base.qtd", baseSource, nil)
	require.NoError(err)
	require.Equal("Base v1.0", tk.Ref().String())
	require.Equal("Base widgets", tk.Description())
	require.Len(tk.Roots(), 3)
	require.Len(tk.DeclaredValueTypes(), 4)

	w, err := tk.ElementDef("widget")
	require.NoError(err)
	require.Equal("Named widget", w.Description())
	require.Equal("base.qtd", w.Position().File)
	require.Equal(15, w.Position().Line)

	t.Run("named widget", func(t *testing.T) {
		e, err := parseDoc(tk, `<widget name="ok"/>`)
		require.NoError(err)
		v, err := e.AttributeByName("name")
		require.NoError(err)
		require.Equal("ok", v)

		_, err = parseDoc(tk, `<widget/>`)
		require.ErrorIs(err, qdef.ErrRequiredError)
		require.ErrorContains(err, "named.name")
	})

	t.Run("declared value types", func(t *testing.T) {
		e, err := parseDoc(tk, `<widget name="ok" title="'hello'" link="home"/>`)
		require.NoError(err)
		title, _ := e.AttributeByName("title")
		require.Equal("hello", title)
		link, _ := e.AttributeByName("link")
		require.Equal("home", link)

		_, err = parseDoc(tk, `<widget name="ok" title="hello"/>`)
		require.Error(err)

		_, err = parseDoc(tk, `<widget name="ok" link="Home"/>`)
		require.Error(err)
	})

	t.Run("list multiplicity", func(t *testing.T) {
		for _, n := range []int{0, 1, 5} {
			e, err := parseDoc(tk, "<list>"+strings.Repeat("<entry/>", n)+"</list>")
			require.NoError(err)
			require.Len(e.Children(), n)
		}
		_, err := parseDoc(tk, `<strict-list/>`)
		require.ErrorIs(err, qdef.ErrMultiplicityError)
		_, err = parseDoc(tk, `<strict-list><entry>1</entry></strict-list>`)
		require.NoError(err)
	})
}

func TestCircularInheritance(t *testing.T) {
	tests := []struct {
		name string
		src  string
		path string
	}{
		{"extends", `toolkit Cyc v1.0 {
			element-def a extends b {}
			element-def b extends a {}
		}`, "a -> b -> a"},
		{"self", `toolkit Cyc v1.0 {
			element-def a extends a {}
		}`, "a -> a"},
		{"inherits", `toolkit Cyc v1.0 {
			add-on x inherits y {}
			add-on y inherits z {}
			add-on z inherits x {}
		}`, "x -> y -> z -> x"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			_, err := compileSource(t, "cyc.qtd", test.src, nil)
			require.ErrorIs(err, qdef.ErrCircularInheritanceError)
			require.ErrorContains(err, "circular inheritance: "+test.path)

			var ee *diag.Errors
			require.True(errors.As(err, &ee))
			require.Len(ee.Issues, 1)
		})
	}
}

func TestSpecificationLaw(t *testing.T) {
	require := require.New(t)

	tk, err := compileSource(t, "spec.qtd", `toolkit Spec v1.0 {
		add-on named {
			attribute name: string default "n";
			attribute code: string;
			attribute kind: string forbidden default "k";
		}
		element-def widget inherits named {
			modify attribute named.name description "renamed";
		}
		element-def label extends widget {
			modify attribute named.code default "c";
			modify attribute named.name;
		}
	}`, nil)
	require.NoError(err)

	w, _ := tk.ElementDef("widget")
	name, err := w.FindAttribute(nil, "name")
	require.NoError(err)
	require.Equal(qdef.SpecificationType_Optional, name.Specify())
	require.Equal("n", name.Default())
	require.Equal("renamed", name.Description())

	l, _ := tk.ElementDef("label")
	code, err := l.FindAttribute(nil, "code")
	require.NoError(err)
	require.Equal(qdef.SpecificationType_Optional, code.Specify())
	require.Equal("c", code.Default())

	name, err = l.FindAttribute(nil, "name")
	require.NoError(err)
	require.Equal(qdef.SpecificationType_Optional, name.Specify())

	code, err = w.FindAttribute(nil, "code")
	require.NoError(err)
	require.Equal(qdef.SpecificationType_Required, code.Specify())

	t.Run("forbidden requires default", func(t *testing.T) {
		_, err := compileSource(t, "spec.qtd", `toolkit Spec v1.0 {
			element-def w { attribute fixed: string forbidden; }
		}`, nil)
		require.ErrorIs(err, qdef.ErrInvalidError)
	})

	t.Run("forbidden default can not change silently", func(t *testing.T) {
		_, err := compileSource(t, "spec.qtd", `toolkit Spec v1.0 {
			element-def w { attribute fixed: string forbidden default "a"; }
			element-def v extends w { modify attribute w.fixed default "b"; }
		}`, nil)
		require.ErrorIs(err, qdef.ErrForbiddenError)
	})

	t.Run("option specified twice", func(t *testing.T) {
		_, err := compileSource(t, "spec.qtd", `toolkit Spec v1.0 {
			element-def w { attribute x: string required optional; }
		}`, nil)
		require.ErrorIs(err, qdef.ErrAlreadyExistsError)
		require.ErrorContains(err, "option «specify»")
	})
}

func TestPositions(t *testing.T) {
	require := require.New(t)

	t.Run("syntax error", func(t *testing.T) {
		_, err := ParseToolkit("bad.qtd", "toolkit Bad v1.0 {\n\telement-def {}\n}")
		require.ErrorIs(err, ErrSyntaxError)
		require.ErrorContains(err, "bad.qtd:2:")
	})

	t.Run("unresolved name", func(t *testing.T) {
		_, err := compileSource(t, "pos.qtd", "toolkit Pos v1.0 {\n\telement-def w\n\t\textends nope {}\n}", nil)
		require.ErrorIs(err, qdef.ErrNotFoundError)

		var ee *diag.Errors
		require.True(errors.As(err, &ee))
		require.Len(ee.Issues, 1)
		require.Equal("pos.qtd", ee.Issues[0].Pos.File)
		require.Equal(3, ee.Issues[0].Pos.Line)
		require.ErrorContains(err, "pos.qtd:3:")
	})

	t.Run("every error is reported", func(t *testing.T) {
		_, err := compileSource(t, "pos.qtd", `toolkit Pos v1.0 {
			element-def a extends nope {}
			element-def b { attribute x: nothing; }
			element-def c { child-def y: missing; }
		}`, nil)
		var ee *diag.Errors
		require.True(errors.As(err, &ee))
		require.Len(ee.Issues, 3)
	})
}

func TestExternalValueType(t *testing.T) {
	require := require.New(t)

	src := `toolkit Ext v1.0 {
		value-types { external color; }
		root box;
		element-def box { attribute color: color; }
	}`

	_, err := compileSource(t, "ext.qtd", src, nil)
	require.ErrorIs(err, qdef.ErrNotFoundError)
	require.ErrorContains(err, "parser of external value type «color» is not registered")

	colors := map[string]int{"red": 0xff0000, "green": 0x00ff00}
	tk, err := compileSource(t, "ext.qtd", src, nil, WithExternalType("color", func(text string) (any, error) {
		if c, ok := colors[text]; ok {
			return c, nil
		}
		return nil, fmt.Errorf("unknown color «%s»", text)
	}))
	require.NoError(err)

	e, err := parseDoc(tk, `<box color="red"/>`)
	require.NoError(err)
	v, _ := e.AttributeByName("color")
	require.Equal(0xff0000, v)

	_, err = parseDoc(tk, `<box color="blue"/>`)
	require.ErrorContains(err, "unknown color «blue»")
}

func TestValueTypeReferences(t *testing.T) {
	require := require.New(t)

	t.Run("forward references", func(t *testing.T) {
		tk, err := compileSource(t, "vt.qtd", `toolkit VT v1.0 {
			value-types {
				one-of flag (yes, boolean);
				literal yes "yes";
			}
		}`, nil)
		require.NoError(err)
		vt, err := tk.ValueType("flag")
		require.NoError(err)
		require.Equal(qdef.ValueKind_OneOf, vt.Kind())
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := compileSource(t, "vt.qtd", `toolkit VT v1.0 {
			value-types {
				one-of a (b, int);
				explicit b a prefix "#";
			}
		}`, nil)
		require.ErrorIs(err, qdef.ErrCircularInheritanceError)
		require.ErrorContains(err, "a -> b -> a")
	})
}

func TestMetadata(t *testing.T) {
	require := require.New(t)

	src := `toolkit Meta v1.0 {
		element-def note { value: string; }
		element-def widget {
			metadata { child-def notes: note min=0 max=inf; }
			meta ` + "`<note>first</note>\n<note>second</note>`" + `;
		}
		element-def button extends widget {
			metadata { modify child-def widget.notes max=1; }
		}
	}`
	tk, err := compileSource(t, "meta.qtd", src, nil)
	require.NoError(err)

	w, _ := tk.ElementDef("widget")
	notes := w.DeclaredMetaChildren()[0]
	md := w.Metadata()
	require.NotNil(md)
	cc := md.ChildrenFor(notes)
	require.Len(cc, 2)
	require.Equal("first", cc[0].Value())
	require.Equal("second", cc[1].Value())

	b, _ := tk.ElementDef("button")
	require.Equal(qdef.Occurs(1), b.MetaChild(notes).Max())
	require.NotNil(b.Metadata())
	require.Empty(b.Metadata().Children())

	t.Run("metadata content is validated", func(t *testing.T) {
		_, err := compileSource(t, "meta.qtd", `toolkit Meta v1.0 {
			element-def note { value: string; }
			element-def widget {
				metadata { child-def notes: note max=1; }
				meta `+"`<note>a</note><note>b</note>`"+`;
			}
		}`, nil)
		require.ErrorIs(err, qdef.ErrMultiplicityError)
	})
}

func TestAutoInheritance(t *testing.T) {
	require := require.New(t)

	tk, err := compileSource(t, "auto.qtd", `toolkit Auto v1.0 {
		root list;
		element-def entry {}
		add-on tagged requires entry { attribute tag: string default "t"; }
		element-def list { child-def item: entry min=0 max=inf; }
		auto-inherit tagged { target role list.item; }
	}`, nil)
	require.NoError(err)
	require.Len(tk.DeclaredAutoInheritance(), 1)

	tagged, _ := tk.AddOn("tagged")
	e, err := parseDoc(tk, `<list><entry/></list>`)
	require.NoError(err)
	require.True(e.Children()[0].IsInstance(tagged))

	t.Run("target incompatible with requirement", func(t *testing.T) {
		_, err := compileSource(t, "auto.qtd", `toolkit Auto v1.0 {
			element-def entry {}
			element-def other {}
			add-on tagged requires entry {}
			auto-inherit tagged { target type other; }
		}`, nil)
		require.ErrorIs(err, qdef.ErrIncompatibleError)
	})
}

func TestLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"core/core.qtd": {Data: []byte(`toolkit Core v1.2 {
			add-on colored requires shape { attribute color: string default "black"; }
			abstract element-def shape {}
		}`)},
		"core/core_old.qtd": {Data: []byte(`toolkit Core v1.1 {}`)},
		"ui.qtd": {Data: []byte(`toolkit UI v1.0 {
			uses core = Core v1.1;
			root circle;
			element-def circle extends core:shape inherits core:colored {
				attribute radius: int default "1";
			}
		}`)},
		"readme.md": {Data: []byte("not a toolkit")},
	}

	t.Run("dependencies", func(t *testing.T) {
		require := require.New(t)
		l := NewLoader(fsys)

		refs, err := l.Refs()
		require.NoError(err)
		require.Equal([]string{"Core v1.1", "Core v1.2", "UI v1.0"}, refsStrings(refs))

		tk, err := l.Toolkit(qdef.ToolkitRef{Name: "UI", Version: qdef.Version{Major: 1}})
		require.NoError(err)
		require.Equal(qdef.Version{Major: 1, Minor: 2}, tk.Dependency("core").Version())

		again, err := l.Toolkit(qdef.ToolkitRef{Name: "UI", Version: qdef.Version{Major: 1}})
		require.NoError(err)
		require.Same(tk, again)

		e, err := qdoc.NewParser(l).Parse(context.Background(), "doc.xml",
			strings.NewReader(`<ui:circle xmlns:ui="UI v1.0" color="red"/>`), false)
		require.NoError(err)
		color, _ := e.AttributeByName("color")
		require.Equal("red", color)
		radius, _ := e.AttributeByName("radius")
		require.Equal(int64(1), radius)

		tt, err := l.LoadAll()
		require.NoError(err)
		require.Len(tt, 3)
	})

	t.Run("version not satisfied", func(t *testing.T) {
		require := require.New(t)
		l := NewLoader(fsys)
		_, err := l.Toolkit(qdef.ToolkitRef{Name: "Core", Version: qdef.Version{Major: 1, Minor: 3}})
		require.ErrorIs(err, qdef.ErrNotFoundError)
		_, err = l.Toolkit(qdef.ToolkitRef{Name: "Core", Version: qdef.Version{Major: 2}})
		require.ErrorIs(err, qdef.ErrNotFoundError)
	})

	t.Run("dependency cycle", func(t *testing.T) {
		require := require.New(t)
		l := NewLoader(fstest.MapFS{
			"a.qtd": {Data: []byte(`toolkit A v1.0 { uses b = B v1.0; }`)},
			"b.qtd": {Data: []byte(`toolkit B v1.0 { uses a = A v1.0; }`)},
		})
		_, err := l.Toolkit(qdef.ToolkitRef{Name: "A", Version: qdef.Version{Major: 1}})
		require.ErrorIs(err, ErrDependencyCycleError)
		require.ErrorContains(err, "A v1.0 -> B v1.0 -> A v1.0")

		_, err = l.Toolkit(qdef.ToolkitRef{Name: "B", Version: qdef.Version{Major: 1}})
		require.ErrorIs(err, ErrDependencyCycleError)
	})

	t.Run("broken sources", func(t *testing.T) {
		require := require.New(t)
		l := NewLoader(fstest.MapFS{
			"d1.qtd":  {Data: []byte(`toolkit D v1.0 {}`)},
			"d2.qtd":  {Data: []byte(`toolkit D v1.0 {}`)},
			"bad.qtd": {Data: []byte(`toolkit Bad {}`)},
		})
		_, err := l.Refs()
		require.ErrorIs(err, ErrDuplicateSourceError)
		require.ErrorIs(err, ErrSyntaxError)

		_, err = l.Toolkit(qdef.ToolkitRef{Name: "D", Version: qdef.Version{Major: 1}})
		require.NoError(err)
	})

	t.Run("directories", func(t *testing.T) {
		require := require.New(t)
		refs, err := NewLoader(fsys, WithDirs("core")).Refs()
		require.NoError(err)
		require.Equal([]string{"Core v1.1", "Core v1.2"}, refsStrings(refs))

		_, err = NewLoader(fsys, WithDirs("missing")).Refs()
		require.ErrorIs(err, fs.ErrNotExist)
	})

	t.Run("no sources", func(t *testing.T) {
		_, err := NewLoader(fstest.MapFS{"readme.md": {Data: []byte("no toolkits")}}).Refs()
		require.ErrorIs(t, err, ErrNoSourcesError)
	})
}

func refsStrings(refs []qdef.ToolkitRef) []string {
	ss := make([]string, 0, len(refs))
	for _, r := range refs {
		ss = append(ss, r.String())
	}
	return ss
}

func ExampleCompileToolkit() {
	ast, err := ParseToolkit("hello.qtd", `toolkit Hello v1.0 {
		root greeting;
		element-def greeting { attribute to: string default "world"; }
	}`)
	if err != nil {
		panic(err)
	}
	tk, err := CompileToolkit(&FileToolkitAST{FileName: "hello.qtd", Ast: ast}, nil)
	if err != nil {
		panic(err)
	}
	e, err := qdoc.NewParser(nil, qdoc.WithToolkits(tk)).Parse(context.Background(), "doc.xml", strings.NewReader(`<greeting/>`), false)
	if err != nil {
		panic(err)
	}
	to, _ := e.AttributeByName("to")
	fmt.Println(tk.Ref(), e.Type().Name(), to)
	// Output: Hello v1.0 greeting world
}
