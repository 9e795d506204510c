/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qcatalog

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/voedger/qonfig/pkg/qdef"
	"github.com/voedger/qonfig/pkg/qparser"
)

var workspace = fstest.MapFS{
	DefaultCatalogFile: {Data: []byte(`
toolkits:
  - toolkits
promises:
  - toolkit: Lib v1.0
    type: include
    attribute: src
cache-size: 16
`)},
	"toolkits/lib.qtd": {Data: []byte(`toolkit Lib v1.0 {
		root list;
		element-def entry { value: int optional; }
		element-def list { child-def item: entry min=0 max=inf; }
		promise element-def include { attribute src: string; }
	}`)},
	"toolkits/app.qtd": {Data: []byte(`toolkit App v1.0 {
		uses lib = Lib v1.0;
		root menu;
		element-def menu extends lib:list {}
	}`)},
	"docs/menu.xml":      {Data: []byte(`<menu><entry>1</entry><include src="items/two.xml"/></menu>`)},
	"docs/items/two.xml": {Data: []byte(`<entry xmlns="Lib v1.0">2</entry>`)},
	"docs/broken.xml":    {Data: []byte(`<menu><include src="items/none.xml"/></menu>`)},
}

func TestOpen(t *testing.T) {
	require := require.New(t)

	c, err := Load(workspace, DefaultCatalogFile)
	require.NoError(err)
	require.Equal([]string{"toolkits"}, c.Toolkits)
	require.Equal(16, c.CacheSize)

	w, err := Open(workspace, c)
	require.NoError(err)
	require.Same(c, w.Catalog())
	require.Len(w.Toolkits(), 2)
	require.Equal("App v1.0", w.Toolkits()[0].Ref().String())

	lib, err := w.Toolkit(qdef.ToolkitRef{Name: "Lib", Version: qdef.Version{Major: 1}})
	require.NoError(err)
	require.Same(w.Toolkits()[1], lib)

	t.Run("document with external content", func(t *testing.T) {
		e, err := w.ParseFile(context.Background(), "docs/menu.xml", false)
		require.NoError(err)
		require.Equal("menu", e.Type().Name())
		require.Len(e.Children(), 2)
		require.Equal(int64(2), e.Children()[1].Value())
		require.Equal("docs/items/two.xml", e.Children()[1].External().Position().File)
	})

	t.Run("missing external content", func(t *testing.T) {
		_, err := w.ParseFile(context.Background(), "docs/broken.xml", false)
		require.ErrorContains(err, "items/none.xml")
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := w.ParseFile(context.Background(), "docs/none.xml", false)
		require.Error(err)
	})
}

func TestInvalidCatalog(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"no toolkits", `log-level: info`, "no toolkit directories"},
		{"bad directory", "toolkits: [../up]", "«../up» is not a valid path"},
		{"bad toolkit reference", "toolkits: [t]\npromises:\n  - toolkit: Lib\n    type: include", "promise 0"},
		{"missed type", "toolkits: [t]\npromises:\n  - toolkit: Lib v1.0", "promise 0: type is missed"},
		{"negative cache", "toolkits: [t]\ncache-size: -1", "negative cache size -1"},
		{"log level", "toolkits: [t]\nlog-level: loud", "unknown log level «loud»"},
		{"unknown field", "toolkits: [t]\ncolor: red", "color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(err, ErrInvalidCatalogError)
			require.ErrorContains(err, tt.msg)
		})
	}
}

func TestOpenFailures(t *testing.T) {
	t.Run("toolkit does not compile", func(t *testing.T) {
		require := require.New(t)
		fsys := fstest.MapFS{
			"tk/a.qtd": {Data: []byte(`toolkit A v1.0 { element-def a extends nope {} }`)},
		}
		_, err := Open(fsys, &Catalog{Toolkits: []string{"tk"}})
		require.ErrorIs(err, qdef.ErrNotFoundError)
		require.ErrorContains(err, "A v1.0")
	})

	t.Run("no sources", func(t *testing.T) {
		require := require.New(t)
		fsys := fstest.MapFS{"tk/readme.md": {Data: []byte("empty")}}
		_, err := Open(fsys, &Catalog{Toolkits: []string{"tk"}})
		require.ErrorIs(err, qparser.ErrNoSourcesError)
	})

	t.Run("promise binding", func(t *testing.T) {
		tests := []struct {
			binding PromiseBinding
			err     error
		}{
			{PromiseBinding{Toolkit: "Lib v2.0", Type: "include"}, qdef.ErrNotFoundError},
			{PromiseBinding{Toolkit: "Lib v1.0", Type: "none"}, qdef.ErrNotFoundError},
			{PromiseBinding{Toolkit: "Lib v1.0", Type: "entry"}, ErrInvalidCatalogError},
		}
		for _, tt := range tests {
			t.Run(tt.binding.Type, func(t *testing.T) {
				_, err := Open(workspace, &Catalog{Toolkits: []string{"toolkits"}, Promises: []PromiseBinding{tt.binding}})
				require.ErrorIs(t, err, tt.err)
			})
		}
	})
}
