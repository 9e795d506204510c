/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package diag

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	require := require.New(t)

	errTest := errors.New("test error")

	root := NewSession("Base v1.0", Position{File: "base.qtd"})
	widget := root.For("widget", Position{File: "base.qtd", Line: 3, Column: 5})
	name := widget.For("name", Position{})

	require.NoError(root.Err())

	name.Warning("unused default")
	require.False(root.HasErrors())
	require.NoError(root.Err())
	require.Equal(1, root.WarningCount())

	name.Error(errTest)
	root.ErrorAt(Position{File: "base.qtd", Line: 10, Column: 1}, errors.New("unexpected end"))

	require.True(root.HasErrors())
	require.True(widget.HasErrors())
	require.Equal(2, root.ErrorCount())
	require.Equal(1, widget.ErrorCount())

	t.Run("issues are listed depth first", func(t *testing.T) {
		ii := root.Issues()
		require.Len(ii, 3)
		require.Equal("unexpected end", ii[0].Message)
		require.Equal(SeverityWarning, ii[1].Severity)
		require.Equal("Base v1.0/widget/name", ii[1].Path)
		require.Equal(Position{File: "base.qtd", Line: 3, Column: 5}, ii[2].Pos)
	})

	t.Run("aggregate failure lists errors only", func(t *testing.T) {
		err := root.Err()
		require.EqualError(err, strings.Join([]string{
			"base.qtd:10:1: unexpected end",
			"base.qtd:3:5: test error",
		}, "\n"))
		require.ErrorIs(err, errTest)

		var e *Errors
		require.ErrorAs(err, &e)
		require.Len(e.Issues, 2)
	})

	t.Run("child failure is local", func(t *testing.T) {
		require.EqualError(widget.Err(), "base.qtd:3:5: test error")
	})
}

func TestIssueReportedAsError(t *testing.T) {
	require := require.New(t)

	s := NewSession("doc", Position{File: "doc.xml", Line: 1})
	s.Error(Issue{Severity: SeverityError, Message: "nested", Pos: Position{File: "ext.xml", Line: 2}})
	s.Error(Issue{Severity: SeverityError, Message: "unpositioned"})

	require.EqualError(s.Err(), "ext.xml:2: nested\ndoc.xml:1: unpositioned")
}

func TestMerge(t *testing.T) {
	require := require.New(t)

	ext := NewSession("ext", Position{File: "ext.xml"})
	ext.ErrorAt(Position{File: "ext.xml", Line: 4}, errors.New("bad reference"))

	s := NewSession("doc", Position{File: "doc.xml", Line: 1})
	s.Merge(ext.Err())
	s.Merge(errors.New("plain"))

	require.Equal(2, s.ErrorCount())
	require.EqualError(s.Err(), "ext.xml:4: bad reference\ndoc.xml:1: plain")
}

func TestPosition(t *testing.T) {
	require := require.New(t)

	require.Equal("", Position{}.String())
	require.False(Position{}.IsValid())
	require.Equal("a.qtd", Position{File: "a.qtd"}.String())
	require.Equal("a.qtd:1", Position{File: "a.qtd", Line: 1}.String())
	require.Equal("a.qtd:1:7", Position{File: "a.qtd", Line: 1, Column: 7}.String())

	require.Equal("warning", SeverityWarning.String())
	require.Equal("Severity(42)", Severity(42).String())
}
