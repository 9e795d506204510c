/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import (
	"errors"
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/voedger/qonfig/pkg/diag"
)

func TestBuiltinValueTypes(t *testing.T) {
	require := require.New(t)

	s := diag.NewSession("test", diag.Position{File: "test"})

	require.Equal("abc", StringType.Parse("abc", s))
	require.Equal(true, BooleanType.Parse("true", s))
	require.Equal(false, BooleanType.Parse("false", s))
	require.Equal(int64(-42), IntType.Parse("-42", s))
	require.NoError(s.Err())

	require.Equal(NoValue, BooleanType.Parse("yes", s))
	require.Equal(NoValue, IntType.Parse("4x", s))
	require.Equal(2, s.ErrorCount())
	require.ErrorIs(s.Err(), ErrInvalidError)

	t.Run("nil reporter discards problems", func(t *testing.T) {
		require.Equal(NoValue, IntType.Parse("", nil))
	})

	require.Len(BuiltinValueTypes(), 3)
	for _, vt := range BuiltinValueTypes() {
		require.False(vt.Position().IsValid())
	}
}

func TestPatternType(t *testing.T) {
	require := require.New(t)

	id, err := NewPatternType("id", `[a-z]+[0-9]*`, diag.Position{})
	require.NoError(err)
	require.Equal(ValueKind_Pattern, id.Kind())

	s := diag.NewSession("test", diag.Position{File: "doc.xml", Line: 3})
	require.Equal("abc12", id.Parse("abc12", s))
	require.NoError(s.Err())

	t.Run("pattern is anchored", func(t *testing.T) {
		require.False(id.Matches("12abc"))
		require.False(id.Matches("abc-"))
		require.Equal(NoValue, id.Parse("abc-", s))
		require.EqualError(s.Err(), "doc.xml:3: not valid: value «abc-» does not match pattern «[a-z]+[0-9]*» of «id»")
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := NewPatternType("bad", `[a-`, diag.Position{})
		require.ErrorIs(err, ErrInvalidError)
	})
}

func TestOneOfType(t *testing.T) {
	require := require.New(t)

	yes := NewLiteralType("yes", "yes", diag.Position{})
	flag, err := NewOneOfType("flag", []IValueType{yes, BooleanType, IntType}, diag.Position{})
	require.NoError(err)

	tests := []struct {
		text string
		want any
	}{
		{"yes", "yes"},
		{"true", true},
		{"17", int64(17)},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s := diag.NewSession("test", diag.Position{})
			v := flag.Parse(tt.text, s)
			require.NoError(s.Err())
			require.Equal(tt.want, v)
			require.Equal(tt.text, flag.Format(v))
			require.Equal(v, flag.Parse(flag.Format(v), nil))
		})
	}

	t.Run("first match wins", func(t *testing.T) {
		anyOf, err := NewOneOfType("any", []IValueType{StringType, IntType}, diag.Position{})
		require.NoError(err)
		require.Equal("17", anyOf.Parse("17", nil))
	})

	t.Run("no match", func(t *testing.T) {
		s := diag.NewSession("test", diag.Position{})
		require.Equal(NoValue, flag.Parse("no", s))
		require.EqualError(s.Err(), "not valid: value «no» does not match any of «flag» (yes, boolean, int) alternatives")
	})

	_, err = NewOneOfType("empty", nil, diag.Position{})
	require.ErrorIs(err, ErrInvalidError)
}

func TestExplicitType(t *testing.T) {
	require := require.New(t)

	quoted, err := NewExplicitType("quoted", IntType, "'", "'", diag.Position{})
	require.NoError(err)

	s := diag.NewSession("test", diag.Position{})
	require.Equal(int64(5), quoted.Parse("'5'", s))
	require.Equal("'5'", quoted.Format(int64(5)))
	require.True(quoted.Matches("'5'"))
	require.False(quoted.Matches("5"))
	require.False(quoted.Matches("'"))
	require.NoError(s.Err())

	require.Equal(NoValue, quoted.Parse("5'", s))
	require.Equal(NoValue, quoted.Parse("'x'", s))
	require.Equal(2, s.ErrorCount())

	_, err = NewExplicitType("none", StringType, "", "", diag.Position{})
	require.ErrorIs(err, ErrInvalidError)
}

func TestExternalType(t *testing.T) {
	require := require.New(t)

	errNotColor := errors.New("not a color")
	color, err := NewExternalType("color", func(text string) (any, error) {
		if !strings.HasPrefix(text, "#") {
			return nil, errNotColor
		}
		return strings.ToUpper(text), nil
	}, diag.Position{})
	require.NoError(err)

	s := diag.NewSession("test", diag.Position{})
	require.Equal("#FFAA00", color.Parse("#ffaa00", s))
	require.NoError(s.Err())

	require.Equal(NoValue, color.Parse("red", s))
	require.ErrorIs(s.Err(), ErrInvalidError)
	require.EqualError(s.Err(), "not valid: value «red» of «color»: not a color")

	_, err = NewExternalType("nil", nil, diag.Position{})
	require.Error(err)
}

func TestFormatParseRoundTrip(t *testing.T) {
	require := require.New(t)

	quoted, err := NewExplicitType("quoted", StringType, "'", "'", diag.Position{})
	require.NoError(err)
	cents, err := NewExplicitType("cents", IntType, "", "c", diag.Position{})
	require.NoError(err)

	s := diag.NewSession("test", diag.Position{})
	f := fuzz.New()
	var v struct {
		str  string
		num  int64
		flag bool
	}
	for i := 0; i < 1000; i++ {
		f.Fuzz(&v)
		require.Equal(v.str, StringType.Parse(StringType.Format(v.str), s))
		require.Equal(v.str, quoted.Parse(quoted.Format(v.str), s))
		require.Equal(v.num, IntType.Parse(IntType.Format(v.num), s))
		require.Equal(v.num, cents.Parse(cents.Format(v.num), s))
		require.Equal(v.flag, BooleanType.Parse(BooleanType.Format(v.flag), s))
	}
	require.NoError(s.Err())
}
