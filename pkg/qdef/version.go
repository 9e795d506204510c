/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

func (v Version) String() string { return fmt.Sprintf("v%d.%d", v.Major, v.Minor) }

// Returns is version compatible with requested one: same major and not less minor.
func (v Version) Satisfies(req Version) bool {
	return v.Major == req.Major && v.Minor >= req.Minor
}

func (r ToolkitRef) String() string { return fmt.Sprintf("%s %v", r.Name, r.Version) }

type toolkitRefAST struct {
	Name    string `parser:"@Ident"`
	Version string `parser:"@Version"`
}

var toolkitRefParser = participle.MustBuild[toolkitRefAST](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Version", Pattern: `v\d+\.\d+`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_\-]*`},
		{Name: "Whitespace", Pattern: `\s+`},
	})),
	participle.Elide("Whitespace"),
)

// Parses "Name vMajor.Minor" toolkit reference.
func ParseToolkitRef(s string) (ToolkitRef, error) {
	ast, err := toolkitRefParser.ParseString("", s)
	if err != nil {
		return ToolkitRef{}, ErrInvalid("toolkit reference «%s»: %v", s, err)
	}
	v, err := ParseVersion(ast.Version)
	if err != nil {
		return ToolkitRef{}, err
	}
	return ToolkitRef{Name: ast.Name, Version: v}, nil
}

// Parses "vMajor.Minor" version.
func ParseVersion(s string) (Version, error) {
	major, minor, ok := strings.Cut(strings.TrimPrefix(s, "v"), ".")
	if !ok || !strings.HasPrefix(s, "v") {
		return Version{}, ErrInvalid("version «%s»", s)
	}
	ma, err := strconv.ParseUint(major, intBase, 0)
	if err != nil {
		return Version{}, ErrInvalid("major version «%s»", s)
	}
	mi, err := strconv.ParseUint(minor, intBase, 0)
	if err != nil {
		return Version{}, ErrInvalid("minor version «%s»", s)
	}
	return Version{Major: uint(ma), Minor: uint(mi)}, nil
}
