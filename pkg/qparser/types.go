/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qparser

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/voedger/qonfig/pkg/qdef"
)

// Toolkit source file
type FileToolkitAST struct {
	FileName string
	Ast      *ToolkitAST
}

type ToolkitAST struct {
	Pos     lexer.Position
	Name    string        `parser:"'toolkit' @Ident"`
	Version string        `parser:"@Version '{'"`
	Items   []ToolkitItem `parser:"@@* '}'"`
}

// Returns reference of declared toolkit
func (t *ToolkitAST) Ref() (qdef.ToolkitRef, error) {
	v, err := qdef.ParseVersion(t.Version)
	if err != nil {
		return qdef.ToolkitRef{}, err
	}
	return qdef.ToolkitRef{Name: t.Name, Version: v}, nil
}

type ToolkitItem struct {
	Description *DescriptionStmt `parser:"  @@"`
	Uses        *UsesStmt        `parser:"| @@"`
	ValueTypes  *ValueTypesStmt  `parser:"| @@"`
	Root        *RootStmt        `parser:"| @@"`
	AutoInherit *AutoInheritStmt `parser:"| @@"`
	Type        *TypeStmt        `parser:"| @@"`
}

// Reference to type or value type: name or alias:name
type RefAST struct {
	Pos  lexer.Position
	Head string `parser:"@Ident"`
	Tail string `parser:"(':' @Ident)?"`
}

func (r RefAST) String() string {
	if r.Tail != "" {
		return r.Head + qdef.AliasSeparator + r.Tail
	}
	return r.Head
}

// Reference to member: Owner.name or alias:Owner.name
type MemberRefAST struct {
	Pos   lexer.Position
	Owner RefAST `parser:"@@"`
	Name  string `parser:"'.' @Ident"`
}

func (r MemberRefAST) String() string { return r.Owner.String() + qdef.MemberSeparator + r.Name }

type DescriptionStmt struct {
	Pos  lexer.Position
	Text string `parser:"'description' @(String | RawString) ';'"`
}

type UsesStmt struct {
	Pos     lexer.Position
	Alias   string `parser:"'uses' @Ident '='"`
	Name    string `parser:"@Ident"`
	Version string `parser:"@Version ';'"`
}

type ValueTypesStmt struct {
	Pos   lexer.Position
	Items []ValueTypeStmt `parser:"'value-types' '{' @@* '}'"`
}

type ValueTypeStmt struct {
	Pattern  *PatternTypeStmt  `parser:"  @@"`
	Literal  *LiteralTypeStmt  `parser:"| @@"`
	OneOf    *OneOfTypeStmt    `parser:"| @@"`
	Explicit *ExplicitTypeStmt `parser:"| @@"`
	External *ExternalTypeStmt `parser:"| @@"`
}

// Returns name and position of declared value type
func (s ValueTypeStmt) name() (string, lexer.Position) {
	switch {
	case s.Pattern != nil:
		return s.Pattern.Name, s.Pattern.Pos
	case s.Literal != nil:
		return s.Literal.Name, s.Literal.Pos
	case s.OneOf != nil:
		return s.OneOf.Name, s.OneOf.Pos
	case s.Explicit != nil:
		return s.Explicit.Name, s.Explicit.Pos
	}
	return s.External.Name, s.External.Pos
}

type PatternTypeStmt struct {
	Pos     lexer.Position
	Name    string `parser:"'pattern' @Ident"`
	Pattern string `parser:"@(String | RawString) ';'"`
}

type LiteralTypeStmt struct {
	Pos     lexer.Position
	Name    string `parser:"'literal' @Ident"`
	Literal string `parser:"@(String | RawString) ';'"`
}

type OneOfTypeStmt struct {
	Pos          lexer.Position
	Name         string   `parser:"'one-of' @Ident"`
	Alternatives []RefAST `parser:"'(' @@ (',' @@)* ')' ';'"`
}

type ExplicitTypeStmt struct {
	Pos     lexer.Position
	Name    string `parser:"'explicit' @Ident"`
	Wrapped RefAST `parser:"@@"`
	Prefix  string `parser:"('prefix' @(String | RawString))?"`
	Suffix  string `parser:"('suffix' @(String | RawString))? ';'"`
}

type ExternalTypeStmt struct {
	Pos  lexer.Position
	Name string `parser:"'external' @Ident ';'"`
}

type RootStmt struct {
	Pos   lexer.Position
	Types []RefAST `parser:"'root' @@ (',' @@)* ';'"`
}

type TypeStmt struct {
	Pos      lexer.Position
	Abstract bool       `parser:"@'abstract'?"`
	Promise  bool       `parser:"@'promise'?"`
	Kind     string     `parser:"@('add-on' | 'element-def')"`
	Name     string     `parser:"@Ident"`
	Extends  *RefAST    `parser:"('extends' @@)?"`
	Requires *RefAST    `parser:"('requires' @@)?"`
	Inherits []RefAST   `parser:"('inherits' @@ (',' @@)*)?"`
	Items    []TypeItem `parser:"'{' @@* '}'"`
}

func (s *TypeStmt) isAddOn() bool { return s.Kind == kindAddOn }

type TypeItem struct {
	Description *DescriptionStmt     `parser:"  @@"`
	Attribute   *AttributeStmt       `parser:"| @@"`
	Value       *ValueStmt           `parser:"| @@"`
	Child       *ChildStmt           `parser:"| @@"`
	ModifyAttr  *ModifyAttributeStmt `parser:"| 'modify' @@"`
	ModifyValue *ModifyValueStmt     `parser:"| 'modify' @@"`
	ModifyChild *ModifyChildStmt     `parser:"| 'modify' @@"`
	Metadata    *MetadataStmt        `parser:"| @@"`
	Meta        *MetaStmt            `parser:"| @@"`
}

// Options of attribute or value
type ValueOpt struct {
	Pos         lexer.Position
	Specify     string  `parser:"  @('required' | 'optional' | 'forbidden')"`
	Default     *string `parser:"| 'default' @(String | RawString)"`
	Description *string `parser:"| 'description' @(String | RawString)"`
}

type AttributeStmt struct {
	Pos  lexer.Position
	Name string     `parser:"'attribute' @Ident ':'"`
	Type RefAST     `parser:"@@"`
	Opts []ValueOpt `parser:"@@* ';'"`
}

type ValueStmt struct {
	Pos  lexer.Position
	Type RefAST     `parser:"'value' ':' @@"`
	Opts []ValueOpt `parser:"@@* ';'"`
}

// Options of child role
type ChildOpt struct {
	Pos         lexer.Position
	Min         *string  `parser:"  'min' '=' @Int"`
	Max         *string  `parser:"| 'max' '=' @(Int | 'inf')"`
	Inherits    []RefAST `parser:"| 'inherits' @@ (',' @@)*"`
	Requires    []RefAST `parser:"| 'requires' @@ (',' @@)*"`
	Description *string  `parser:"| 'description' @(String | RawString)"`
}

type ChildStmt struct {
	Pos  lexer.Position
	Name string     `parser:"'child-def' @Ident ':'"`
	Type RefAST     `parser:"@@"`
	Opts []ChildOpt `parser:"@@* ';'"`
}

type ModifyAttributeStmt struct {
	Pos    lexer.Position
	Member MemberRefAST `parser:"'attribute' @@"`
	Type   *RefAST      `parser:"(':' @@)?"`
	Opts   []ValueOpt   `parser:"@@* ';'"`
}

type ModifyValueStmt struct {
	Pos   lexer.Position
	Value bool       `parser:"@'value'"`
	Type  *RefAST    `parser:"(':' @@)?"`
	Opts  []ValueOpt `parser:"@@* ';'"`
}

type ModifyChildStmt struct {
	Pos    lexer.Position
	Member MemberRefAST `parser:"'child-def' @@"`
	Type   *RefAST      `parser:"(':' @@)?"`
	Opts   []ChildOpt   `parser:"@@* ';'"`
}

type MetadataStmt struct {
	Pos   lexer.Position
	Items []MetadataItem `parser:"'metadata' '{' @@* '}'"`
}

type MetadataItem struct {
	Child  *ChildStmt       `parser:"  @@"`
	Modify *ModifyChildStmt `parser:"| 'modify' @@"`
}

// Metadata content, fragment of document
type MetaStmt struct {
	Pos     lexer.Position
	Content string `parser:"'meta' @(RawString | String) ';'"`
}

type AutoInheritStmt struct {
	Pos     lexer.Position
	AddOns  []RefAST     `parser:"'auto-inherit' @@ (',' @@)*"`
	Targets []TargetStmt `parser:"'{' @@+ '}'"`
}

type TargetStmt struct {
	Pos  lexer.Position
	Type *RefAST       `parser:"'target' ('type' @@)?"`
	Role *MemberRefAST `parser:"('role' @@)? ';'"`
}
