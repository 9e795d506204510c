/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qparser

import (
	"errors"
	"io/fs"
	"path"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/untillpro/goutils/logger"
)

var toolkitLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `--[^\n]*`},
	{Name: "RawString", Pattern: "`[^`]*`"},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Version", Pattern: `v\d+\.\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_\-]*`},
	{Name: "Punct", Pattern: `[{}();:,.=]`},
	{Name: "Whitespace", Pattern: `[ \r\n\t]+`},
})

var toolkitParser = participle.MustBuild[ToolkitAST](
	participle.Lexer(toolkitLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String", "RawString"),
	participle.UseLookahead(grammarLookahead),
)

func parseImpl(fileName string, content string) (*ToolkitAST, error) {
	ast, err := toolkitParser.ParseString(fileName, content)
	if err != nil {
		return nil, ErrSyntax(fileName, err)
	}
	return ast, nil
}

// Parses every toolkit source file under dir
func parseFSImpl(fsys fs.FS, dir string) ([]*FileToolkitAST, error) {
	files := make([]*FileToolkitAST, 0)
	errs := make([]error, 0)
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(p), ToolkitFileExt) {
			return nil
		}
		bytes, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		ast, err := parseImpl(p, string(bytes))
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if logger.IsVerbose() {
			logger.Verbose("parsed toolkit source", p)
		}
		files = append(files, &FileToolkitAST{FileName: p, Ast: ast})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return files, errors.Join(errs...)
	}
	if len(files) == 0 {
		return nil, ErrNoSources(dir)
	}
	return files, nil
}
