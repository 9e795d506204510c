/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qpromise

import (
	"io/fs"

	"github.com/voedger/qonfig/pkg/qdef"
)

func NewCache[T any]() *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]*entry[T]),
		waits:   make(map[*chain]string),
	}
}

// Returns fulfiller of external content from fsys.
//
// References are resolved relative to directory of placeholder source file.
func NewExternalContent(fsys fs.FS, opts ...Option) *ExternalContent {
	x := &ExternalContent{
		fsys:  fsys,
		attr:  DefaultRefAttribute,
		cache: NewCache[qdef.IElement](),
	}
	for _, o := range opts {
		o(x)
	}
	return x
}

// Sets name of placeholder attribute with reference
func WithRefAttribute(name string) Option {
	return func(x *ExternalContent) { x.attr = name }
}
