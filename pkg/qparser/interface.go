/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qparser

import "github.com/voedger/qonfig/pkg/qdef"

// Compiler option
type Option func(*options)

type options struct {
	externals         map[string]qdef.ExternalParser
	autoCacheSize     int
	instanceCacheSize int

	// Directories indexed by loader
	dirs []string
}

func newOptions(opts ...Option) *options {
	o := &options{
		externals:         make(map[string]qdef.ExternalParser),
		autoCacheSize:     qdef.DefaultAutoInheritanceCacheSize,
		instanceCacheSize: qdef.DefaultInstanceTypeCacheSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.dirs) == 0 {
		o.dirs = []string{"."}
	}
	return o
}
