/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qpromise

import (
	"io/fs"
	"sync"

	"github.com/voedger/qonfig/pkg/qdef"
)

// Memo of resolved external content keyed by normalized reference.
//
// Exactly one resolution runs per key. Failures are cached permanently.
// Resolution, which re-enters a key resolving in the same chain or waits for
// a chain, which waits for it, fails with ErrSelfReference.
//
// Cache is safe for concurrent use.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]

	// Key each chain is waiting for
	waits map[*chain]string
}

// Promise fulfiller, which reads content referenced by placeholder attribute from fsys.
//
// # Implements:
//   - qdoc.IPromiseFulfiller
type ExternalContent struct {
	fsys  fs.FS
	attr  string
	cache *Cache[qdef.IElement]
}

// ExternalContent option
type Option func(*ExternalContent)
