/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qpromise

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/untillpro/goutils/logger"
)

var lastChainID atomic.Uint64

// Resolution chain: sequence of nested resolutions, running in one goroutine
type chain struct {
	id uint64
}

type chainKey struct{}

// Returns resolution chain of context, creates new one if context has no chain
func chainOf(ctx context.Context) (*chain, context.Context) {
	if ch, ok := ctx.Value(chainKey{}).(*chain); ok {
		return ch, ctx
	}
	ch := &chain{id: lastChainID.Add(1)}
	return ch, context.WithValue(ctx, chainKey{}, ch)
}

type entry[T any] struct {
	// Chain, which resolves entry. Nil if entry settled
	owner *chain
	done  chan struct{}
	value T
	err   error
}

// Returns value of key. If key is not resolved yet, resolves it by calling resolve.
//
// Resolve is called with context which carries resolution chain. Nested Get calls
// must use this context to detect self references.
func (c *Cache[T]) Get(ctx context.Context, key string, resolve func(ctx context.Context) (T, error)) (T, error) {
	ch, ctx := chainOf(ctx)

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry[T]{owner: ch, done: make(chan struct{})}
		c.entries[key] = e
		c.mu.Unlock()
		if logger.IsVerbose() {
			logger.Verbose(fmt.Sprintf("chain %d: resolving «%s»", ch.id, key))
		}
		return c.resolve(ctx, key, e, resolve)
	}
	if e.owner == nil {
		c.mu.Unlock()
		return e.value, e.err
	}
	if c.cycle(ch, e.owner) {
		c.mu.Unlock()
		var zero T
		return zero, ErrSelfReference(key)
	}
	c.waits[ch] = key
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.waits, ch)
		c.mu.Unlock()
	}()

	select {
	case <-e.done:
		return e.value, e.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Returns is chain ch already owner of entry or transitively waited by owner.
//
// Must be called under lock.
func (c *Cache[T]) cycle(ch, owner *chain) bool {
	for o := owner; o != nil; {
		if o == ch {
			return true
		}
		key, ok := c.waits[o]
		if !ok {
			return false
		}
		e := c.entries[key]
		if e == nil {
			return false
		}
		o = e.owner
	}
	return false
}

func (c *Cache[T]) resolve(ctx context.Context, key string, e *entry[T], resolve func(ctx context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrBadReference("resolution of «%s» panics: %v", key, r)
		}
		c.mu.Lock()
		e.value, e.err, e.owner = value, err, nil
		c.mu.Unlock()
		close(e.done)
	}()
	return resolve(ctx)
}

// Returns keys count: resolved, failed and resolving
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
