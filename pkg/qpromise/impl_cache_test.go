/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qpromise

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheResolvesOnce(t *testing.T) {
	require := require.New(t)
	c := NewCache[string]()

	gate := make(chan struct{})
	calls := atomic.Int32{}
	resolve := func(context.Context) (string, error) {
		calls.Add(1)
		<-gate
		return "content", nil
	}

	const readers = 10
	results := make([]string, readers)
	errs := make([]error, readers)
	wg := sync.WaitGroup{}
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Get(context.Background(), "a.xml#", resolve)
		}(i)
	}
	close(gate)
	wg.Wait()

	require.EqualValues(1, calls.Load())
	for i, v := range results {
		require.NoError(errs[i])
		require.Equal("content", v)
	}
	require.Equal(1, c.Len())
}

func TestCacheFailureIsPermanent(t *testing.T) {
	require := require.New(t)
	c := NewCache[int]()

	calls := 0
	fail := func(context.Context) (int, error) {
		calls++
		return 0, errors.New("unreachable")
	}
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), "x", fail)
		require.EqualError(err, "unreachable")
	}
	require.Equal(1, calls)
}

func TestCacheSelfReference(t *testing.T) {
	t.Run("same chain", func(t *testing.T) {
		require := require.New(t)
		c := NewCache[int]()

		var resolveA, resolveB func(ctx context.Context) (int, error)
		resolveA = func(ctx context.Context) (int, error) { return c.Get(ctx, "b", resolveB) }
		resolveB = func(ctx context.Context) (int, error) { return c.Get(ctx, "a", resolveA) }

		_, err := c.Get(context.Background(), "a", resolveA)
		require.ErrorIs(err, ErrSelfReferenceError)
		require.ErrorContains(err, "«a» is already being resolved")

		_, err = c.Get(context.Background(), "b", func(context.Context) (int, error) { return 1, nil })
		require.ErrorIs(err, ErrSelfReferenceError, "failed entry must stay failed")
	})

	t.Run("independent chains", func(t *testing.T) {
		require := require.New(t)
		c := NewCache[int]()

		c1, c2 := make(chan struct{}), make(chan struct{})
		var resolveA, resolveB func(ctx context.Context) (int, error)
		resolveA = func(ctx context.Context) (int, error) {
			close(c1)
			<-c2
			return c.Get(ctx, "b", resolveB)
		}
		resolveB = func(ctx context.Context) (int, error) {
			close(c2)
			<-c1
			return c.Get(ctx, "a", resolveA)
		}

		errs := make([]error, 2)
		wg := sync.WaitGroup{}
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = c.Get(context.Background(), "a", resolveA)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = c.Get(context.Background(), "b", resolveB)
		}()
		wg.Wait()

		require.ErrorIs(errs[0], ErrSelfReferenceError)
		require.ErrorIs(errs[1], ErrSelfReferenceError)
	})

	t.Run("sibling reference is not a cycle", func(t *testing.T) {
		require := require.New(t)
		c := NewCache[int]()

		leaf := func(context.Context) (int, error) { return 1, nil }
		v, err := c.Get(context.Background(), "root", func(ctx context.Context) (int, error) {
			a, err := c.Get(ctx, "leaf", leaf)
			if err != nil {
				return 0, err
			}
			b, err := c.Get(ctx, "leaf", leaf)
			return a + b, err
		})
		require.NoError(err)
		require.Equal(2, v)
	})
}

func TestCacheWaitCanceled(t *testing.T) {
	require := require.New(t)
	c := NewCache[int]()

	started, release := make(chan struct{}), make(chan struct{})
	go func() {
		_, _ = c.Get(context.Background(), "slow", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx, "slow", func(context.Context) (int, error) { return 2, nil })
	require.ErrorIs(err, context.Canceled)

	close(release)
}

func TestCachePanicBecomesFailure(t *testing.T) {
	require := require.New(t)
	c := NewCache[int]()

	_, err := c.Get(context.Background(), "boom", func(context.Context) (int, error) { panic("boom") })
	require.ErrorIs(err, ErrBadReferenceError)

	_, err = c.Get(context.Background(), "boom", func(context.Context) (int, error) { return 1, nil })
	require.ErrorIs(err, ErrBadReferenceError)
}
