// Package fanout runs one callback per item on a bounded number of goroutines.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Each calls fn for every item. limit <= 0 starts one goroutine per item.
// fn owns its own error handling; Each only fails when ctx is done before
// every item got a slot.
func Each[T any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T)) error {
	g, gctx := errgroup.WithContext(ctx)
	var sem *semaphore.Weighted
	if limit > 0 {
		sem = semaphore.NewWeighted(int64(limit))
	}
	for _, item := range items {
		if sem != nil {
			if err := sem.Acquire(gctx, 1); err != nil {
				_ = g.Wait()
				return err
			}
		}
		g.Go(func() error {
			if sem != nil {
				defer sem.Release(1)
			}
			fn(gctx, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
