package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every item with at most limit goroutines in flight
// (limit <= 0 means unbounded). The first error cancels the context passed to
// the remaining actions and is returned once all started actions finish.
func ForEach[T any](ctx context.Context, items []T, limit int, action func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return action(gctx, item)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// ParallelMap applies mapFn to each element in parallel, preserving order.
func ParallelMap[T any, R any](ctx context.Context, in []T, limit int, mapFn func(T) R) ([]R, error) {
	out := make([]R, len(in))
	indexes := make([]int, len(in))
	for i := range indexes {
		indexes[i] = i
	}
	err := ForEach(ctx, indexes, limit, func(_ context.Context, i int) error {
		out[i] = mapFn(in[i])
		return nil
	})
	return out, err
}
