package concurrency

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerFn handles the task at index. It reports its own outcome; the pool
// does not stop on a task's failure.
type WorkerFn func(ctx context.Context, index int)

// ForEach runs fn for every index in [0, tasks) on at most limit goroutines.
// Scheduling stops once ctx is done and ctx.Err() is returned.
func ForEach(ctx context.Context, limit, tasks int, fn WorkerFn) error {
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i := 0; i < tasks; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

// Map applies fn to every item with bounded parallelism. out[i] is fn(items[i]);
// entries for items never scheduled are left as the zero value.
func Map[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) R) ([]R, error) {
	out := make([]R, len(items))
	err := ForEach(ctx, limit, len(items), func(ctx context.Context, i int) {
		out[i] = fn(ctx, items[i])
	})
	return out, err
}
