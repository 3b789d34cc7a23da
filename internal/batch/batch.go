// Package batch processes items in fixed-size concurrent chunks.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultSize is the chunk size used when Process is given size <= 0.
const DefaultSize = 5

// ItemError reports the failure of a single item.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Process applies fn to every item, size items at a time. Items within a
// chunk run concurrently; the next chunk starts only once the current one has
// finished. Results are returned in input order.
//
// If any item of a chunk fails, Process returns the failure with the lowest
// index in that chunk and does not start later chunks. The chunk's context is
// cancelled on the first failure so siblings can stop early.
func Process[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error), size int) ([]R, error) {
	if size <= 0 {
		size = DefaultSize
	}

	results := make([]R, len(items))
	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+size, len(items))
		if err := processChunk(ctx, items[start:end], results[start:end], start, fn); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func processChunk[T, R any](ctx context.Context, items []T, out []R, offset int, fn func(ctx context.Context, item T) (R, error)) error {
	g, gctx := errgroup.WithContext(ctx)

	// errgroup keeps only the first error to arrive; errs lets the lowest
	// index win regardless of scheduling.
	errs := make([]error, len(items))
	for i, item := range items {
		g.Go(func() error {
			r, err := fn(gctx, item)
			if err != nil {
				errs[i] = err
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err == nil {
		return nil
	}

	for i, err := range errs {
		if err != nil {
			return &ItemError{Index: offset + i, Err: err}
		}
	}
	return nil
}
