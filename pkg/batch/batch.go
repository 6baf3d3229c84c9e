// Package batch runs probes in fixed-size concurrent batches and collects
// every outcome, failed or not, without cancelling sibling probes.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of a single item. Err is set when the probe failed,
// panicked or was never started because the context expired.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Run processes items in order, size at a time. Batches run sequentially and
// the items of one batch run concurrently. The returned slice has one
// Outcome per item, at the item's index.
func Run[I, O any](ctx context.Context, items []I, size int, fn func(context.Context, I) (O, error)) []Outcome[O] {
	if size < 1 {
		size = 1
	}
	out := make([]Outcome[O], len(items))

	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}

		if err := ctx.Err(); err != nil {
			for i := start; i < len(items); i++ {
				out[i].Err = err
			}
			return out
		}

		// Plain group, no WithContext: one failing item must not cancel the rest.
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				defer func() {
					if p := recover(); p != nil {
						out[i].Err = fmt.Errorf("probe panic: %v", p)
					}
				}()
				v, err := fn(ctx, items[i])
				out[i] = Outcome[O]{Value: v, Err: err}
				return nil
			})
		}
		_ = g.Wait()
	}
	return out
}

// Values returns the values of the successful outcomes, in item order.
func Values[T any](outcomes []Outcome[T]) []T {
	vs := make([]T, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err == nil {
			vs = append(vs, o.Value)
		}
	}
	return vs
}
