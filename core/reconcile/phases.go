package reconcile

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ItemError records a failure isolated to a single item of a batch.
type ItemError struct {
	// Index is the position of the item in the input slice.
	Index int
	Err   error
}

// Error implements the error interface.
func (e ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e ItemError) Unwrap() error {
	return e.Err
}

// RunFailFast applies fn to every item in order and stops at the first error.
// The returned error wraps the failing item's error.
func RunFailFast[T any](ctx context.Context, items []T, fn func(context.Context, T) error) error {
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := safeCall(func() error { return fn(ctx, item) }); err != nil {
			return ItemError{Index: i, Err: err}
		}
	}
	return nil
}

// RunIsolated applies fn to every item, collecting failures instead of
// stopping. With workers > 1 items run on a bounded pool; fn must then be safe
// for concurrent use. Items never scheduled because ctx was cancelled are
// reported with the context error. The result is ordered by item index.
func RunIsolated[T any](ctx context.Context, items []T, workers int, fn func(context.Context, int, T) error) []ItemError {
	errs := make([]error, len(items))

	if workers <= 1 {
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			errs[i] = safeCall(func() error { return fn(ctx, i, item) })
		}
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			g.Go(func() error {
				errs[i] = safeCall(func() error { return fn(ctx, i, item) })
				return nil
			})
		}
		_ = g.Wait()
	}

	var failed []ItemError
	for i, err := range errs {
		if err != nil {
			failed = append(failed, ItemError{Index: i, Err: err})
		}
	}
	return failed
}

// DuplicateKeys returns the keys that occur more than once in items, in order
// of first occurrence. Empty keys are ignored.
func DuplicateKeys[T any](items []T, key func(T) string) []string {
	seen := make(map[string]int, len(items))
	var dups []string
	for _, item := range items {
		k := key(item)
		if k == "" {
			continue
		}
		seen[k]++
		if seen[k] == 2 {
			dups = append(dups, k)
		}
	}
	return dups
}

// safeCall turns a panic inside fn into an error so one item cannot take the
// batch down with it.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
