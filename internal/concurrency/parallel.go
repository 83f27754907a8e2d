package concurrency

import (
	"context"
	"sync"
)

// Options configures parallel processing.
type Options struct {
	// MaxWorkers caps the number of concurrent workers.
	MaxWorkers int
}

func DefaultOptions() Options {
	return Options{MaxWorkers: 4}
}

// ProcessParallel runs itemFunc for every item with a bounded worker pool
// and returns the results in input order. Errors are collected, not
// short-circuited; a canceled context stops workers early.
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts Options,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultOptions().MaxWorkers
	}
	if maxWorkers > len(items) {
		maxWorkers = len(items)
	}

	jobs := make(chan int, len(items))
	type indexed struct {
		index  int
		result R
		err    error
	}
	results := make(chan indexed, len(items))

	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					results <- indexed{index: i, err: ctx.Err()}
				default:
					r, err := itemFunc(ctx, i, items[i])
					results <- indexed{index: i, result: r, err: err}
				}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]R, len(items))
	var errs []error
	for range items {
		res := <-results
		if res.err != nil {
			errs = append(errs, res.err)
		}
		out[res.index] = res.result
	}
	return out, errs
}
