// Package workpool evaluates independent per-row computations on a pool of
// workers and collects the results in row order.
package workpool

import (
	"runtime"
	"sync"
)

// WorkResult holds the output for a single row.
type WorkResult[T any] struct {
	Seq   int
	Value T
	Err   error
}

// Run evaluates fn for every sequence number received on items using a pool
// of workers. Results are sent to the returned channel in arrival order (not
// sequence order). Use OrderedCollect to consume results in sequence order.
// If workers is 0, runtime.NumCPU() is used.
func Run[T any](items <-chan int, workers int, fn func(seq int) (T, error)) <-chan WorkResult[T] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult[T], 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for seq := range items {
				v, err := fn(seq)
				results <- WorkResult[T]{Seq: seq, Value: v, Err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect[T any](results <-chan WorkResult[T], fn func(WorkResult[T]) error) error {
	pending := make(map[int]WorkResult[T])
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// Map evaluates fn for rows 0..n-1 in parallel and returns the values in
// row order. The first error in row order aborts the batch; no partial
// result is returned.
func Map[T any](n, workers int, fn func(i int) (T, error)) ([]T, error) {
	items := make(chan int, n)
	for i := range n {
		items <- i
	}
	close(items)

	out := make([]T, n)
	err := OrderedCollect(Run(items, workers, fn), func(r WorkResult[T]) error {
		if r.Err != nil {
			return r.Err
		}
		out[r.Seq] = r.Value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
