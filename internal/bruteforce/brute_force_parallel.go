package bruteforce

import (
	"context"
	"runtime"
	"sync"
)

// outcome carries a finished job back to the collector.
type outcome[T any] struct {
	i   int
	v   T
	ok  bool
	err error
}

// Parallel evaluates the jobs on cfg.NumWorkers goroutines. Workers share
// nothing but the job function; the calling goroutine is the single collection
// point. It releases hits strictly in index order and is the only writer of
// progress lines.
func Parallel[T any](ctx context.Context, cfg Config, job Job[T], yield Yield[T]) error {
	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > cfg.Jobs {
		numWorkers = cfg.Jobs
	}

	// Create context for cancellation
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Channels for work distribution and results
	workChan := make(chan int, numWorkers*10)
	resultChan := make(chan outcome[T], numWorkers*10)

	// Generate work items in a separate goroutine
	go func() {
		defer close(workChan)
		for i := 0; i < cfg.Jobs; i++ {
			select {
			case <-runCtx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	// Start workers
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workChan {
				if runCtx.Err() != nil {
					return
				}
				v, ok, err := job(runCtx, i)
				select {
				case resultChan <- outcome[T]{i: i, v: v, ok: ok, err: err}:
				case <-runCtx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	pending := make(map[int]outcome[T])
	next, finished := 0, 0
	stopped := false
	var firstErr error

	for res := range resultChan {
		if stopped {
			continue // drain until every worker has exited
		}
		finished++
		cfg.progress(finished)
		pending[res.i] = res
		for {
			o, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if o.err != nil {
				firstErr = o.err
				stopped = true
				cancel()
				break
			}
			if o.ok && !yield(o.i, o.v) {
				stopped = true
				cancel()
				break
			}
		}
	}

	if firstErr != nil {
		return firstErr
	}
	if !stopped && next < cfg.Jobs {
		// Only a cancelled parent context stops workers early.
		return ctx.Err()
	}
	return nil
}
