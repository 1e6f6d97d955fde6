// Package bruteforce runs index-addressed search jobs, either sequentially or
// across a pool of workers, and hands their hits back in index order.
package bruteforce

import (
	"context"
	"fmt"
	"io"
)

// Job evaluates work item i. ok reports whether i produced a hit worth
// collecting. A non-nil error aborts the whole run.
type Job[T any] func(ctx context.Context, i int) (v T, ok bool, err error)

// Yield receives hits in ascending index order. Returning false stops the run.
type Yield[T any] func(i int, v T) bool

// Config controls a brute-force run.
type Config struct {
	// Jobs is the number of work items, addressed as [0, Jobs).
	Jobs int

	// NumWorkers controls parallelization (0 = runtime.NumCPU(), 1 = sequential)
	NumWorkers int

	// Out receives progress lines. Nil discards them.
	Out io.Writer

	// ProgressEvery prints a progress line after this many finished jobs (0 = never)
	ProgressEvery int

	// Label names the unit of work in progress lines, e.g. "keys".
	Label string
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return io.Discard
	}
	return c.Out
}

func (c Config) label() string {
	if c.Label == "" {
		return "jobs"
	}
	return c.Label
}

func (c Config) progress(done int) {
	if c.ProgressEvery > 0 && done%c.ProgressEvery == 0 {
		fmt.Fprintf(c.out(), "%d %s processed...\n", done, c.label())
	}
}

// Run evaluates job over every index and delivers hits to yield in index
// order. The order, and therefore the output, does not depend on the worker
// count.
func Run[T any](ctx context.Context, cfg Config, job Job[T], yield Yield[T]) error {
	if cfg.NumWorkers == 1 || cfg.Jobs <= 1 {
		return Sequential(ctx, cfg, job, yield)
	}
	return Parallel(ctx, cfg, job, yield)
}

// Sequential evaluates the jobs one after another on the calling goroutine.
func Sequential[T any](ctx context.Context, cfg Config, job Job[T], yield Yield[T]) error {
	for i := 0; i < cfg.Jobs; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		v, ok, err := job(ctx, i)
		if err != nil {
			return err
		}
		cfg.progress(i + 1)
		if ok && !yield(i, v) {
			return nil
		}
	}
	return nil
}
