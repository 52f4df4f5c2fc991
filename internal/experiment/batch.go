package experiment

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// #region batch
// RunBatch runs every condition over the same corpus on up to workers
// goroutines (NumCPU when workers < 1). Reports keep the order of conds. A
// failed condition leaves a zero Report in its slot and its error is joined
// into the returned error; the other conditions still run.
func RunBatch(ctx context.Context, corpus Corpus, conds []Condition, env Env, workers int) ([]Report, error) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(conds) {
		workers = len(conds)
	}

	reports := make([]Report, len(conds))
	errs := make([]error, len(conds))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				reports[i], errs[i] = Run(ctx, corpus, conds[i], env)
			}
		}()
	}
	for i := range conds {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return reports, fmt.Errorf("run batch: %w", err)
	}
	return reports, nil
}

// #endregion batch
