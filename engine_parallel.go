package drift

import (
	"context"
	"runtime"
	"sort"
	"sync"
)

// parseAll runs structural parsing for every queued item. With parallelism
// enabled it fans work out across a pool of workers; results are collected
// and returned in path order so the commit phase stays deterministic either
// way. Workers share no mutable state: each parse call builds its own
// tree-sitter parser and the source text is threaded through explicitly.
func (e *Engine) parseAll(ctx context.Context, items []parseItem) ([]parseOutput, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if !e.useParallel || len(items) == 1 {
		outputs := make([]parseOutput, 0, len(items))
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outputs = append(outputs, e.parseOne(ctx, item))
		}
		return outputs, nil
	}

	numWorkers := min(runtime.NumCPU(), len(items))

	workCh := make(chan parseItem, len(items))
	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	resultCh := make(chan parseOutput, len(items))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				if ctx.Err() != nil {
					return
				}
				resultCh <- e.parseOne(ctx, item)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	outputs := make([]parseOutput, 0, len(items))
	for out := range resultCh {
		outputs = append(outputs, out)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(outputs, func(i, j int) bool {
		return outputs[i].item.path < outputs[j].item.path
	})
	return outputs, nil
}
