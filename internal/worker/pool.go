// Package worker provides a bounded pool that fetches tiles in parallel.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/MeKo-Tech/mapstatic/internal/tile"
)

// Fetcher retrieves the encoded bytes of a single tile.
type Fetcher interface {
	Fetch(ctx context.Context, coords tile.Coords) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, coords tile.Coords) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, coords tile.Coords) ([]byte, error) {
	return f(ctx, coords)
}

// Task represents a single tile fetch.
type Task struct {
	Coords tile.Coords
}

// Result represents the outcome of a tile fetch.
type Result struct {
	Task    Task
	Data    []byte
	Err     error
	Elapsed time.Duration
}

// Stats is a snapshot of a running batch.
type Stats struct {
	Completed int
	Total     int
	Failed    int
	Bytes     int64
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(Stats)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Fetcher    Fetcher
	OnProgress ProgressFunc
}

// Pool manages parallel tile fetching.
type Pool struct {
	workers    int
	fetcher    Fetcher
	onProgress ProgressFunc
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		fetcher:    cfg.Fetcher,
		onProgress: cfg.OnProgress,
	}
}

type indexed struct {
	i int
	Result
}

// Run executes all tasks and returns one result per task, in task order.
// It blocks until all tasks complete or the context is cancelled; tasks that
// never started carry the context error.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan int, len(tasks))
	resultCh := make(chan indexed, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, tasks, taskCh, resultCh)
		}()
	}

	go func() {
		defer close(taskCh)
		for i := range tasks {
			select {
			case taskCh <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make([]Result, len(tasks))
	seen := make([]bool, len(tasks))
	done := make(chan struct{})

	go func() {
		stats := Stats{Total: len(tasks)}
		for r := range resultCh {
			results[r.i] = r.Result
			seen[r.i] = true

			stats.Completed++
			if r.Err != nil {
				stats.Failed++
			}
			stats.Bytes += int64(len(r.Data))
			if p.onProgress != nil {
				p.onProgress(stats)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	for i, ok := range seen {
		if !ok {
			results[i] = Result{Task: tasks[i], Err: ctx.Err()}
		}
	}

	return results
}

// worker processes task indices from the channel and sends results back.
func (p *Pool) worker(ctx context.Context, tasks []Task, indices <-chan int, results chan<- indexed) {
	for i := range indices {
		task := tasks[i]
		if err := ctx.Err(); err != nil {
			results <- indexed{i: i, Result: Result{Task: task, Err: err}}
			continue
		}

		start := time.Now()
		data, err := p.fetcher.Fetch(ctx, task.Coords)
		elapsed := time.Since(start)

		results <- indexed{i: i, Result: Result{
			Task:    task,
			Data:    data,
			Err:     err,
			Elapsed: elapsed,
		}}
	}
}
