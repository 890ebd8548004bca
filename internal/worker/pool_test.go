package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MeKo-Tech/mapstatic/internal/tile"
)

// mockFetcher simulates tile downloads for testing
type mockFetcher struct {
	delay     time.Duration
	failTiles map[string]bool // tiles that should fail
	callCount atomic.Int32
}

func (m *mockFetcher) Fetch(ctx context.Context, coords tile.Coords) ([]byte, error) {
	m.callCount.Add(1)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(m.delay):
	}

	if m.failTiles != nil && m.failTiles[coords.String()] {
		return nil, errors.New("simulated failure")
	}

	return []byte(coords.String()), nil
}

func tasksFor(coords ...tile.Coords) []Task {
	tasks := make([]Task, len(coords))
	for i, c := range coords {
		tasks[i] = Task{Coords: c}
	}
	return tasks
}

func TestPool_BasicExecution(t *testing.T) {
	f := &mockFetcher{delay: 10 * time.Millisecond}

	pool := New(Config{
		Workers: 2,
		Fetcher: f,
	})

	tasks := tasksFor(
		tile.NewCoords(13, 4297, 2754),
		tile.NewCoords(13, 4297, 2755),
		tile.NewCoords(13, 4298, 2754),
	)

	results := pool.Run(context.Background(), tasks)

	if len(results) != len(tasks) {
		t.Fatalf("Expected %d results, got %d", len(tasks), len(results))
	}

	for i, r := range results {
		if r.Err != nil {
			t.Errorf("Unexpected error for %s: %v", r.Task.Coords.String(), r.Err)
		}
		if r.Task != tasks[i] {
			t.Errorf("Result %d belongs to %s, want %s", i, r.Task.Coords, tasks[i].Coords)
		}
		if string(r.Data) != tasks[i].Coords.String() {
			t.Errorf("Result %d data = %q", i, r.Data)
		}
	}

	if f.callCount.Load() != int32(len(tasks)) {
		t.Errorf("Expected %d fetch calls, got %d", len(tasks), f.callCount.Load())
	}
}

func TestPool_KeepsTaskOrder(t *testing.T) {
	// Earlier tasks are slower, so they finish last.
	var n atomic.Int32
	f := FetcherFunc(func(ctx context.Context, c tile.Coords) ([]byte, error) {
		n.Add(1)
		time.Sleep(time.Duration(10-c.X) * 5 * time.Millisecond)
		return []byte{byte(c.X)}, nil
	})

	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = Task{Coords: tile.NewCoords(4, i, 0)}
	}

	results := New(Config{Workers: 10, Fetcher: f}).Run(context.Background(), tasks)
	for i, r := range results {
		if len(r.Data) != 1 || int(r.Data[0]) != i {
			t.Fatalf("result %d out of order: %v", i, r.Data)
		}
	}
	if n.Load() != 10 {
		t.Errorf("Expected 10 calls, got %d", n.Load())
	}
}

func TestPool_Parallelism(t *testing.T) {
	// Use a longer delay to ensure parallelism is tested
	f := &mockFetcher{delay: 50 * time.Millisecond}

	pool := New(Config{
		Workers: 4,
		Fetcher: f,
	})

	tasks := make([]Task, 8)
	for i := range tasks {
		tasks[i] = Task{Coords: tile.NewCoords(13, 4297+i, 2754)}
	}

	start := time.Now()
	results := pool.Run(context.Background(), tasks)
	elapsed := time.Since(start)

	// With 4 workers and 8 tasks at 50ms each, should take ~100ms (2 batches)
	maxExpected := 200 * time.Millisecond
	if elapsed > maxExpected {
		t.Errorf("Expected parallel execution in ~100ms, took %v", elapsed)
	}

	if len(results) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(results))
	}

	t.Logf("Fetched %d tiles with %d workers in %v", len(tasks), 4, elapsed)
}

func TestPool_ErrorHandling(t *testing.T) {
	failTile := "z13_x4297_y2755"
	f := &mockFetcher{
		delay:     10 * time.Millisecond,
		failTiles: map[string]bool{failTile: true},
	}

	pool := New(Config{
		Workers: 2,
		Fetcher: f,
	})

	tasks := tasksFor(
		tile.NewCoords(13, 4297, 2754),
		tile.NewCoords(13, 4297, 2755), // This one should fail
		tile.NewCoords(13, 4298, 2754),
	)

	results := pool.Run(context.Background(), tasks)

	if len(results) != len(tasks) {
		t.Fatalf("Expected %d results, got %d", len(tasks), len(results))
	}
	if results[1].Err == nil {
		t.Errorf("Expected failure for %s", failTile)
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("Unexpected failures: %v, %v", results[0].Err, results[2].Err)
	}
}

func TestPool_Cancellation(t *testing.T) {
	f := &mockFetcher{delay: 100 * time.Millisecond}

	pool := New(Config{
		Workers: 2,
		Fetcher: f,
	})

	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = Task{Coords: tile.NewCoords(13, 4297+i, 2754)}
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	results := pool.Run(ctx, tasks)
	elapsed := time.Since(start)

	if elapsed > 200*time.Millisecond {
		t.Errorf("Expected early cancellation, took %v", elapsed)
	}

	// Every task gets a result; the unfinished ones carry the cancellation.
	if len(results) != len(tasks) {
		t.Fatalf("Expected %d results, got %d", len(tasks), len(results))
	}
	var cancelledCount int
	for _, r := range results {
		if errors.Is(r.Err, context.Canceled) {
			cancelledCount++
		}
	}
	if cancelledCount == 0 {
		t.Error("Expected cancelled results")
	}
}

func TestPool_ProgressCallback(t *testing.T) {
	f := &mockFetcher{delay: 10 * time.Millisecond}

	var progressCalls atomic.Int32
	var last Stats

	pool := New(Config{
		Workers: 2,
		Fetcher: f,
		OnProgress: func(s Stats) {
			progressCalls.Add(1)
			last = s
		},
	})

	tasks := tasksFor(
		tile.NewCoords(13, 4297, 2754),
		tile.NewCoords(13, 4297, 2755),
		tile.NewCoords(13, 4298, 2754),
	)

	pool.Run(context.Background(), tasks)

	if progressCalls.Load() != int32(len(tasks)) {
		t.Errorf("Expected %d progress callbacks, got %d", len(tasks), progressCalls.Load())
	}
	if last.Completed != len(tasks) || last.Total != len(tasks) {
		t.Errorf("Expected %d/%d, got %d/%d", len(tasks), len(tasks), last.Completed, last.Total)
	}
	if last.Bytes != int64(3*len("z13_x4297_y2754")) {
		t.Errorf("Expected byte total of all tiles, got %d", last.Bytes)
	}
}

func TestPool_EmptyTasks(t *testing.T) {
	f := &mockFetcher{}

	pool := New(Config{
		Workers: 2,
		Fetcher: f,
	})

	results := pool.Run(context.Background(), nil)

	if len(results) != 0 {
		t.Errorf("Expected 0 results for empty tasks, got %d", len(results))
	}

	if f.callCount.Load() != 0 {
		t.Errorf("Expected 0 fetch calls for empty tasks, got %d", f.callCount.Load())
	}
}
