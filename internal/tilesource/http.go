package tilesource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/mapstatic/internal/tile"
	"github.com/MeKo-Tech/mapstatic/internal/types"
	"github.com/MeKo-Tech/mapstatic/internal/worker"
)

const (
	// DefaultUserAgent identifies the renderer to tile servers; most public servers reject anonymous clients.
	DefaultUserAgent = "mapstatic/1.0"
	// DefaultWorkers is the number of concurrent tile downloads.
	DefaultWorkers = 4
	// maxTileBytes bounds a single response body.
	maxTileBytes = 8 << 20
)

// HTTPConfig configures an HTTPSource. Zero values select defaults.
type HTTPConfig struct {
	Client     *http.Client
	UserAgent  string
	Workers    int
	Timeout    time.Duration
	OnProgress worker.ProgressFunc
	Logger     *slog.Logger
}

// HTTPSource downloads tiles from XYZ tile servers.
type HTTPSource struct {
	client     *http.Client
	userAgent  string
	workers    int
	onProgress worker.ProgressFunc
	logger     *slog.Logger
}

// NewHTTPSource creates an HTTP tile source.
func NewHTTPSource(cfg HTTPConfig) *HTTPSource {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	return &HTTPSource{
		client:     client,
		userAgent:  cfg.UserAgent,
		workers:    cfg.Workers,
		onProgress: cfg.OnProgress,
		logger:     cfg.Logger,
	}
}

// FetchTiles downloads all tiles in parallel and returns them in request order.
// The first failure, in request order, fails the batch.
func (s *HTTPSource) FetchTiles(ctx context.Context, tiles []tile.Coords, provider string) ([][]byte, error) {
	p, err := Lookup(provider)
	if err != nil {
		return nil, err
	}

	tasks := make([]worker.Task, len(tiles))
	for i, c := range tiles {
		tasks[i] = worker.Task{Coords: c}
	}

	pool := worker.New(worker.Config{
		Workers: s.workers,
		Fetcher: worker.FetcherFunc(func(ctx context.Context, c tile.Coords) ([]byte, error) {
			return s.download(ctx, p.URL(c))
		}),
		OnProgress: s.onProgress,
	})

	start := time.Now()
	results := pool.Run(ctx, tasks)

	out := make([][]byte, len(results))
	for i, r := range results {
		if r.Err != nil {
			s.log().Warn("tile download failed", "tile", r.Task.Coords.String(), "provider", p.Name, "error", r.Err)
			return nil, fmt.Errorf("%w: %s from %s: %v", types.ErrTileFetchFailed, r.Task.Coords, p.Name, r.Err)
		}
		out[i] = r.Data
	}

	s.log().Debug("fetched tiles",
		"provider", p.Name,
		"tile_count", len(out),
		"workers", s.workers,
		"duration_ms", time.Since(start).Milliseconds())

	return out, nil
}

func (s *HTTPSource) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if len(data) > maxTileBytes {
		return nil, fmt.Errorf("GET %s: tile larger than %d bytes", url, maxTileBytes)
	}
	return data, nil
}

func (s *HTTPSource) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
