package tilesource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/MeKo-Tech/mapstatic/internal/mbtiles"
	"github.com/MeKo-Tech/mapstatic/internal/tile"
	"github.com/MeKo-Tech/mapstatic/internal/types"
)

// MBTilesPrefix selects a local MBTiles pack as provider, e.g. "mbtiles:./london.mbtiles".
const MBTilesPrefix = "mbtiles:"

// MBTilesSource serves tiles from one MBTiles file. The provider argument is ignored.
type MBTilesSource struct {
	reader *mbtiles.Reader
}

// OpenMBTiles opens path as a tile source.
func OpenMBTiles(path string) (*MBTilesSource, error) {
	r, err := mbtiles.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}
	return &MBTilesSource{reader: r}, nil
}

// FetchTiles reads every tile from the pack.
func (s *MBTilesSource) FetchTiles(ctx context.Context, tiles []tile.Coords, _ string) ([][]byte, error) {
	out := make([][]byte, len(tiles))
	for i, c := range tiles {
		data, err := s.reader.ReadTile(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("%w: %s from %s: %v", types.ErrTileFetchFailed, c, s.reader.Path(), err)
		}
		out[i] = data
	}
	return out, nil
}

// Metadata returns the pack's metadata.
func (s *MBTilesSource) Metadata() (mbtiles.Metadata, error) {
	return s.reader.Metadata()
}

// Close releases the underlying database.
func (s *MBTilesSource) Close() error {
	return s.reader.Close()
}

// Mux routes "mbtiles:<path>" providers to MBTiles packs and everything else to HTTP.
// Packs are opened on first use and stay open until Close.
type Mux struct {
	HTTP   Source
	Logger *slog.Logger

	mu    sync.Mutex
	packs map[string]*MBTilesSource
}

// NewMux creates a Mux backed by the given HTTP source.
func NewMux(web Source, logger *slog.Logger) *Mux {
	return &Mux{HTTP: web, Logger: logger}
}

// FetchTiles dispatches on the provider.
func (m *Mux) FetchTiles(ctx context.Context, tiles []tile.Coords, provider string) ([][]byte, error) {
	path, ok := strings.CutPrefix(provider, MBTilesPrefix)
	if !ok {
		if m.HTTP == nil {
			return nil, fmt.Errorf("%w: no HTTP tile source configured for %q", types.ErrInvalidInput, provider)
		}
		return m.HTTP.FetchTiles(ctx, tiles, provider)
	}

	pack, err := m.pack(path)
	if err != nil {
		return nil, err
	}
	return pack.FetchTiles(ctx, tiles, provider)
}

// Attribution returns the copyright notice to show with maps from provider: the pack's
// own attribution for mbtiles providers, the registry entry otherwise. Raw URL
// templates have none.
func (m *Mux) Attribution(provider string) (string, error) {
	if path, ok := strings.CutPrefix(provider, MBTilesPrefix); ok {
		pack, err := m.pack(path)
		if err != nil {
			return "", err
		}
		meta, err := pack.Metadata()
		if err != nil {
			return "", fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
		}
		return meta.Attribution, nil
	}

	p, err := Lookup(provider)
	if err != nil {
		return "", err
	}
	return p.Attribution, nil
}

func (m *Mux) pack(path string) (*MBTilesSource, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: %q needs a file path", types.ErrInvalidInput, MBTilesPrefix)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.packs[path]; ok {
		return p, nil
	}
	p, err := OpenMBTiles(path)
	if err != nil {
		return nil, err
	}
	if m.packs == nil {
		m.packs = make(map[string]*MBTilesSource)
	}
	m.packs[path] = p
	m.log().Debug("opened tile pack", "path", path)
	return p, nil
}

// Close closes every opened pack.
func (m *Mux) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for path, p := range m.packs {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	m.packs = nil
	return errors.Join(errs...)
}

func (m *Mux) log() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
