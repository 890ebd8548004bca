// Package staticmap assembles a static map image from raster tiles.
package staticmap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/mapstatic/internal/composite"
	"github.com/MeKo-Tech/mapstatic/internal/tile"
	"github.com/MeKo-Tech/mapstatic/internal/tilesource"
	"github.com/MeKo-Tech/mapstatic/internal/types"
	"github.com/MeKo-Tech/mapstatic/internal/viewport"
)

// Metadata describes a resolved map without rendering it.
type Metadata struct {
	BBox      string `json:"bbox"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Zoom      int    `json:"zoom"`
	TileCount int    `json:"tile_count"`
}

// Map is one static map request. The viewport is resolved once, in New; a Map
// can be rendered any number of times and is safe for concurrent use.
type Map struct {
	view     viewport.Resolved
	provider string
	source   tilesource.Source
	logger   *slog.Logger
}

// New validates params and resolves the viewport. source may be nil when only
// Metadata is needed.
func New(params Params, source tilesource.Source, logger *slog.Logger) (*Map, error) {
	spec, err := params.Spec()
	if err != nil {
		return nil, err
	}
	view, err := viewport.Resolve(spec)
	if err != nil {
		return nil, err
	}

	return &Map{
		view:     view,
		provider: params.Provider,
		source:   source,
		logger:   logger,
	}, nil
}

// Viewport returns the resolved viewport.
func (m *Map) Viewport() viewport.Resolved {
	return m.view
}

// Metadata returns the resolved bbox, size, zoom and tile count. It does not fetch tiles.
func (m *Map) Metadata() Metadata {
	return Metadata{
		BBox:      m.view.BBox.String(),
		Width:     m.view.Width,
		Height:    m.view.Height,
		Zoom:      m.view.Zoom,
		TileCount: m.view.TileCount(),
	}
}

// Render fetches the tiles, lays them out on a whole-tile canvas and crops it
// to the viewport. Any failure aborts the render; no partial image is returned.
func (m *Map) Render(ctx context.Context) (*image.NRGBA, error) {
	if m.source == nil {
		return nil, fmt.Errorf("%w: no tile source configured", types.ErrInvalidInput)
	}

	start := time.Now()
	grid := m.view.Grid
	tiles := grid.Tiles()

	data, err := m.source.FetchTiles(ctx, tiles, m.provider)
	if err != nil {
		return nil, fetchError(err)
	}
	if len(data) != len(tiles) {
		return nil, fmt.Errorf("%w: tile source returned %d of %d tiles", types.ErrTileFetchFailed, len(data), len(tiles))
	}

	canvasW, canvasH := grid.CanvasSize()
	canvas := composite.NewCanvas(canvasW, canvasH)

	for i, raw := range data {
		img, err := composite.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("tile %s: %w", tiles[i], err)
		}
		if b := img.Bounds(); b.Dx() != tile.Size || b.Dy() != tile.Size {
			return nil, fmt.Errorf("%w: tile %s is %dx%d, want %dx%d",
				types.ErrDecodeFailed, tiles[i], b.Dx(), b.Dy(), tile.Size, tile.Size)
		}

		col, row := grid.Position(i)
		composite.Paste(canvas, img, image.Pt(col*tile.Size, row*tile.Size))
	}

	out, err := composite.Crop(canvas, grid.CropRect(m.view.Width, m.view.Height))
	if err != nil {
		return nil, err
	}

	m.log().Debug("rendered map",
		"zoom", m.view.Zoom,
		"tile_count", len(tiles),
		"width", m.view.Width,
		"height", m.view.Height,
		"provider", m.provider,
		"duration_ms", time.Since(start).Milliseconds())

	return out, nil
}

// Encode renders the map and writes it to w in the given format.
// Nothing is written to w unless rendering and encoding both succeed.
func (m *Map) Encode(ctx context.Context, w io.Writer, format composite.Format) error {
	img, err := m.Render(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := composite.Encode(&buf, img, format); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

// RenderToFile renders the map and writes it to path, choosing the format from the
// extension. The file is replaced atomically; a failed render leaves no file behind.
func (m *Map) RenderToFile(ctx context.Context, path string) error {
	format, err := composite.FormatFromPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := m.Encode(ctx, &buf, format); err != nil {
		return err
	}

	size := buf.Len()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".mapstatic-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := buf.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	m.log().Info("map written", "path", path, "format", string(format), "bytes", size)
	return nil
}

// fetchError keeps typed errors from the source and classifies everything else as a fetch failure.
func fetchError(err error) error {
	for _, kind := range []error{types.ErrTileFetchFailed, types.ErrInvalidInput, types.ErrDecodeFailed, types.ErrUnsupportedZoom} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", types.ErrTileFetchFailed, err)
}

func (m *Map) log() *slog.Logger {
	if m.logger != nil {
		return m.logger
	}
	return slog.Default()
}
