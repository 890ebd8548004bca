// Package tilesource retrieves encoded raster tiles for a list of tile addresses.
package tilesource

import (
	"context"

	"github.com/MeKo-Tech/mapstatic/internal/tile"
)

// Source returns the encoded bytes of every requested tile, in request order.
// Any missing tile fails the whole call; implementations never return a short slice with a nil error.
type Source interface {
	FetchTiles(ctx context.Context, tiles []tile.Coords, provider string) ([][]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, tiles []tile.Coords, provider string) ([][]byte, error)

// FetchTiles calls f.
func (f SourceFunc) FetchTiles(ctx context.Context, tiles []tile.Coords, provider string) ([][]byte, error) {
	return f(ctx, tiles, provider)
}
