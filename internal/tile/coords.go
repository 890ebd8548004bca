// Package tile holds the tile identity, the Web Mercator tile-space conversions,
// and the planner that lays a viewport out on the tile grid.
package tile

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/mapstatic/internal/types"
	"github.com/paulmach/orb/maptile"
)

const (
	// Size is the edge length of one raster tile in pixels.
	Size = 256
	// MaxZoom is the highest zoom level any provider is expected to serve.
	MaxZoom = 21
)

// Coords represents a tile coordinate in the Web Mercator tile system (z/x/y).
// X and Y are not clamped here; grids wrap X and skip rows outside [0, 2^Z) before fetching.
type Coords struct {
	Z int // Zoom level (0-21)
	X int // Tile column (west to east)
	Y int // Tile row (north to south)
}

// NewCoords creates a new Coords from zoom, x, y values.
func NewCoords(z, x, y int) Coords {
	return Coords{Z: z, X: x, Y: y}
}

// String returns the tile coordinate as a string in format "z{zoom}_x{x}_y{y}".
func (c Coords) String() string {
	return fmt.Sprintf("z%d_x%d_y%d", c.Z, c.X, c.Y)
}

// Valid reports whether the tile lies on the grid of its zoom level.
func (c Coords) Valid() bool {
	if c.Z < 0 || c.Z > MaxZoom {
		return false
	}
	n := 1 << c.Z
	return c.X >= 0 && c.X < n && c.Y >= 0 && c.Y < n
}

// Tile returns the maptile.Tile for this coordinate. Only meaningful when Valid.
func (c Coords) Tile() maptile.Tile {
	return maptile.New(uint32(c.X), uint32(c.Y), maptile.Zoom(c.Z))
}

// Bounds returns the geographic bounding box covered by the tile.
// Rows outside the grid fall back to the raw conversions.
func (c Coords) Bounds() types.BoundingBox {
	if c.Valid() {
		return types.FromBound(c.Tile().Bound())
	}
	x, y := float64(c.X), float64(c.Y)
	return types.BoundingBox{
		Left:   XToLng(x, c.Z),
		Bottom: YToLat(y+1, c.Z),
		Right:  XToLng(x+1, c.Z),
		Top:    YToLat(y, c.Z),
	}
}

// Wrapped returns the coordinate with X folded into [0, 2^Z); the world repeats horizontally.
func (c Coords) Wrapped() Coords {
	n := 1 << c.Z
	c.X = ((c.X % n) + n) % n
	return c
}

// At returns the tile that contains the point at the given zoom.
func At(p types.GeoPoint, zoom int) Coords {
	x := int(math.Floor(LngToX(p.Lng, zoom)))
	y := int(math.Floor(LatToY(p.Lat, zoom)))
	return NewCoords(zoom, x, y)
}
