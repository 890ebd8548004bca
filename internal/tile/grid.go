package tile

import (
	"image"
	"math"

	"github.com/MeKo-Tech/mapstatic/internal/types"
)

// edgeEpsilon absorbs float noise so an edge lying on a tile boundary
// does not pull in a neighbouring row or column.
const edgeEpsilon = 1e-6

// Grid is the minimal rectangle of whole tiles covering a bounding box at one zoom,
// plus the position of the box inside it. Column indices are unwrapped: a box that
// crosses the antimeridian has MaxX >= 2^Zoom and Tiles folds them back.
type Grid struct {
	Zoom       int
	MinX, MaxX int // inclusive column range
	MinY, MaxY int // inclusive row range

	// Box edges in fractional tile units.
	Left, Top, Right, Bottom float64
}

// Plan computes the tile grid covering bbox at zoom.
func Plan(bbox types.BoundingBox, zoom int) Grid {
	left := LngToX(bbox.Left, zoom)
	right := LngToX(bbox.Right, zoom)
	if bbox.CrossesAntimeridian() {
		right += worldTiles(zoom)
	}
	top := LatToY(bbox.Top, zoom)
	bottom := LatToY(bbox.Bottom, zoom)
	return Span(zoom, left, top, right, bottom)
}

// Span computes the tile grid covering a box given directly in fractional tile units.
func Span(zoom int, left, top, right, bottom float64) Grid {
	minX, maxX := coverRange(left, right)
	minY, maxY := coverRange(top, bottom)

	return Grid{
		Zoom:   zoom,
		MinX:   minX,
		MaxX:   maxX,
		MinY:   minY,
		MaxY:   maxY,
		Left:   left,
		Top:    top,
		Right:  right,
		Bottom: bottom,
	}
}

// coverRange returns the integer tiles touched by the half-open span [lo, hi).
func coverRange(lo, hi float64) (int, int) {
	first := int(math.Floor(lo + edgeEpsilon))
	last := int(math.Ceil(hi-edgeEpsilon)) - 1
	if last < first {
		last = first
	}
	return first, last
}

// Columns returns the number of tile columns.
func (g Grid) Columns() int {
	return g.MaxX - g.MinX + 1
}

// Rows returns the number of tile rows.
func (g Grid) Rows() int {
	return g.MaxY - g.MinY + 1
}

// worldRows returns the rows of the grid that exist at its zoom. Rows above the
// north edge or below the south edge of the world stay empty on the canvas.
func (g Grid) worldRows() (first, last int) {
	first, last = g.MinY, g.MaxY
	if first < 0 {
		first = 0
	}
	if n := 1 << g.Zoom; last > n-1 {
		last = n - 1
	}
	return first, last
}

// Count returns the number of tiles to fetch.
func (g Grid) Count() int {
	first, last := g.worldRows()
	if last < first {
		return 0
	}
	return g.Columns() * (last - first + 1)
}

// Tiles returns the tiles to fetch in row-major order: rows north to south, columns
// west to east. Position maps the i-th tile back onto the canvas.
func (g Grid) Tiles() []Coords {
	first, last := g.worldRows()
	tiles := make([]Coords, 0, g.Count())
	for y := first; y <= last; y++ {
		for x := g.MinX; x <= g.MaxX; x++ {
			tiles = append(tiles, NewCoords(g.Zoom, x, y).Wrapped())
		}
	}
	return tiles
}

// Position returns the canvas column and row of the i-th tile of Tiles.
func (g Grid) Position(i int) (col, row int) {
	first, _ := g.worldRows()
	return i % g.Columns(), i/g.Columns() + first - g.MinY
}

// CanvasSize returns the pixel size of the uncropped whole-tile canvas.
func (g Grid) CanvasSize() (width, height int) {
	return g.Columns() * Size, g.Rows() * Size
}

// CropRect returns the width x height rectangle of the canvas whose top-left corner
// is the box's top-left corner. The offset is the fractional part of the box edge in
// tile units, scaled to pixels; it is clamped so the rectangle stays inside the canvas.
func (g Grid) CropRect(width, height int) image.Rectangle {
	canvasW, canvasH := g.CanvasSize()
	x := cropOffset(g.Left-float64(g.MinX), width, canvasW)
	y := cropOffset(g.Top-float64(g.MinY), height, canvasH)
	return image.Rect(x, y, x+width, y+height)
}

func cropOffset(fraction float64, length, canvas int) int {
	off := int(math.Round(fraction * Size))
	if off > Size-1 {
		off = Size - 1
	}
	if off > canvas-length {
		off = canvas - length
	}
	if off < 0 {
		off = 0
	}
	return off
}
