package viewport

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/mapstatic/internal/tile"
	"github.com/MeKo-Tech/mapstatic/internal/types"
)

// Resolved is the canonical viewport. It is computed once by Resolve and never mutated.
type Resolved struct {
	BBox   types.BoundingBox
	Width  int
	Height int
	Zoom   int
	Grid   tile.Grid
}

// TileCount returns the number of tiles needed to assemble the viewport.
func (r Resolved) TileCount() int {
	return r.Grid.Count()
}

// Tiles returns the tiles to fetch, in the order the assembler places them.
func (r Resolved) Tiles() []tile.Coords {
	return r.Grid.Tiles()
}

// Resolve validates spec and derives the canonical bounding box, pixel size, zoom and tile grid.
func Resolve(spec Spec) (Resolved, error) {
	switch s := spec.(type) {
	case BBoxSpec:
		return resolveBBox(s)
	case CenterSpec:
		return resolveCenter(s)
	case nil:
		return Resolved{}, fmt.Errorf("%w: no viewport given", types.ErrInvalidInput)
	default:
		return Resolved{}, fmt.Errorf("%w: unknown viewport %T", types.ErrInvalidInput, spec)
	}
}

func resolveBBox(s BBoxSpec) (Resolved, error) {
	b := s.BBox
	for _, lng := range []float64{b.Left, b.Right} {
		if err := checkLng(lng); err != nil {
			return Resolved{}, err
		}
	}
	for _, lat := range []float64{b.Bottom, b.Top} {
		if err := checkLat(lat); err != nil {
			return Resolved{}, err
		}
	}

	zoom, err := DynamicZoom(b, s.Width, s.Height)
	if err != nil {
		return Resolved{}, err
	}

	// Centre of the requested box in tile units.
	requested := tile.Plan(b, zoom)
	cx := (requested.Left + requested.Right) / 2
	cy := (requested.Top + requested.Bottom) / 2

	return framed(cx, cy, zoom, s.Width, s.Height), nil
}

func resolveCenter(s CenterSpec) (Resolved, error) {
	if s.Zoom < 0 || s.Zoom > tile.MaxZoom {
		return Resolved{}, fmt.Errorf("%w: zoom %d outside 0..%d", types.ErrUnsupportedZoom, s.Zoom, tile.MaxZoom)
	}
	if err := checkLat(s.Center.Lat); err != nil {
		return Resolved{}, err
	}
	if err := checkLng(s.Center.Lng); err != nil {
		return Resolved{}, err
	}

	if !s.HasSize() {
		c := tile.At(s.Center, s.Zoom).Wrapped()
		x, y := float64(c.X), float64(c.Y)
		grid := tile.Span(s.Zoom, x, y, x+1, y+1)
		width, height := grid.CanvasSize()
		return Resolved{BBox: c.Bounds(), Width: width, Height: height, Zoom: s.Zoom, Grid: grid}, nil
	}

	if s.Width <= 0 || s.Height <= 0 {
		return Resolved{}, fmt.Errorf("%w: width and height must both be positive, got %dx%d",
			types.ErrInvalidInput, s.Width, s.Height)
	}

	cx := tile.LngToX(s.Center.Lng, s.Zoom)
	cy := tile.LatToY(s.Center.Lat, s.Zoom)
	return framed(cx, cy, s.Zoom, s.Width, s.Height), nil
}

// framed builds the viewport of exactly width x height pixels centred on (cx, cy) in tile units.
// The frame is moved vertically so it never leaves the world; a frame taller than the world
// is centred on it and the missing rows stay transparent. The grid is planned in tile units
// so huge frames never pass through a pole latitude.
func framed(cx, cy float64, zoom, width, height int) Resolved {
	world := float64(int(1) << zoom)
	halfW := float64(width) / tile.Size / 2
	halfH := float64(height) / tile.Size / 2

	switch {
	case 2*halfH >= world:
		cy = world / 2
	case cy-halfH < 0:
		cy = halfH
	case cy+halfH > world:
		cy = world - halfH
	}
	x0, y0, x1, y1 := cx-halfW, cy-halfH, cx+halfW, cy+halfH

	left, right := normalizeLng(tile.XToLng(x0, zoom), tile.XToLng(x1, zoom))
	bbox := types.BoundingBox{
		Left:   left,
		Bottom: tile.YToLat(math.Min(y1, world), zoom),
		Right:  right,
		Top:    tile.YToLat(math.Max(y0, 0), zoom),
	}

	return Resolved{
		BBox:   bbox,
		Width:  width,
		Height: height,
		Zoom:   zoom,
		Grid:   tile.Span(zoom, x0, y0, x1, y1),
	}
}

// normalizeLng shifts an unwrapped span so left lies in [-180, 180).
// A span ending past 180 becomes an antimeridian box. A span of a full world or more
// is reported as the whole world.
func normalizeLng(left, right float64) (float64, float64) {
	if right-left >= 360 {
		return -180, 180
	}
	shift := math.Floor((left+180)/360) * 360
	left -= shift
	right -= shift
	if right > 180 {
		right -= 360
	}
	return left, right
}

func checkLat(lat float64) error {
	if !(lat > -90 && lat < 90) {
		return fmt.Errorf("%w: latitude %v outside (-90, 90)", types.ErrInvalidInput, lat)
	}
	return nil
}

func checkLng(lng float64) error {
	if !(lng >= -180 && lng <= 180) {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", types.ErrInvalidInput, lng)
	}
	return nil
}
