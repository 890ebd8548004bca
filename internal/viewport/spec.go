package viewport

import "github.com/MeKo-Tech/mapstatic/internal/types"

// Spec describes what the caller wants to see. It is either a BBoxSpec or a CenterSpec.
type Spec interface {
	viewSpec()
}

// BBoxSpec frames a bounding box into an image of exactly Width x Height pixels.
// The zoom is chosen automatically.
type BBoxSpec struct {
	BBox   types.BoundingBox
	Width  int
	Height int
}

// CenterSpec shows the area around Center at a fixed zoom.
// Width and Height are both set or both zero; zero means the single tile holding Center.
type CenterSpec struct {
	Center types.GeoPoint
	Zoom   int
	Width  int
	Height int
}

func (BBoxSpec) viewSpec()   {}
func (CenterSpec) viewSpec() {}

// HasSize reports whether an explicit pixel size was given.
func (s CenterSpec) HasSize() bool {
	return s.Width != 0 || s.Height != 0
}
