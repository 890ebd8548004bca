// Package composite is the image engine behind map assembly: it decodes tile
// bytes, lays tiles onto a transparent canvas, crops, and encodes the result.
package composite

import (
	"fmt"
	"image"

	"github.com/MeKo-Tech/mapstatic/internal/types"
	"github.com/disintegration/gift"
	xdraw "golang.org/x/image/draw"
)

// NewCanvas returns a fully transparent width x height canvas.
func NewCanvas(width, height int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, width, height))
}

// Paste composites src over dst with its top-left corner at the given point.
func Paste(dst *image.NRGBA, src image.Image, at image.Point) {
	sb := src.Bounds()
	r := image.Rectangle{Min: at, Max: at.Add(sb.Size())}
	xdraw.Draw(dst, r, src, sb.Min, xdraw.Over)
}

// Crop copies rect out of img into a new image with its origin at (0, 0).
// rect must lie inside img; a partially covered rectangle would silently shrink the output.
func Crop(img image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	if rect.Empty() {
		return nil, fmt.Errorf("%w: empty crop rectangle %v", types.ErrInvalidInput, rect)
	}
	if !rect.In(img.Bounds()) {
		return nil, fmt.Errorf("%w: crop %v outside image bounds %v", types.ErrInvalidInput, rect, img.Bounds())
	}

	g := gift.New(gift.Crop(rect))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst, nil
}
