package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// GeoPoint is a WGS84 position in degrees.
type GeoPoint struct {
	Lng float64
	Lat float64
}

// String returns the point as "lat,lng".
func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// BoundingBox represents a geographic bounding box in WGS84 (EPSG:4326).
// Right may be smaller than Left when the box crosses the antimeridian.
type BoundingBox struct {
	Left   float64 // Western edge (degrees)
	Bottom float64 // Southern edge (degrees)
	Right  float64 // Eastern edge (degrees)
	Top    float64 // Northern edge (degrees)
}

// ParseBoundingBox parses "left,bottom,right,top".
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("%w: bbox expects 4 comma-separated values, got %d", ErrInvalidInput, len(parts))
	}

	var vals [4]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("%w: invalid bbox number at position %d: %v", ErrInvalidInput, i, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return BoundingBox{}, fmt.Errorf("%w: bbox value at position %d is not finite", ErrInvalidInput, i)
		}
		vals[i] = v
	}

	return BoundingBox{Left: vals[0], Bottom: vals[1], Right: vals[2], Top: vals[3]}, nil
}

// String formats the box as "left,bottom,right,top", the same form ParseBoundingBox reads.
func (b BoundingBox) String() string {
	vals := []float64{b.Left, b.Bottom, b.Right, b.Top}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// CrossesAntimeridian reports whether the box wraps past 180°.
func (b BoundingBox) CrossesAntimeridian() bool {
	return b.Right < b.Left
}

// Center returns the midpoint of the box in degrees.
// The longitude is normalized to [-180, 180) for antimeridian boxes.
func (b BoundingBox) Center() GeoPoint {
	right := b.Right
	if b.CrossesAntimeridian() {
		right += 360
	}
	lng := (b.Left + right) / 2
	if lng >= 180 {
		lng -= 360
	}
	return GeoPoint{Lng: lng, Lat: (b.Bottom + b.Top) / 2}
}

// FromBound builds a BoundingBox from an orb.Bound.
func FromBound(bound orb.Bound) BoundingBox {
	return BoundingBox{
		Left:   bound.Min.Lon(),
		Bottom: bound.Min.Lat(),
		Right:  bound.Max.Lon(),
		Top:    bound.Max.Lat(),
	}
}
