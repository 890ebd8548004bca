package tile

import "math"

// Conversions between WGS84 degrees and fractional tile-grid units on the
// spherical Web Mercator pyramid. One unit is one tile; the world spans 2^zoom units.

func worldTiles(zoom int) float64 {
	return math.Exp2(float64(zoom))
}

// LngToX returns the fractional tile column of a longitude.
func LngToX(lng float64, zoom int) float64 {
	return ((lng + 180) / 360) * worldTiles(zoom)
}

// XToLng is the inverse of LngToX.
func XToLng(x float64, zoom int) float64 {
	return x/worldTiles(zoom)*360 - 180
}

// LatToY returns the fractional tile row of a latitude. Row 0 is the northern edge.
func LatToY(lat float64, zoom int) float64 {
	sin := math.Sin(lat * math.Pi / 180)
	return (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * worldTiles(zoom)
}

// YToLat is the inverse of LatToY.
func YToLat(y float64, zoom int) float64 {
	n := math.Pi - 2*math.Pi*y/worldTiles(zoom)
	return 180 / math.Pi * math.Atan(math.Sinh(n))
}
