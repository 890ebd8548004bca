package tile

import (
	"testing"

	"github.com/MeKo-Tech/mapstatic/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordsString(t *testing.T) {
	tests := []struct {
		coords   Coords
		expected string
	}{
		{Coords{Z: 12, X: 2046, Y: 1362}, "z12_x2046_y1362"},
		{Coords{Z: 0, X: 0, Y: 0}, "z0_x0_y0"},
		{Coords{Z: 3, X: -1, Y: 9}, "z3_x-1_y9"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.coords.String())
		})
	}
}

func TestCoordsValid(t *testing.T) {
	tests := []struct {
		coords Coords
		want   bool
	}{
		{Coords{Z: 0, X: 0, Y: 0}, true},
		{Coords{Z: 1, X: 1, Y: 1}, true},
		{Coords{Z: 1, X: 2, Y: 0}, false},
		{Coords{Z: 4, X: -1, Y: 3}, false},
		{Coords{Z: 4, X: 3, Y: 16}, false},
		{Coords{Z: 22, X: 0, Y: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.coords.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coords.Valid())
		})
	}
}

func TestCoordsWrapped(t *testing.T) {
	tests := []struct {
		in   Coords
		want Coords
	}{
		{Coords{Z: 2, X: 1, Y: 1}, Coords{Z: 2, X: 1, Y: 1}},
		{Coords{Z: 2, X: 4, Y: 1}, Coords{Z: 2, X: 0, Y: 1}},
		{Coords{Z: 2, X: -1, Y: 1}, Coords{Z: 2, X: 3, Y: 1}},
		{Coords{Z: 2, X: 9, Y: -3}, Coords{Z: 2, X: 1, Y: -3}},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Wrapped())
		})
	}
}

func TestCoordsBounds(t *testing.T) {
	coords := Coords{Z: 12, X: 2046, Y: 1362}
	bounds := coords.Bounds()

	t.Logf("Tile %s bounds: %s", coords.String(), bounds.String())

	assert.Less(t, bounds.Left, bounds.Right)
	assert.Less(t, bounds.Bottom, bounds.Top)

	// The bounds must agree with the tile-space conversions.
	assert.InDelta(t, 2046.0, LngToX(bounds.Left, 12), 1e-9)
	assert.InDelta(t, 1362.0, LatToY(bounds.Top, 12), 1e-9)
	assert.InDelta(t, 1363.0, LatToY(bounds.Bottom, 12), 1e-9)
}

func TestAt(t *testing.T) {
	london := types.GeoPoint{Lng: -0.12, Lat: 51.5}
	got := At(london, 12)
	require.Equal(t, Coords{Z: 12, X: 2046, Y: 1362}, got)

	b := got.Bounds()
	assert.True(t, london.Lng >= b.Left && london.Lng <= b.Right && london.Lat >= b.Bottom && london.Lat <= b.Top,
		"tile %s does not contain %s", got, london)
}
