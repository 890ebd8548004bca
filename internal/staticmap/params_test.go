package staticmap

import (
	"math"
	"testing"

	"github.com/MeKo-Tech/mapstatic/internal/types"
	"github.com/MeKo-Tech/mapstatic/internal/viewport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsSpec(t *testing.T) {
	t.Run("bbox mode", func(t *testing.T) {
		spec, err := Params{BBox: "-0.2,51.4,0.1,51.6", Width: 600, Height: 400}.Spec()
		require.NoError(t, err)
		assert.Equal(t, viewport.BBoxSpec{
			BBox:  types.BoundingBox{Left: -0.2, Bottom: 51.4, Right: 0.1, Top: 51.6},
			Width: 600, Height: 400,
		}, spec)
	})

	t.Run("center mode", func(t *testing.T) {
		spec, err := Params{Lat: ptr(51.5), Lng: ptr(-0.12), Zoom: ptr(12)}.Spec()
		require.NoError(t, err)
		assert.Equal(t, viewport.CenterSpec{Center: types.GeoPoint{Lng: -0.12, Lat: 51.5}, Zoom: 12}, spec)
	})

	t.Run("zero coordinates are set values", func(t *testing.T) {
		spec, err := Params{Lat: ptr(0.0), Lng: ptr(0.0), Zoom: ptr(0)}.Spec()
		require.NoError(t, err)
		assert.Equal(t, viewport.CenterSpec{}, spec)
	})
}

func TestParamsSpecErrors(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		message string
	}{
		{"nothing", Params{}, "either bbox"},
		{"bbox and center", Params{BBox: "0,0,1,1", Width: 10, Height: 10, Lat: ptr(1.0)}, "cannot be combined with lat"},
		{"bbox without size", Params{BBox: "0,0,1,1"}, "requires width and height"},
		{"bbox with one dimension", Params{BBox: "0,0,1,1", Width: 100}, "requires width and height"},
		{"malformed bbox", Params{BBox: "0,0,1", Width: 10, Height: 10}, "4 comma-separated"},
		{"center missing zoom", Params{Lat: ptr(1.0), Lng: ptr(1.0)}, "missing zoom"},
		{"center missing lat and lng", Params{Zoom: ptr(3)}, "missing lat, lng"},
		{"latitude out of range", Params{Lat: ptr(91.0), Lng: ptr(0.0), Zoom: ptr(1)}, "lat fails lte=90"},
		{"nan longitude", Params{Lat: ptr(0.0), Lng: ptr(math.NaN()), Zoom: ptr(1)}, "lng fails gte=-180"},
		{"negative width", Params{Lat: ptr(0.0), Lng: ptr(0.0), Zoom: ptr(1), Width: -1, Height: 10}, "width fails min=0"},
		{"huge height", Params{Lat: ptr(0.0), Lng: ptr(0.0), Zoom: ptr(1), Width: 10, Height: 20000}, "height fails max=10000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.params.Spec()
			require.ErrorIs(t, err, types.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
