package viewport

import (
	"testing"

	"github.com/MeKo-Tech/mapstatic/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamicZoom(t *testing.T) {
	tests := []struct {
		name   string
		bbox   types.BoundingBox
		width  int
		height int
		want   int
	}{
		{
			name:  "london",
			bbox:  types.BoundingBox{Left: -0.2, Bottom: 51.4, Right: 0.1, Top: 51.6},
			width: 600, height: 400,
			want: 10,
		},
		{
			name:  "antimeridian",
			bbox:  types.BoundingBox{Left: 170, Bottom: -10, Right: -170, Top: 10},
			width: 600, height: 400,
			want: 4,
		},
		{
			name:  "hanover square",
			bbox:  types.BoundingBox{Left: 9.7, Bottom: 52.3, Right: 9.9, Top: 52.4},
			width: 512, height: 512,
			want: 11,
		},
		{
			name:  "whole world clamps to zero",
			bbox:  types.BoundingBox{Left: -180, Bottom: -85, Right: 179.9, Top: 85},
			width: 64, height: 64,
			want: 0,
		},
		{
			name:  "tiny box clamps to max zoom",
			bbox:  types.BoundingBox{Left: 9.7, Bottom: 52.3, Right: 9.7000001, Top: 52.3000001},
			width: 1024, height: 1024,
			want: 21,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DynamicZoom(tt.bbox, tt.width, tt.height)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDynamicZoomIsDeterministic(t *testing.T) {
	bbox := types.BoundingBox{Left: -0.2, Bottom: 51.4, Right: 0.1, Top: 51.6}
	first, err := DynamicZoom(bbox, 600, 400)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		got, err := DynamicZoom(bbox, 600, 400)
		require.NoError(t, err)
		assert.Equal(t, first, got, "run %d", i)
	}
}

func TestDynamicZoomRejectsDegenerateInput(t *testing.T) {
	tests := []struct {
		name   string
		bbox   types.BoundingBox
		width  int
		height int
	}{
		{"zero width box", types.BoundingBox{Left: 1, Bottom: 1, Right: 1, Top: 2}, 256, 256},
		{"zero height box", types.BoundingBox{Left: 1, Bottom: 2, Right: 2, Top: 2}, 256, 256},
		{"inverted latitudes", types.BoundingBox{Left: 1, Bottom: 3, Right: 2, Top: 2}, 256, 256},
		{"zero pixels", types.BoundingBox{Left: 1, Bottom: 1, Right: 2, Top: 2}, 0, 256},
		{"negative pixels", types.BoundingBox{Left: 1, Bottom: 1, Right: 2, Top: 2}, 256, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DynamicZoom(tt.bbox, tt.width, tt.height)
			assert.ErrorIs(t, err, types.ErrInvalidInput)
		})
	}
}
