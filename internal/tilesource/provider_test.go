package tilesource

import (
	"testing"

	"github.com/MeKo-Tech/mapstatic/internal/tile"
	"github.com/MeKo-Tech/mapstatic/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name       string
		template   string
		subdomains string
		coords     tile.Coords
		want       string
	}{
		{
			name:     "plain",
			template: "https://tile.example.com/{z}/{x}/{y}.png",
			coords:   tile.NewCoords(12, 2046, 1362),
			want:     "https://tile.example.com/12/2046/1362.png",
		},
		{
			name:       "subdomain rotates with position",
			template:   "https://{s}.tile.example.com/{z}/{x}/{y}.png",
			subdomains: "abc",
			coords:     tile.NewCoords(3, 1, 1),
			want:       "https://c.tile.example.com/3/1/1.png",
		},
		{
			name:       "negative row still picks a subdomain",
			template:   "https://{s}.example.com/{z}/{x}/{y}",
			subdomains: "ab",
			coords:     tile.NewCoords(3, 0, -1),
			want:       "https://b.example.com/3/0/-1",
		},
		{
			name:     "no subdomains leaves placeholder",
			template: "https://{s}.example.com/{z}/{x}/{y}",
			coords:   tile.NewCoords(1, 0, 0),
			want:     "https://{s}.example.com/1/0/0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildURL(tt.template, tt.subdomains, tt.coords))
		})
	}
}

func TestLookup(t *testing.T) {
	p, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProvider, p.Name)

	for _, name := range Providers() {
		p, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Contains(t, p.URLTemplate, "{z}")
	}

	p, err = Lookup("https://tiles.example.com/{z}/{x}/{y}.png")
	require.NoError(t, err)
	assert.Equal(t, "https://tiles.example.com/4/5/6.png", p.URL(tile.NewCoords(4, 5, 6)))

	_, err = Lookup("https://tiles.example.com/{z}/{x}.png")
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = Lookup("nonexistent")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestProvidersSorted(t *testing.T) {
	assert.Equal(t, []string{"carto-dark", "carto-light", "opentopomap", "osm", "osm-hot"}, Providers())
}
