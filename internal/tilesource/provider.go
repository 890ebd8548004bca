package tilesource

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/mapstatic/internal/tile"
	"github.com/MeKo-Tech/mapstatic/internal/types"
)

// DefaultProvider is used when a request names no provider.
const DefaultProvider = "osm"

// Provider is an XYZ raster tile endpoint.
type Provider struct {
	Name        string
	URLTemplate string // {z}, {x}, {y} and optional {s}
	Subdomains  string // one letter per subdomain, e.g. "abc"
	Attribution string
}

var providers = map[string]Provider{
	"osm": {
		Name:        "osm",
		URLTemplate: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
	},
	"osm-hot": {
		Name:        "osm-hot",
		URLTemplate: "https://{s}.tile.openstreetmap.fr/hot/{z}/{x}/{y}.png",
		Subdomains:  "abc",
		Attribution: "© OpenStreetMap contributors, Humanitarian OpenStreetMap Team",
	},
	"opentopomap": {
		Name:        "opentopomap",
		URLTemplate: "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
		Subdomains:  "abc",
		Attribution: "© OpenStreetMap contributors, SRTM | © OpenTopoMap (CC-BY-SA)",
	},
	"carto-light": {
		Name:        "carto-light",
		URLTemplate: "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
		Subdomains:  "abcd",
		Attribution: "© OpenStreetMap contributors © CARTO",
	},
	"carto-dark": {
		Name:        "carto-dark",
		URLTemplate: "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png",
		Subdomains:  "abcd",
		Attribution: "© OpenStreetMap contributors © CARTO",
	},
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a provider name. Besides registered names it accepts a raw
// http(s) URL template containing {z}, {x} and {y}; an empty name means DefaultProvider.
func Lookup(name string) (Provider, error) {
	if name == "" {
		name = DefaultProvider
	}
	if p, ok := providers[name]; ok {
		return p, nil
	}

	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		for _, ph := range []string{"{z}", "{x}", "{y}"} {
			if !strings.Contains(name, ph) {
				return Provider{}, fmt.Errorf("%w: URL template %q lacks %s", types.ErrInvalidInput, name, ph)
			}
		}
		return Provider{Name: name, URLTemplate: name, Subdomains: "abc"}, nil
	}

	return Provider{}, fmt.Errorf("%w: unknown provider %q (known: %s)",
		types.ErrInvalidInput, name, strings.Join(Providers(), ", "))
}

// URL returns the address of tile c on this provider.
func (p Provider) URL(c tile.Coords) string {
	return BuildURL(p.URLTemplate, p.Subdomains, c)
}

// BuildURL fills an XYZ template. {s} rotates through subdomains by tile position
// so neighbouring tiles spread over hosts.
func BuildURL(template, subdomains string, c tile.Coords) string {
	url := template
	url = strings.ReplaceAll(url, "{z}", strconv.Itoa(c.Z))
	url = strings.ReplaceAll(url, "{x}", strconv.Itoa(c.X))
	url = strings.ReplaceAll(url, "{y}", strconv.Itoa(c.Y))
	if strings.Contains(url, "{s}") && subdomains != "" {
		i := (c.X + c.Y) % len(subdomains)
		if i < 0 {
			i += len(subdomains)
		}
		url = strings.ReplaceAll(url, "{s}", subdomains[i:i+1])
	}
	return url
}
