// Package mbtiles reads and writes raster tile packs in the MBTiles format.
package mbtiles

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/mapstatic/internal/types"
)

// ErrTileNotFound is returned when the pack holds no tile at the requested address.
var ErrTileNotFound = errors.New("tile not found")

// Metadata contains MBTiles metadata fields.
type Metadata struct {
	Name        string // Human-readable tileset identifier
	Format      string // Tile data type (png, jpg, webp)
	Attribution string
	Description string
	Type        string // "baselayer" or "overlay"
	Version     string
	Bounds      types.BoundingBox
	Center      types.GeoPoint
	CenterZoom  int
	MinZoom     int
	MaxZoom     int
}

// ToMap converts Metadata to name/value rows. Empty fields are omitted.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	set := func(key, value string) {
		if value != "" {
			result[key] = value
		}
	}
	set("name", m.Name)
	set("format", m.Format)
	set("attribution", m.Attribution)
	set("description", m.Description)
	set("type", m.Type)
	set("version", m.Version)

	if m.MinZoom > 0 || m.MaxZoom > 0 {
		result["minzoom"] = strconv.Itoa(m.MinZoom)
		result["maxzoom"] = strconv.Itoa(m.MaxZoom)
	}
	if m.Bounds != (types.BoundingBox{}) {
		result["bounds"] = m.Bounds.String()
	}
	if m.Center != (types.GeoPoint{}) {
		result["center"] = fmt.Sprintf("%s,%s,%d",
			strconv.FormatFloat(m.Center.Lng, 'f', -1, 64),
			strconv.FormatFloat(m.Center.Lat, 'f', -1, 64),
			m.CenterZoom)
	}

	return result
}

// ParseMetadata builds Metadata from name/value rows. Malformed numeric fields are ignored.
func ParseMetadata(rows map[string]string) Metadata {
	meta := Metadata{
		Name:        rows["name"],
		Format:      rows["format"],
		Attribution: rows["attribution"],
		Description: rows["description"],
		Type:        rows["type"],
		Version:     rows["version"],
	}

	if i, err := strconv.Atoi(rows["minzoom"]); err == nil {
		meta.MinZoom = i
	}
	if i, err := strconv.Atoi(rows["maxzoom"]); err == nil {
		meta.MaxZoom = i
	}

	if v, ok := rows["bounds"]; ok {
		if b, err := types.ParseBoundingBox(v); err == nil {
			meta.Bounds = b
		}
	}

	// center is "lng,lat,zoom"
	if v, ok := rows["center"]; ok {
		parts := strings.Split(v, ",")
		if len(parts) == 3 {
			lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			z, errZ := strconv.Atoi(strings.TrimSpace(parts[2]))
			if errLng == nil && errLat == nil && errZ == nil {
				meta.Center = types.GeoPoint{Lng: lng, Lat: lat}
				meta.CenterZoom = z
			}
		}
	}

	return meta
}

// tmsRow converts an XYZ row to the TMS row MBTiles stores.
func tmsRow(z, y int) int {
	return (1 << z) - 1 - y
}
