package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/mapstatic/internal/staticmap"
	"github.com/MeKo-Tech/mapstatic/internal/types"
)

// paramsFromQuery reads construction options from query parameters:
// width, height, bbox, lat, lng, zoom and provider.
func paramsFromQuery(q url.Values, defaultProvider string) (staticmap.Params, error) {
	var p staticmap.Params
	var err error

	if p.Width, err = intParam(q, "width"); err != nil {
		return p, err
	}
	if p.Height, err = intParam(q, "height"); err != nil {
		return p, err
	}
	p.BBox = strings.TrimSpace(q.Get("bbox"))

	if q.Has("lat") {
		v, err := floatParam(q, "lat")
		if err != nil {
			return p, err
		}
		p.Lat = &v
	}
	if q.Has("lng") {
		v, err := floatParam(q, "lng")
		if err != nil {
			return p, err
		}
		p.Lng = &v
	}
	if q.Has("zoom") {
		v, err := intParam(q, "zoom")
		if err != nil {
			return p, err
		}
		p.Zoom = &v
	}

	p.Provider = q.Get("provider")
	if p.Provider == "" {
		p.Provider = defaultProvider
	}
	return p, nil
}

func intParam(q url.Values, key string) (int, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", types.ErrInvalidInput, key, s)
	}
	return v, nil
}

func floatParam(q url.Values, key string) (float64, error) {
	s := strings.TrimSpace(q.Get(key))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", types.ErrInvalidInput, key, s)
	}
	return v, nil
}
