package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MeKo-Tech/mapstatic/internal/staticmap"
	"github.com/MeKo-Tech/mapstatic/internal/tilesource"
	"github.com/MeKo-Tech/mapstatic/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var viewportKeys = []string{"width", "height", "bbox", "lat", "lng", "zoom", "provider"}

// addViewportFlags registers the construction options on c and binds them under section.
func addViewportFlags(c *cobra.Command, section string) {
	f := c.Flags()
	f.Int("width", 0, "Output width in pixels")
	f.Int("height", 0, "Output height in pixels")
	f.String("bbox", "", "Bounding box: left,bottom,right,top (e.g. \"9.7,52.3,9.9,52.4\")")
	f.Float64("lat", 0, "Center latitude (center mode)")
	f.Float64("lng", 0, "Center longitude (center mode)")
	f.IntP("zoom", "z", 0, "Zoom level 0-21 (center mode)")
	f.String("provider", tilesource.DefaultProvider,
		"Tile provider: a registered name, a URL template with {z}/{x}/{y}, or mbtiles:<path>")

	for _, name := range viewportKeys {
		if err := viper.BindPFlag(section+"."+name, f.Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
		}
	}
}

// paramsFromConfig collects the construction options stored under section.
// lat, lng and zoom are only set when given, so an explicit zero stays distinct from absent.
func paramsFromConfig(v *viper.Viper, section string) staticmap.Params {
	key := func(name string) string { return section + "." + name }

	p := staticmap.Params{
		Width:    v.GetInt(key("width")),
		Height:   v.GetInt(key("height")),
		BBox:     v.GetString(key("bbox")),
		Provider: v.GetString(key("provider")),
	}
	if p.Provider == "" {
		p.Provider = tilesource.DefaultProvider
	}
	if v.IsSet(key("lat")) {
		lat := v.GetFloat64(key("lat"))
		p.Lat = &lat
	}
	if v.IsSet(key("lng")) {
		lng := v.GetFloat64(key("lng"))
		p.Lng = &lng
	}
	if v.IsSet(key("zoom")) {
		zoom := v.GetInt(key("zoom"))
		p.Zoom = &zoom
	}
	return p
}

// newTileSource builds the source shared by all commands: HTTP providers plus mbtiles packs.
func newTileSource(v *viper.Viper, onProgress worker.ProgressFunc) *tilesource.Mux {
	web := tilesource.NewHTTPSource(tilesource.HTTPConfig{
		UserAgent:  v.GetString("tiles.user_agent"),
		Workers:    v.GetInt("tiles.workers"),
		Timeout:    v.GetDuration("tiles.timeout"),
		OnProgress: onProgress,
		Logger:     logger,
	})
	return tilesource.NewMux(web, logger)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
