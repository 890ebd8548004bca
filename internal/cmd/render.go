package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/mapstatic/internal/staticmap"
	"github.com/MeKo-Tech/mapstatic/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a static map image",
	Long: `Render a static map image from raster tiles.

Bounding box mode picks the zoom that fits the box into the requested size:
  mapstatic render --bbox -0.2,51.4,0.1,51.6 --width 600 --height 400 -o london.png

Center mode uses an explicit zoom; without a size it renders the containing tile:
  mapstatic render --lat 51.5 --lng -0.12 --zoom 12 --width 256 --height 256 -o london.jpg

The output format follows the file extension (png, jpg, jpeg, gif, tif, tiff, bmp).`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	addViewportFlags(renderCmd, "render")
	renderCmd.Flags().StringP("output", "o", "map.png", "Output image path")
	renderCmd.Flags().Bool("progress", false, "Show tile download progress")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, renderCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("render.output", "output")
	mustBind("render.progress", "progress")
}

func runRender(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	output := viper.GetString("render.output")
	params := paramsFromConfig(viper.GetViper(), "render")

	// The viewport is resolved once without a source to size the progress bar.
	sizing, err := staticmap.New(params, nil, logger)
	if err != nil {
		return err
	}
	meta := sizing.Metadata()

	progress := worker.NewProgress(meta.TileCount, viper.GetBool("render.progress"))
	source := newTileSource(viper.GetViper(), progress.Callback())
	defer func() {
		if err := source.Close(); err != nil {
			logger.Warn("failed to close tile source", "error", err)
		}
	}()

	m, err := staticmap.New(params, source, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	attribution, err := source.Attribution(params.Provider)
	if err != nil {
		return err
	}

	logger.Info("Rendering map",
		"bbox", meta.BBox,
		"zoom", meta.Zoom,
		"width", meta.Width,
		"height", meta.Height,
		"tile_count", meta.TileCount,
		"provider", params.Provider,
		"attribution", attribution,
		"output", output,
	)

	if err := m.RenderToFile(ctx, output); err != nil {
		return err
	}
	progress.Done()
	logger.Info(progress.Summary())
	return nil
}
