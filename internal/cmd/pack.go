package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/MeKo-Tech/mapstatic/internal/mbtiles"
	"github.com/MeKo-Tech/mapstatic/internal/staticmap"
	"github.com/MeKo-Tech/mapstatic/internal/tilesource"
	"github.com/MeKo-Tech/mapstatic/internal/viewport"
	"github.com/MeKo-Tech/mapstatic/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Store the tiles of a viewport in an MBTiles file",
	Long: `Fetch every tile a viewport needs and store them in an MBTiles pack.

The pack can later be rendered offline with --provider mbtiles:<path>:
  mapstatic pack --bbox 9.7,52.3,9.9,52.4 --width 512 --height 512 -o hanover.mbtiles
  mapstatic render --bbox 9.7,52.3,9.9,52.4 --width 512 --height 512 --provider mbtiles:hanover.mbtiles`,
	RunE: runPack,
}

func init() {
	rootCmd.AddCommand(packCmd)

	addViewportFlags(packCmd, "pack")
	packCmd.Flags().StringP("output", "o", "tiles.mbtiles", "Output MBTiles path")
	packCmd.Flags().Bool("gzip", false, "Store tile blobs gzip-compressed")
	packCmd.Flags().Bool("progress", true, "Show tile download progress")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, packCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("pack.output", "output")
	mustBind("pack.gzip", "gzip")
	mustBind("pack.progress", "progress")
}

func runPack(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	output := viper.GetString("pack.output")
	if output == "" {
		return fmt.Errorf("--output is required")
	}
	params := paramsFromConfig(viper.GetViper(), "pack")

	m, err := staticmap.New(params, nil, logger)
	if err != nil {
		return err
	}
	view := m.Viewport()

	progress := worker.NewProgress(view.TileCount(), viper.GetBool("pack.progress"))
	source := newTileSource(viper.GetViper(), progress.Callback())
	defer func() {
		if err := source.Close(); err != nil {
			logger.Warn("failed to close tile source", "error", err)
		}
	}()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	logger.Info("Packing tiles",
		"bbox", view.BBox.String(),
		"zoom", view.Zoom,
		"tile_count", view.TileCount(),
		"provider", params.Provider,
		"output", output,
	)

	attribution, err := source.Attribution(params.Provider)
	if err != nil {
		return err
	}

	meta, written, err := writePack(ctx, output, view, source, params.Provider, attribution, viper.GetBool("pack.gzip"))
	if err != nil {
		return err
	}
	progress.Done()

	logger.Info("MBTiles pack written",
		"output", output,
		"format", meta.Format,
		"tiles_written", written,
		"summary", progress.Summary(),
	)
	return nil
}

// writePack fetches the viewport's tiles from source and stores them at path.
// It returns the stored metadata and the number of tiles written.
func writePack(ctx context.Context, path string, view viewport.Resolved, source tilesource.Source, provider, attribution string, compress bool) (mbtiles.Metadata, int, error) {
	tiles := view.Tiles()
	data, err := source.FetchTiles(ctx, tiles, provider)
	if err != nil {
		return mbtiles.Metadata{}, 0, err
	}
	if len(data) != len(tiles) {
		return mbtiles.Metadata{}, 0, fmt.Errorf("tile source returned %d tiles, expected %d", len(data), len(tiles))
	}

	meta := mbtiles.Metadata{
		Name:        provider,
		Format:      tileFormat(data[0]),
		Attribution: attribution,
		Description: fmt.Sprintf("%s at zoom %d", view.BBox, view.Zoom),
		Type:        "baselayer",
		Version:     "1.0.0",
		Bounds:      view.BBox,
		Center:      view.BBox.Center(),
		CenterZoom:  view.Zoom,
		MinZoom:     view.Zoom,
		MaxZoom:     view.Zoom,
	}

	var opts []mbtiles.Option
	if compress {
		opts = append(opts, mbtiles.WithGzip())
	}
	w, err := mbtiles.New(path, meta, opts...)
	if err != nil {
		return meta, 0, fmt.Errorf("failed to create MBTiles: %w", err)
	}

	for i, c := range tiles {
		if err := w.WriteTile(c, data[i]); err != nil {
			_ = w.Close()
			return meta, 0, fmt.Errorf("failed to write tile %s: %w", c, err)
		}
	}
	if err := w.Close(); err != nil {
		return meta, 0, fmt.Errorf("failed to close MBTiles: %w", err)
	}
	return meta, w.Written(), nil
}

// tileFormat names the MBTiles format of an encoded tile.
func tileFormat(data []byte) string {
	switch ct := http.DetectContentType(data); {
	case ct == "image/jpeg":
		return "jpg"
	case ct == "image/webp":
		return "webp"
	case strings.HasPrefix(ct, "image/"):
		return strings.TrimPrefix(ct, "image/")
	default:
		return "png"
	}
}
