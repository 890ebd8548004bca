package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/mapstatic/internal/server"
	"github.com/MeKo-Tech/mapstatic/internal/tilesource"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve static maps over HTTP",
	Long: `Serve static maps over HTTP.

Endpoints:
  GET /healthz
  GET /map.{png|jpg|gif|tiff|bmp}?bbox=...&width=...&height=...
  GET /map.png?lat=...&lng=...&zoom=...[&width=...&height=...]
  GET /metadata?<same query>`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().Duration("timeout", 0, "Per-request timeout (default 30s)")
	serveCmd.Flags().String("cache-control", "", "Cache-Control header for rendered maps (default public, max-age=86400)")
	serveCmd.Flags().String("provider", tilesource.DefaultProvider, "Provider used when a request names none")
	serveCmd.Flags().Int("max-tiles", 0, "Reject viewports needing more tiles than this (default 400)")
	serveCmd.Flags().StringSlice("allow-provider", nil,
		"Providers requests may name; URL templates and mbtiles:<path> must be listed here (default: registered providers)")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("serve.addr", "addr")
	mustBind("serve.timeout", "timeout")
	mustBind("serve.cache_control", "cache-control")
	mustBind("serve.provider", "provider")
	mustBind("serve.max_tiles", "max-tiles")
	mustBind("serve.providers", "allow-provider")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	source := newTileSource(viper.GetViper(), nil)
	defer func() {
		if err := source.Close(); err != nil {
			logger.Warn("failed to close tile source", "error", err)
		}
	}()

	srv, err := server.New(server.Config{
		Addr:            viper.GetString("serve.addr"),
		Timeout:         viper.GetDuration("serve.timeout"),
		CacheControl:    viper.GetString("serve.cache_control"),
		DefaultProvider: viper.GetString("serve.provider"),
		MaxTiles:        viper.GetInt("serve.max_tiles"),
		Providers:       viper.GetStringSlice("serve.providers"),
		Version:         Version,
	}, source, logger)
	if err != nil {
		return err
	}

	cfg := srv.Config()
	logger.Debug("server configuration",
		"timeout", cfg.Timeout,
		"cache_control", cfg.CacheControl,
		"providers", cfg.Providers)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	return srv.ListenAndServe(ctx)
}
