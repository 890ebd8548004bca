package cmd

import (
	"fmt"
	"os"

	"github.com/MeKo-Tech/mapstatic/internal/tilesource"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Version is set at build time.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "mapstatic",
	Short: "A static map renderer built from raster map tiles",
	Long: `mapstatic renders a single static map image from XYZ raster tiles.

The viewport is given either as a bounding box plus output size, or as a
center point and zoom level. The required tiles are fetched from a tile
provider or an MBTiles pack, stitched together and cropped to the exact size.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().IntP("workers", "w", tilesource.DefaultWorkers, "Number of parallel tile downloads")
	rootCmd.PersistentFlags().String("user-agent", tilesource.DefaultUserAgent, "User-Agent sent to tile servers")
	rootCmd.PersistentFlags().Duration("tile-timeout", 0, "Timeout per tile request (default 30s)")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"verbose", "verbose"},
		{"tiles.workers", "workers"},
		{"tiles.user_agent", "user-agent"},
		{"tiles.timeout", "tile-timeout"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, rootCmd.PersistentFlags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("MAPSTATIC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
