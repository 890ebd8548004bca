package cmd

import (
	"encoding/json"

	"github.com/MeKo-Tech/mapstatic/internal/staticmap"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Print the resolved viewport as JSON without fetching tiles",
	RunE:  runMetadata,
}

func init() {
	rootCmd.AddCommand(metadataCmd)
	addViewportFlags(metadataCmd, "metadata")
}

func runMetadata(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	m, err := staticmap.New(paramsFromConfig(viper.GetViper(), "metadata"), nil, logger)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(m.Metadata())
}
