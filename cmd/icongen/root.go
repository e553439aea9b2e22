package main

import (
	"github.com/spf13/cobra"

	"app-icon-server-go/internal/platform/config"
)

// newRootCmd represents the base command when called without any subcommands
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "icongen",
		Short: "Generate app icons from a 1024x1024 image",
		Long: "icongen runs the same icon pipeline as icon-server locally.\n\n" +
			"It resizes a square source image into every configured size, sharpens\n" +
			"the small variants and writes PNG files, a ZIP archive, a favicon or\n" +
			"the JSON bundle returned by the HTTP API.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: .config.yaml or config.yaml if present)")

	loadConfig := func() (*config.Config, error) {
		result, err := config.NewLoader().WithPath(configPath).Load()
		if err != nil {
			return nil, err
		}
		return result.Config, nil
	}

	root.AddCommand(newGenerateCmd(loadConfig))
	return root
}
