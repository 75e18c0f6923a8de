package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag)
	flags := &convertFlags{}

	rootCmd := &cobra.Command{
		Use:   "thermatiff [input-dir] [output-dir]",
		Short: "Batch convert radiometric thermal JPEGs to calibrated TIFF rasters",
		Long: `thermatiff converts directories of radiometric JPEGs captured by DJI or
FLIR thermal cameras into single-band TIFF rasters carrying per-pixel
temperatures, optionally copying EXIF metadata onto each output.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(ctx, cmd, args, flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&logLevelFlag, "log-level", "l", "", "Log level (debug, info, warn, error)")

	flags.register(rootCmd)

	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newToolsCommand(ctx))

	return rootCmd
}
