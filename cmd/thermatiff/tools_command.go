package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"thermatiff/internal/tools"
)

func newToolsCommand(ctx *commandContext) *cobra.Command {
	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "Manage optional external tools",
	}

	toolsCmd.AddCommand(newToolsInstallCommand(ctx))
	return toolsCmd
}

func newToolsInstallCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download and install ExifTool into the tools directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			installer, err := tools.NewInstaller(cfg, tools.WithLogger(logger))
			if err != nil {
				return err
			}
			path, err := installer.Install(cmd.Context(), force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exiftool available at %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Reinstall even if exiftool is already available")
	return cmd
}
