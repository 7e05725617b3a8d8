package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	appCtx := newAppContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "discmatch",
		Short:         "Match local album folders against the Discogs catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newScanCommand(appCtx))
	rootCmd.AddCommand(newListCommand(appCtx))
	rootCmd.AddCommand(newCandidatesCommand(appCtx))
	rootCmd.AddCommand(newPickCommand(appCtx))
	rootCmd.AddCommand(newExportCommand(appCtx))
	rootCmd.AddCommand(newRenameCommand(appCtx))
	rootCmd.AddCommand(newVerifyCommand(appCtx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
