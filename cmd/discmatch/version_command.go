package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"discmatch/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the discmatch version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "discmatch %s\n", version.Version)
		},
	}
}
