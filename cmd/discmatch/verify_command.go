package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newVerifyCommand(appCtx *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that the configured Discogs token works",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer appCtx.close()

			client, err := appCtx.discogsClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			if err := client.TestConnection(ctx); err != nil {
				return fmt.Errorf("discogs connection failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Discogs connection OK")
			return nil
		},
	}
	return cmd
}
