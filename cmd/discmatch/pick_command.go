package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"discmatch/internal/scan"
)

func newPickCommand(appCtx *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick ENTRY N",
		Short: "Resolve an ambiguous entry by choosing candidate N",
		Long: "Finalizes an entry (normally one in Needs Review) with the Nth candidate\n" +
			"from its stored search results, as numbered by `discmatch candidates`.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer appCtx.close()

			cfg, err := appCtx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := appCtx.discogsClient()
			if err != nil {
				return err
			}
			store, err := appCtx.openStore()
			if err != nil {
				return err
			}
			entry, err := resolveEntryArg(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("candidate number must be an integer, got %q", args[1])
			}

			annotator, err := appCtx.annotator()
			if err != nil {
				return err
			}

			root, _ := appCtx.libraryRoot("")

			driverCfg := scan.Config{
				Store:       store,
				Searcher:    client,
				Details:     client,
				Covers:      client,
				Logger:      appCtx.logger,
				Delay:       cfg.ScanDelay(),
				LibraryRoot: root,
			}
			if annotator != nil {
				driverCfg.Annotator = annotator
			}
			driver := scan.NewDriver(driverCfg)

			resolved, err := driver.ResolveManual(cmd.Context(), entry.ID, n-1)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s matched to %q (Discogs %d)\n",
				resolved.FolderName, resolved.Selected.Title, resolved.Selected.ID)
			return nil
		},
	}
	return cmd
}
