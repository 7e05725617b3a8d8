package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"discmatch/internal/event"
	"discmatch/internal/grouper"
	"discmatch/internal/scan"
)

func newScanCommand(appCtx *appContext) *cobra.Command {
	var rootFlag string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Discover album folders and match pending ones against Discogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer appCtx.close()

			cfg, err := appCtx.ensureConfig()
			if err != nil {
				return err
			}
			root, err := appCtx.libraryRoot(rootFlag)
			if err != nil {
				return err
			}
			// Refuse before touching any state when no token is set.
			client, err := appCtx.discogsClient()
			if err != nil {
				return err
			}
			store, err := appCtx.openStore()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			files, err := grouper.Walk(root)
			if err != nil {
				return err
			}
			discovered := grouper.Group(files)
			added, removed, err := store.Sync(ctx, discovered)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Discovered %d album folders (%d new, %d removed)\n",
				len(discovered), added, removed)

			annotator, err := appCtx.annotator()
			if err != nil {
				return err
			}

			bus := event.NewBus(appCtx.logger, 64)
			bus.Subscribe(event.EntryUpdated, func(e event.Event) {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-12v %v\n", e.Data["status"], e.Data["folder"])
			})
			go bus.Start()
			defer bus.Stop()

			driverCfg := scan.Config{
				Store:       store,
				Searcher:    client,
				Details:     client,
				Covers:      client,
				Bus:         bus,
				Logger:      appCtx.logger,
				Delay:       cfg.ScanDelay(),
				LibraryRoot: root,
			}
			if annotator != nil {
				driverCfg.Annotator = annotator
			}
			driver := scan.NewDriver(driverCfg)

			result, err := driver.Run(ctx)
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(),
					"\nScan %s: %d processed (%d completed, %d need review, %d not found, %d errors)\n",
					result.ID[:8], result.Processed,
					result.Completed, result.NeedsReview, result.NotFound, result.Errors)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&rootFlag, "root", "", "Library root directory to scan")
	return cmd
}
