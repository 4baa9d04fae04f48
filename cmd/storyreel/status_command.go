package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storyreel/internal/runstore"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-scene render state from the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := runstore.Open(cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer store.Close()

			records, err := store.Records(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No recorded run for this project yet.")
				return nil
			}

			fmt.Fprintln(out, sceneStatusTable(records))

			counts, err := store.Counts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "done=%d failed=%d skipped=%d pending=%d\n",
				counts[runstore.StatusDone],
				counts[runstore.StatusFailed],
				counts[runstore.StatusSkipped],
				counts[runstore.StatusPending]+counts[runstore.StatusRendering])
			return nil
		},
	}
}
