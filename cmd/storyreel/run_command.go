package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"storyreel/internal/pipeline"
	"storyreel/internal/runstore"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute the full pipeline from script to final video",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			// One run at a time per project directory.
			lock := flock.New(filepath.Join(cfg.Paths.ProjectDir, ".storyreel.lock"))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire project lock: %w", err)
			}
			if !ok {
				return errors.New("another storyreel run is active for this project")
			}
			defer func() { _ = lock.Unlock() }()

			store, err := runstore.Open(cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner := pipeline.New(cfg, logger, pipeline.WithRunStore(store))
			return runner.Run(ctx)
		},
	}
}
