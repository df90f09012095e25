package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ltanh/qrflow/internal/cli"
	"github.com/ltanh/qrflow/internal/config"
	qrsync "github.com/ltanh/qrflow/internal/sync"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push dirty records to the hosted backend",
		Long: `Push all locally modified records to the backend. Records are marked
synced only after the backend confirms them; a failed batch stays dirty
and is retried on the next pass.

With --watch the command keeps running and syncs on an interval.`,
		RunE: runSync,
	}

	// Flags
	cmd.Flags().Bool("watch", false, "Keep syncing on an interval until interrupted")
	cmd.Flags().Duration("interval", time.Minute, "Sync interval in watch mode")

	_ = viper.BindPFlag("sync.watch", cmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("sync.interval", cmd.Flags().Lookup("interval"))

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	watch := viper.GetBool("sync.watch")
	interval := viper.GetDuration("sync.interval")

	backendURL := config.BackendURL()
	if backendURL == "" {
		return fmt.Errorf("backend.url is not configured")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	backend := qrsync.NewHTTPBackend(backendURL, config.BackendToken())
	syncer := qrsync.NewSyncer(store, backend, qrsync.DefaultSyncerConfig())

	if watch {
		slog.Info("Watching for dirty records", "interval", interval)
		return syncer.Run(ctx, interval)
	}

	stats, err := syncer.SyncOnce(ctx)
	if err != nil {
		fmt.Println(cli.FormatError(fmt.Sprintf("synced %d, failed %d", stats.Pushed, stats.Failed)))
		return err
	}

	if stats.Pushed == 0 {
		fmt.Println(cli.SubtleStyle.Render("nothing to sync"))
		return nil
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("synced %d records in %s", stats.Pushed, stats.Duration.Round(time.Millisecond))))
	return nil
}
