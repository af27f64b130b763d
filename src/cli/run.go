package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"cursor-sync/src/notify"
	"cursor-sync/src/paths"
	"cursor-sync/src/syncer"
)

func newRunCmd(stdout, stderr io.Writer) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run sync cycles: once with --once, otherwise on the configured interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			locations, err := paths.Resolve(runtime.GOOS, cfg.Overrides())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := newStore(ctx, cfg, stderr)
			if err != nil {
				return err
			}

			sink := notify.NewSink(cfg.Notifications.Enabled,
				cfg.Notifications.OnSuccess, cfg.Notifications.OnError,
				notify.LogNotifier{}, notify.DesktopNotifier{})

			runCycle := func(ctx context.Context) error {
				_, err := syncer.RunOnce(ctx, store, locations,
					cfg.SyncSettings.BackupFolderName, cfg.SyncSettings.MaxBackups)
				return err
			}

			if once {
				if err := runCycle(ctx); err != nil {
					sink.Failure(fmt.Sprintf("Sync failed: %v", err))
					return err
				}
				sink.Success("Settings successfully synced to Google Drive")
				fmt.Fprintln(stdout, "Sync completed")
				return nil
			}

			sched := &syncer.Scheduler{
				Interval: time.Duration(cfg.SyncSettings.SyncIntervalMinutes) * time.Minute,
				Enabled:  cfg.SyncSettings.AutoSync,
				Sink:     sink,
			}
			return sched.Run(ctx, runCycle)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Run a single sync cycle and exit")
	return cmd
}
