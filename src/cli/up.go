package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"cursor-sync/src/paths"
	"cursor-sync/src/syncer"
)

func newUpCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create a backup archive and upload it to the remote folder",
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
			outcome, err := syncer.RunOnce(ctx, store, locations,
				cfg.SyncSettings.BackupFolderName, cfg.SyncSettings.MaxBackups)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Uploaded %s (id %s)\n", outcome.BackupName, outcome.Record.ID)
			if n := len(outcome.Retention.Deleted); n > 0 {
				fmt.Fprintf(stdout, "Pruned %d old backup(s), keeping %d\n", n, outcome.Retention.Kept)
			}
			return nil
		},
	}
}
