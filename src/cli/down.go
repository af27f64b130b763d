package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"cursor-sync/src/paths"
	"cursor-sync/src/restorer"
	"cursor-sync/src/safety"
	"cursor-sync/src/snapshot"
)

func newDownCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Download the latest backup and restore it over the live configuration",
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
			folderID, err := store.EnsureFolder(ctx, cfg.SyncSettings.BackupFolderName)
			if err != nil {
				return err
			}
			archivePath, name, err := store.DownloadLatest(ctx, folderID, snapshot.NamePrefix)
			if err != nil {
				return err
			}
			if archivePath == "" {
				fmt.Fprintln(stdout, "No backup files found")
				return nil
			}
			defer os.Remove(archivePath)

			if meta, err := snapshot.ReadMetadata(archivePath); err == nil {
				fmt.Fprintf(stdout, "Backup %s (taken %s on %s, cursor %s)\n",
					name, meta.Timestamp, meta.Platform, meta.CursorVersion)
			}

			opts := getSafetyOptions(cmd)
			ok, err := safety.Confirm(opts, cmd.InOrStdin(), stdout,
				fmt.Sprintf("Restore %s over the live Cursor configuration?", name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(stdout, "Restore cancelled")
				return nil
			}

			rep, err := restorer.Restore(archivePath, locations, time.Now())
			if err != nil {
				return err
			}
			renderRestoreReport(stdout, rep)
			return rep.Err()
		},
	}
}

func renderRestoreReport(out io.Writer, rep restorer.Report) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCATION\tRESULT\tROLLBACK")
	for _, name := range rep.Restored {
		fmt.Fprintf(tw, "%s\trestored\t%s\n", name, rep.Rollbacks[name])
	}
	for _, f := range rep.Failures {
		fmt.Fprintf(tw, "%s\tfailed: %v\t%s\n", f.Name, f.Err, rep.Rollbacks[f.Name])
	}
	_ = tw.Flush()
}
