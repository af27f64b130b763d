package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"cursor-sync/src/remote"
	"cursor-sync/src/snapshot"
)

func newListCmd(stdout, stderr io.Writer) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backups in the remote folder, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
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
			records, err := store.ListBackups(ctx, folderID, snapshot.NamePrefix)
			if err != nil {
				return err
			}
			switch output {
			case "json":
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			case "table", "":
				return renderBackupTable(stdout, records)
			default:
				return fmt.Errorf("unsupported --output: %s", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json")
	return cmd
}

func renderBackupTable(out io.Writer, records []remote.BackupRecord) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCREATED\tID")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.CreatedTime.Format(time.RFC3339), r.ID)
	}
	return tw.Flush()
}
