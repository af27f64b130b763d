package cli

import (
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cursor-sync/src/paths"
)

func newValidateCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the resolved Cursor configuration paths",
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
			tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPATH\tKIND\tREADABLE\tWRITABLE")
			for _, v := range paths.ValidateAll(locations) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					v.Name, v.Path, v.Kind, yesNo(v.Readable), yesNo(v.Writable))
			}
			return tw.Flush()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
