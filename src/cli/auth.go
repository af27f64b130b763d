package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cursor-sync/src/remote/drive"
)

func newAuthCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Drive and store the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			err = drive.Authorize(cmd.Context(), cfg.Paths.CredentialsFile,
				cfg.Paths.TokenFile, cmd.InOrStdin(), stdout)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Authentication successful")
			return nil
		},
	}
}
