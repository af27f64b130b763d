package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd returns the root cobra command for the cursor-sync CLI.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cursor-sync",
		Short:         "Back up and restore Cursor editor configuration via Google Drive",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Root().PersistentFlags().GetString("log-level")
			return setupLogging(stderr, level)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	addGlobalFlags(cmd)

	cmd.AddCommand(newUpCmd(stdout, stderr))
	cmd.AddCommand(newDownCmd(stdout, stderr))
	cmd.AddCommand(newAuthCmd(stdout))
	cmd.AddCommand(newValidateCmd(stdout))
	cmd.AddCommand(newListCmd(stdout, stderr))
	cmd.AddCommand(newRunCmd(stdout, stderr))
	cmd.AddCommand(newVersionCmd(stdout))

	return cmd
}

// Execute runs the CLI with the process stdio. SIGINT and SIGTERM cancel the
// command context, which stops a recurring sync loop at its next sleep.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func setupLogging(stderr io.Writer, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly})
	return nil
}
