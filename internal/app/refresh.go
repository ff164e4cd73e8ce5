package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfresh/internal/brew"
	"github.com/blackwell-systems/brewfresh/internal/logger"
	"github.com/blackwell-systems/brewfresh/internal/refresh"
)

var (
	refreshDetachedChild bool

	refreshCmd = &cobra.Command{
		Use:   "refresh",
		Short: "Run brew update now and record the outcome",
		Long: `Run 'brew update' in the foreground.

A failure is recorded in the error directory and reported by every later
run until an update succeeds. A success marks all recorded failures as
resolved.

brewfresh normally runs this in the background after each report.`,
		Example: `  # Retry after a failed background refresh
  brewfresh refresh`,
		RunE: runRefresh,
	}
)

func init() {
	refreshCmd.Flags().BoolVar(&refreshDetachedChild, "detached-child", false, "internal flag for the background refresh process")

	// Hide the internal detached-child flag from help
	refreshCmd.Flags().MarkHidden("detached-child")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	s := settings
	if err := ensureStateDir(s); err != nil {
		return err
	}

	log := logger.Default()
	if refreshDetachedChild {
		// No terminal; everything goes to the refresh log.
		if err := log.EnableFileLogging(s.RefreshLog()); err != nil {
			return err
		}
		defer log.Close()
		log.SetOutput(nil)
	}

	client := brew.NewClient(s.Brew, s.QueryTimeout)
	ctx, cancel := context.WithTimeout(cmd.Context(), s.RefreshTimeout)
	defer cancel()

	r := refresh.New(s.ErrorDir(), client.Update)
	r.Log = log
	err := r.Run(ctx)

	if refreshDetachedChild {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "brew update succeeded.")
	return nil
}
