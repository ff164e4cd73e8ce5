package app

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfresh/internal/output"
	"github.com/blackwell-systems/brewfresh/internal/refresh"
)

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "List background refresh failures",
	Long: `List every recorded background 'brew update' failure, newest first.

Unresolved records make each report print a warning. They become resolved
when an update succeeds; run 'brewfresh refresh' to retry now.`,
	RunE: runErrors,
}

func runErrors(cmd *cobra.Command, args []string) error {
	records, err := refresh.Records(settings.ErrorDir())
	if err != nil {
		return err
	}
	output.RenderRecords(cmd.OutOrStdout(), records, time.Now())
	return nil
}
