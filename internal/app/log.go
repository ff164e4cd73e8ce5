package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfresh/internal/output"
)

var (
	logLimit int

	logCmd = &cobra.Command{
		Use:   "log",
		Short: "Show outdated executables found by previous runs",
		Example: `  # The 50 most recent findings
  brewfresh log --limit 50`,
		RunE: runLog,
	}
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "number of findings to show")
}

func runLog(cmd *cobra.Command, args []string) error {
	if logLimit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", logLimit)
	}

	st, err := openStore(settings)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ListFindings(logLimit)
	if err != nil {
		return err
	}
	output.RenderFindingsLog(cmd.OutOrStdout(), records, time.Now())
	return nil
}
