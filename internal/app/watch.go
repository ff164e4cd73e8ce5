package app

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfresh/internal/analyzer"
	"github.com/blackwell-systems/brewfresh/internal/brew"
	"github.com/blackwell-systems/brewfresh/internal/logger"
	"github.com/blackwell-systems/brewfresh/internal/output"
	"github.com/blackwell-systems/brewfresh/internal/watcher"
)

var (
	watchFormat string

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Re-run the report whenever shell history changes",
		Long: `Query brew once for outdated packages, then print the report again every
time one of your shell history files changes.

Outdated packages are not re-queried while watching; restart the command
after upgrading.`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  brewfresh watch`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "text", "output format: text, json or yaml")
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(watchFormat)
	if err != nil {
		return err
	}
	s := settings
	ctx := cmd.Context()

	st := openCache(s)
	if st != nil {
		defer st.Close()
	}

	spinner := output.NewSpinner("Checking for outdated packages").WithTimeout(s.QueryTimeout)
	spinner.SetWriter(cmd.ErrOrStderr())
	spinner.Start()
	idx, err := outdatedIndex(ctx, s, brew.NewClient(s.Brew, s.QueryTimeout), st, spinner.UpdateMessage)
	spinner.Stop()
	if err != nil {
		return err
	}

	agg := newAggregator(s)
	out := cmd.OutOrStdout()
	var mu sync.Mutex
	render := func() {
		mu.Lock()
		defer mu.Unlock()
		report := output.NewReport(analyzer.Correlate(agg.RecentCommands(), idx))
		if err := report.Render(out, format); err != nil {
			logger.Error("watch: %v", err)
		}
	}

	render()

	w, err := watcher.New(agg.Paths(), func() {
		fmt.Fprintln(out)
		render()
	})
	if err != nil {
		return fmt.Errorf("failed to watch history files: %w", err)
	}
	w.Start()
	defer w.Stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", strings.Join(w.Dirs(), ", "))
	<-ctx.Done()
	return nil
}
