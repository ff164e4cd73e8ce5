package app

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/brewfresh/internal/analyzer"
	"github.com/blackwell-systems/brewfresh/internal/brew"
	"github.com/blackwell-systems/brewfresh/internal/config"
	"github.com/blackwell-systems/brewfresh/internal/logger"
	"github.com/blackwell-systems/brewfresh/internal/output"
	"github.com/blackwell-systems/brewfresh/internal/refresh"
	"github.com/blackwell-systems/brewfresh/internal/store"
)

// spawnRefresh starts the detached background refresh. Tests replace it.
var spawnRefresh = refresh.SpawnSelf

func runReport(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	s := settings

	// The persisted refresh state is read before anything is printed.
	warnIfRefreshFailed(cmd, s)

	st := openCache(s)
	if st != nil {
		defer st.Close()
	}

	spinner := output.NewSpinner("Checking for outdated packages").WithTimeout(s.QueryTimeout)
	spinner.SetWriter(cmd.ErrOrStderr())
	spinner.Start()
	findings, err := collect(cmd.Context(), s, st, spinner.UpdateMessage)
	spinner.Stop()
	if err != nil {
		return err
	}

	if err := output.NewReport(findings).Render(cmd.OutOrStdout(), format); err != nil {
		return err
	}

	if st != nil {
		if err := st.InsertFindings(findingRecords(time.Now(), findings)); err != nil {
			logger.Warn("store: %v", err)
		}
	}

	if noRefreshFlag || s.NoRefresh {
		logger.Debug("refresh: background refresh disabled")
		return nil
	}
	if err := ensureStateDir(s); err != nil {
		logger.Warn("refresh: %v", err)
		return nil
	}
	pid, err := spawnRefresh(s.RefreshLog())
	if err != nil {
		logger.Warn("refresh: failed to start background brew update: %v", err)
		return nil
	}
	logger.Debug("refresh: background brew update started (PID %d)", pid)
	return nil
}

// warnIfRefreshFailed prints the warning for the newest unresolved refresh
// failure, if there is one.
func warnIfRefreshFailed(cmd *cobra.Command, s *config.Settings) {
	state, err := refresh.Check(s.ErrorDir())
	if err != nil {
		logger.Warn("refresh: %v", err)
		return
	}
	if state.Failed {
		output.RefreshWarning(cmd.ErrOrStderr(), state.Latest)
	}
}

// collect reads history while brew is queried and kegs are resolved, then
// intersects the two.
func collect(ctx context.Context, s *config.Settings, st *store.Store, status func(string)) ([]analyzer.Finding, error) {
	client := brew.NewClient(s.Brew, s.QueryTimeout)
	agg := newAggregator(s)

	var used map[string]struct{}
	var idx *analyzer.Index

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		used = agg.RecentCommands()
		return nil
	})
	g.Go(func() error {
		var err error
		idx, err = outdatedIndex(gctx, s, client, st, status)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("correlate: %d recent commands, %d outdated executables", len(used), idx.Len())
	return analyzer.Correlate(used, idx), nil
}

func findingRecords(runAt time.Time, findings []analyzer.Finding) []store.FindingRecord {
	records := make([]store.FindingRecord, 0, len(findings))
	for _, f := range findings {
		records = append(records, store.FindingRecord{
			RunAt:            runAt,
			Executable:       f.Executable,
			Package:          f.Package.Name,
			InstalledVersion: f.Package.Installed(),
			CurrentVersion:   f.Package.CurrentVersion,
			Pinned:           f.Package.Pinned,
		})
	}
	return records
}
