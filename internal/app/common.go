package app

import (
	"context"
	"fmt"
	"os"

	"github.com/blackwell-systems/brewfresh/internal/analyzer"
	"github.com/blackwell-systems/brewfresh/internal/brew"
	"github.com/blackwell-systems/brewfresh/internal/config"
	"github.com/blackwell-systems/brewfresh/internal/history"
	"github.com/blackwell-systems/brewfresh/internal/logger"
	"github.com/blackwell-systems/brewfresh/internal/scanner"
	"github.com/blackwell-systems/brewfresh/internal/store"
)

// ensureStateDir creates the state directory if it doesn't exist.
func ensureStateDir(s *config.Settings) error {
	if err := os.MkdirAll(s.StateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return nil
}

// openStore opens the database in the state directory.
func openStore(s *config.Settings) (*store.Store, error) {
	if err := ensureStateDir(s); err != nil {
		return nil, err
	}
	st, err := store.Open(s.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return st, nil
}

// openCache opens the store for use as the keg cache. The cache is optional,
// so a failure is logged and a nil store returned.
func openCache(s *config.Settings) *store.Store {
	st, err := openStore(s)
	if err != nil {
		logger.Warn("store: %v; continuing without the keg cache", err)
		return nil
	}
	return st
}

func newAggregator(s *config.Settings) *history.Aggregator {
	return history.NewAggregator(os.Getenv, s.HistoryLimit, s.HistoryWindow)
}

// outdatedIndex queries brew for outdated packages and resolves their
// executables. A failed or undecodable query is a hard error. status, if not
// nil, is told when resolution starts.
func outdatedIndex(ctx context.Context, s *config.Settings, client *brew.Client, st *store.Store, status func(string)) (*analyzer.Index, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.QueryTimeout)
	defer cancel()

	pkgs, err := client.Outdated(queryCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to query outdated packages: %w", err)
	}
	logger.Debug("brew: %d outdated formulae", len(pkgs))
	if status != nil {
		status(fmt.Sprintf("Resolving executables of %d outdated packages", len(pkgs)))
	}

	var cache scanner.KegCache
	if st != nil {
		cache = st
	}
	return scanner.New(client.Prefix, cache, s.ResolveTimeout).Resolve(ctx, pkgs), nil
}
