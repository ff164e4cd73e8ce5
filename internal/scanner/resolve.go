package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/brewfresh/internal/analyzer"
	"github.com/blackwell-systems/brewfresh/internal/brew"
)

// Resolve resolves every package concurrently and folds the results into a
// new Index. A package that cannot be resolved contributes no executables;
// its error is logged and the rest of the batch continues.
func (r *Resolver) Resolve(ctx context.Context, pkgs []brew.OutdatedPackage) *analyzer.Index {
	type result struct {
		pkg         brew.OutdatedPackage
		executables []string
	}
	results := make(chan result)

	go func() {
		var g errgroup.Group
		if r.Concurrency > 0 {
			g.SetLimit(r.Concurrency)
		}
		for _, pkg := range pkgs {
			if pkg.Installed() == "" {
				r.Log.Debug("scanner: %s: no installed version listed, skipping", pkg.Name)
				continue
			}
			pkg := pkg
			g.Go(func() error {
				exes, err := r.Executables(ctx, pkg)
				if err != nil {
					r.Log.Warn("scanner: %s: %v", pkg.Name, err)
					exes = nil
				}
				results <- result{pkg: pkg, executables: exes}
				return nil
			})
		}
		g.Wait()
		close(results)
	}()

	// Only this loop touches the index.
	idx := analyzer.NewIndex()
	for res := range results {
		idx.Add(res.pkg, res.executables)
	}
	return idx
}

// Executables returns the names of the files in the bin directory of the
// package's installed keg. A keg or bin directory that does not exist yields
// no executables and no error.
func (r *Resolver) Executables(ctx context.Context, pkg brew.OutdatedPackage) ([]string, error) {
	version := pkg.Installed()
	if version == "" {
		return nil, fmt.Errorf("no installed version")
	}

	if r.Cache != nil {
		exes, found, err := r.Cache.GetKegExecutables(pkg.Name, version)
		if err != nil {
			r.Log.Debug("scanner: %s: keg cache read failed: %v", pkg.Name, err)
		} else if found {
			return exes, nil
		}
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	type listing struct {
		exes      []string
		cacheable bool
		err       error
	}
	// Buffered so the reader can finish after a timeout without blocking.
	done := make(chan listing, 1)
	go func() {
		exes, cacheable, err := r.readKeg(pkg.Name, version)
		done <- listing{exes: exes, cacheable: cacheable, err: err}
	}()

	var l listing
	select {
	case l = <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("resolving executables: %w", ctx.Err())
	}
	if l.err != nil {
		return nil, l.err
	}

	if r.Cache != nil && l.cacheable {
		if err := r.Cache.PutKegExecutables(pkg.Name, version, l.exes); err != nil {
			r.Log.Debug("scanner: %s: keg cache write failed: %v", pkg.Name, err)
		}
	}
	return l.exes, nil
}

// readKeg lists <prefix>/Cellar/<name>/<version>/bin. cacheable is false
// when the keg itself is missing, since brew's records are then stale and
// may be repaired later.
func (r *Resolver) readKeg(name, version string) (exes []string, cacheable bool, err error) {
	prefix, err := r.Prefix()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get brew prefix: %w", err)
	}

	kegDir := filepath.Join(prefix, "Cellar", name, version)
	entries, err := os.ReadDir(filepath.Join(kegDir, "bin"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, false, fmt.Errorf("failed to read bin directory: %w", err)
		}
		if _, statErr := os.Stat(kegDir); statErr != nil {
			if errors.Is(statErr, fs.ErrNotExist) {
				r.Log.Debug("scanner: %s: keg %s is not installed", name, kegDir)
				return nil, false, nil
			}
			return nil, false, fmt.Errorf("failed to stat keg: %w", statErr)
		}
		// Library-only keg.
		return nil, true, nil
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		exes = append(exes, entry.Name())
	}
	return exes, true, nil
}
