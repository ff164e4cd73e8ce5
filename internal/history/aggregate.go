package history

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/blackwell-systems/brewfresh/internal/logger"
)

// Aggregator reads every configured source concurrently and merges the
// recent entries into one set of executable names.
type Aggregator struct {
	Sources []Source
	Getenv  Getenv
	Now     func() time.Time
	Log     *logger.Logger
}

// NewAggregator returns an Aggregator over DefaultSources.
func NewAggregator(getenv Getenv, limit int, window time.Duration) *Aggregator {
	return &Aggregator{
		Sources: DefaultSources(limit, window),
		Getenv:  getenv,
		Now:     time.Now,
		Log:     logger.Default(),
	}
}

// RecentLines returns the recent entries of every source, concatenated in
// source order.
func (a *Aggregator) RecentLines() []CommandLine {
	now := a.Now()
	results := make([][]CommandLine, len(a.Sources))

	var wg sync.WaitGroup
	for i, src := range a.Sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			lines, path, ok := src.Read(a.Getenv)
			if !ok {
				a.Log.Debug("history: %s: no readable history file", src.Name)
				return
			}
			results[i] = src.Policy.Apply(lines, now)
			a.Log.Debug("history: %s: %d of %d entries from %s are recent", src.Name, len(results[i]), len(lines), path)
		}(i, src)
	}
	wg.Wait()

	var all []CommandLine
	for _, lines := range results {
		all = append(all, lines...)
	}
	return all
}

// RecentCommands returns the base names of the executables invoked by recent
// entries across all sources.
func (a *Aggregator) RecentCommands() map[string]struct{} {
	used := make(map[string]struct{})
	for _, line := range a.RecentLines() {
		if name, ok := ExtractCommand(line.Text); ok {
			used[name] = struct{}{}
		}
	}
	return used
}

// Paths returns every candidate history file of every source. The watcher
// uses it to know which files to observe.
func (a *Aggregator) Paths() []string {
	var paths []string
	for _, src := range a.Sources {
		paths = append(paths, src.Candidates(a.Getenv)...)
	}
	return paths
}

// ExtractCommand returns the base name of the first whitespace-delimited
// token of line. ok is false for blank lines and tokens with no usable base
// name.
func ExtractCommand(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	name := filepath.Base(fields[0])
	switch name {
	case ".", "..", string(filepath.Separator):
		return "", false
	}
	return name, true
}
