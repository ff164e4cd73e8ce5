// Package analyzer correlates recently used executables with executables
// provided by outdated packages.
package analyzer

import "github.com/blackwell-systems/brewfresh/internal/brew"

// Index maps executables to the outdated package providing them. It is not
// safe for concurrent writers; callers fold results into it from a single
// goroutine.
type Index struct {
	Executables map[string]struct{}
	Owner       map[string]brew.OutdatedPackage
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{
		Executables: make(map[string]struct{}),
		Owner:       make(map[string]brew.OutdatedPackage),
	}
}

// Add records that pkg provides executables. When two packages provide the
// same executable name, the one added last owns it.
func (idx *Index) Add(pkg brew.OutdatedPackage, executables []string) {
	for _, exe := range executables {
		idx.Executables[exe] = struct{}{}
		idx.Owner[exe] = pkg
	}
}

// Len returns the number of indexed executables.
func (idx *Index) Len() int {
	return len(idx.Executables)
}
