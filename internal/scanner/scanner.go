// Package scanner resolves which executables outdated packages install by
// reading their kegs in the Homebrew Cellar.
package scanner

import (
	"runtime"
	"time"

	"github.com/blackwell-systems/brewfresh/internal/logger"
)

// KegCache stores executable lists per keg. *store.Store implements it.
type KegCache interface {
	GetKegExecutables(pkg, version string) ([]string, bool, error)
	PutKegExecutables(pkg, version string, executables []string) error
}

// Resolver maps outdated packages to the executables they install.
type Resolver struct {
	// Prefix returns the Homebrew prefix holding the Cellar.
	Prefix func() (string, error)
	// Cache is optional.
	Cache KegCache
	// Timeout bounds each package's resolution. Zero means no bound.
	Timeout time.Duration
	// Concurrency caps simultaneous resolutions.
	Concurrency int
	Log         *logger.Logger
}

// New creates a Resolver reading kegs under the prefix returned by prefix.
func New(prefix func() (string, error), cache KegCache, timeout time.Duration) *Resolver {
	return &Resolver{
		Prefix:      prefix,
		Cache:       cache,
		Timeout:     timeout,
		Concurrency: 4 * runtime.NumCPU(),
		Log:         logger.Default(),
	}
}
