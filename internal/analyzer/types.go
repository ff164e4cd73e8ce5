package analyzer

import "github.com/blackwell-systems/brewfresh/internal/brew"

// Finding is a recently used executable whose package is outdated.
type Finding struct {
	Executable string               `json:"executable" yaml:"executable"`
	Package    brew.OutdatedPackage `json:"package" yaml:"package"`
}

// Recommendation is the upgrade suggested for a set of findings.
type Recommendation struct {
	// Packages can be upgraded, sorted and unique.
	Packages []string `json:"packages" yaml:"packages"`
	// Pinned packages were implicated but brew will not upgrade them.
	Pinned []string `json:"pinned,omitempty" yaml:"pinned,omitempty"`
}
