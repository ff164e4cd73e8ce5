package analyzer

import (
	"sort"
	"strings"
)

// Recommend groups findings by package. Pinned packages are listed apart
// since `brew upgrade` skips them.
func Recommend(findings []Finding) *Recommendation {
	upgradable := make(map[string]struct{})
	pinned := make(map[string]struct{})
	for _, f := range findings {
		if f.Package.Pinned {
			pinned[f.Package.Name] = struct{}{}
		} else {
			upgradable[f.Package.Name] = struct{}{}
		}
	}

	return &Recommendation{
		Packages: sortedKeys(upgradable),
		Pinned:   sortedKeys(pinned),
	}
}

// Command returns the brew invocation upgrading every recommended package,
// or "" when there is nothing to upgrade.
func (r *Recommendation) Command() string {
	if len(r.Packages) == 0 {
		return ""
	}
	return "brew upgrade " + strings.Join(r.Packages, " ")
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
