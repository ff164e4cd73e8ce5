package analyzer

import "sort"

// Correlate returns one Finding per executable present in both used and the
// index, sorted by executable name.
func Correlate(used map[string]struct{}, idx *Index) []Finding {
	// Iterate the smaller set.
	small, large := used, idx.Executables
	if len(large) < len(small) {
		small, large = large, small
	}

	var findings []Finding
	for exe := range small {
		if _, ok := large[exe]; !ok {
			continue
		}
		findings = append(findings, Finding{Executable: exe, Package: idx.Owner[exe]})
	}

	sort.Slice(findings, func(i, j int) bool {
		return findings[i].Executable < findings[j].Executable
	})
	return findings
}
