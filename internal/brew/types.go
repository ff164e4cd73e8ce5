package brew

// OutdatedPackage is one entry of `brew outdated --json`.
type OutdatedPackage struct {
	Name              string   `json:"name" yaml:"name"`
	InstalledVersions []string `json:"installed_versions" yaml:"installed_versions"`
	CurrentVersion    string   `json:"current_version" yaml:"current_version"`
	Pinned            bool     `json:"pinned" yaml:"pinned"`
}

// Installed returns the currently installed version, which brew lists last.
// It is empty when no installed version is known.
func (p OutdatedPackage) Installed() string {
	if len(p.InstalledVersions) == 0 {
		return ""
	}
	return p.InstalledVersions[len(p.InstalledVersions)-1]
}
