package store

import "time"

// FindingRecord is one row of the findings log: an outdated executable seen
// in recent history during the run at RunAt.
type FindingRecord struct {
	RunAt            time.Time
	Executable       string
	Package          string
	InstalledVersion string
	CurrentVersion   string
	Pinned           bool
}
