// Package history reads shell history files and reduces them to the set of
// executables the user ran recently.
//
// Each shell format is a Source with its own discovery rules, parser and
// recency Policy. Sources never fail: a missing, unreadable or malformed file
// simply contributes nothing.
package history

import "time"

// CommandLine is one decoded history entry. When is the zero time for
// formats that do not record timestamps.
type CommandLine struct {
	Text string
	When time.Time
}

// Getenv looks up an environment variable.
type Getenv func(key string) string

// Policy decides which parsed entries count as recent. Entries are ordered
// oldest first.
type Policy interface {
	Apply(lines []CommandLine, now time.Time) []CommandLine
}

// KeepLast retains the N most recent entries. Used for formats without
// timestamps.
type KeepLast struct {
	N int
}

// Apply implements Policy.
func (p KeepLast) Apply(lines []CommandLine, _ time.Time) []CommandLine {
	if p.N <= 0 {
		return nil
	}
	if len(lines) <= p.N {
		return lines
	}
	return lines[len(lines)-p.N:]
}

// KeepSince retains entries whose timestamp is at or after now - Window.
// The cutoff is compared in whole seconds, the resolution of history
// timestamps. Entries without a timestamp are dropped.
type KeepSince struct {
	Window time.Duration
}

// Apply implements Policy.
func (p KeepSince) Apply(lines []CommandLine, now time.Time) []CommandLine {
	cutoff := now.Add(-p.Window).Unix()
	var kept []CommandLine
	for _, line := range lines {
		if line.When.IsZero() || line.When.Unix() < cutoff {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}
