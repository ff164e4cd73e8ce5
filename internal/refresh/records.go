// Package refresh runs `brew update` out of band and remembers failures
// across invocations.
//
// Each failed attempt leaves a record file named brew_output_<unix-seconds>
// in the error directory, holding the failure text. A later successful
// attempt renames every such file to brew_output_<unix-seconds>_resolved.
// Record text is never discarded. The directory is either clean (no
// unresolved records) or failed, with the newest unresolved record being the
// one worth reporting.
package refresh

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"
)

const (
	recordPrefix   = "brew_output_"
	resolvedSuffix = "_resolved"
)

var recordRe = regexp.MustCompile(`^brew_output_(\d+)(_resolved)?$`)

// Record is one error record file.
type Record struct {
	Path      string
	Timestamp int64
	Resolved  bool
}

// Time returns when the failed attempt happened.
func (r Record) Time() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// State is the persisted refresh state. Latest is set only when Failed.
type State struct {
	Failed bool
	Latest Record
}

// Records lists every error record in dir, oldest first. A missing directory
// holds no records.
func Records(dir string) ([]Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read error directory: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := recordRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		ts, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		records = append(records, Record{
			Path:      filepath.Join(dir, entry.Name()),
			Timestamp: ts,
			Resolved:  m[2] != "",
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return records, nil
}

// Unresolved lists the records in dir not yet cleared, oldest first.
func Unresolved(dir string) ([]Record, error) {
	records, err := Records(dir)
	if err != nil {
		return nil, err
	}
	unresolved := records[:0]
	for _, r := range records {
		if !r.Resolved {
			unresolved = append(unresolved, r)
		}
	}
	return unresolved, nil
}

// Check reports whether an unresolved failure is on record, and which one is
// newest. A missing directory is clean.
func Check(dir string) (State, error) {
	unresolved, err := Unresolved(dir)
	if err != nil {
		return State{}, err
	}
	if len(unresolved) == 0 {
		return State{}, nil
	}
	return State{Failed: true, Latest: unresolved[len(unresolved)-1]}, nil
}

// WriteRecord stores a failure that happened at now and returns the record
// path. The directory is created if needed. A second failure within the same
// second is appended to the existing record rather than replacing it.
func WriteRecord(dir string, now time.Time, text string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create error directory: %w", err)
	}
	path := filepath.Join(dir, recordPrefix+strconv.FormatInt(now.Unix(), 10))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, fs.ErrExist) {
		f, err = os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	}
	if err != nil {
		return "", fmt.Errorf("failed to write error record: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write error record: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write error record: %w", err)
	}
	return path, nil
}

// MarkResolved renames every unresolved record in dir to its resolved name
// and returns how many were resolved. Rename failures are skipped. When a
// resolved record with the same timestamp already exists, the unresolved
// text is appended to it so neither record's content is lost.
func MarkResolved(dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create error directory: %w", err)
	}
	unresolved, err := Unresolved(dir)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, r := range unresolved {
		target := r.Path + resolvedSuffix
		if _, err := os.Lstat(target); err == nil {
			if err := mergeInto(target, r.Path); err != nil {
				continue
			}
		} else if err := os.Rename(r.Path, target); err != nil {
			continue
		}
		resolved++
	}
	return resolved, nil
}

// mergeInto appends src to dst, then removes src.
func mergeInto(dst, src string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(dst, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
