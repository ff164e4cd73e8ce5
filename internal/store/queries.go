package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// Keg operations

// GetKegExecutables returns the cached executables of a keg. found is false
// when the keg has not been scanned yet.
func (s *Store) GetKegExecutables(pkg, version string) (executables []string, found bool, err error) {
	var executablesJSON string
	err = s.db.QueryRow(
		`SELECT executables FROM kegs WHERE package = ? AND version = ?`,
		pkg, version,
	).Scan(&executablesJSON)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get keg %s %s: %w", pkg, version, err)
	}

	if err := sonic.UnmarshalString(executablesJSON, &executables); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal executables for %s %s: %w", pkg, version, err)
	}
	return executables, true, nil
}

// PutKegExecutables inserts or replaces the cached executables of a keg.
func (s *Store) PutKegExecutables(pkg, version string, executables []string) error {
	if executables == nil {
		executables = []string{}
	}
	executablesJSON, err := sonic.MarshalString(executables)
	if err != nil {
		return fmt.Errorf("failed to marshal executables: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO kegs (package, version, executables, scanned_at)
		VALUES (?, ?, ?, ?)
	`, pkg, version, executablesJSON, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert keg %s %s: %w", pkg, version, err)
	}
	return nil
}

// Findings operations

// InsertFindings records the findings of one run in a single transaction.
func (s *Store) InsertFindings(records []FindingRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO findings (run_at, executable, package, installed_version, current_version, pinned)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(
			r.RunAt.UTC().Format(time.RFC3339),
			r.Executable,
			r.Package,
			r.InstalledVersion,
			r.CurrentVersion,
			r.Pinned,
		); err != nil {
			return fmt.Errorf("failed to insert finding %s: %w", r.Executable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit findings: %w", err)
	}
	return nil
}

// ListFindings returns the most recent findings, newest run first, at most
// limit rows.
func (s *Store) ListFindings(limit int) ([]FindingRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_at, executable, package, installed_version, current_version, pinned
		FROM findings
		ORDER BY run_at DESC, executable ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	defer rows.Close()

	var records []FindingRecord
	for rows.Next() {
		var r FindingRecord
		var runAt string
		if err := rows.Scan(&runAt, &r.Executable, &r.Package, &r.InstalledVersion, &r.CurrentVersion, &r.Pinned); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		r.RunAt, err = time.Parse(time.RFC3339, runAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run_at: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate findings: %w", err)
	}
	return records, nil
}
