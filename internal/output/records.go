package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/blackwell-systems/brewfresh/internal/refresh"
	"github.com/blackwell-systems/brewfresh/internal/store"
)

// RefreshWarning prints the one-line notice for an unresolved background
// refresh failure.
func RefreshWarning(w io.Writer, rec refresh.Record) {
	fmt.Fprintf(w, "%s background `brew update` failed (see %s); results may be stale until it succeeds\n",
		Warning.Sprint("warning:"), rec.Path)
}

// RenderRecords lists error records, newest first.
func RenderRecords(w io.Writer, records []refresh.Record, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No background refresh failures recorded.")
		return
	}

	t := newTable("Status", "When", "Record")
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		status, c := "unresolved", Stale
		if rec.Resolved {
			status, c = "resolved", Fresh
		}
		t.addRow([]string{status, formatRelativeTime(rec.Time(), now), rec.Path}, c, Dim)
	}
	t.render(w)
}

// RenderFindingsLog lists stored findings as returned by the store.
func RenderFindingsLog(w io.Writer, records []store.FindingRecord, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No findings recorded yet.")
		return
	}

	t := newTable("Seen", "Executable", "Package", "Installed", "Available", "Pinned")
	for _, rec := range records {
		t.addRow([]string{
			formatRelativeTime(rec.RunAt, now),
			rec.Executable,
			rec.Package,
			rec.InstalledVersion,
			rec.CurrentVersion,
			strconv.FormatBool(rec.Pinned),
		}, Dim, nil, Package, Stale, Fresh)
	}
	t.render(w)
}
