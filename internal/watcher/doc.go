// Package watcher re-runs work whenever a shell history file changes.
//
// Shells append to their history files in place, and some (zsh with
// HIST_SAVE_BY_COPY, fish) replace the file by renaming a temporary copy over
// it. Watching the file itself loses track after such a rename, so the
// Watcher watches each file's parent directory and filters events by name.
//
// Bursts of writes (a shell flushing several lines, an editor saving) are
// collapsed into a single callback after a quiet period.
//
// Example usage:
//
//	w, err := watcher.New(agg.Paths(), func() {
//		render(agg.RecentCommands())
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	w.Start()
//	defer w.Stop()
package watcher
