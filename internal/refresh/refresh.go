package refresh

import (
	"context"
	"errors"
	"time"

	"github.com/blackwell-systems/brewfresh/internal/brew"
	"github.com/blackwell-systems/brewfresh/internal/logger"
)

// Refresher performs one refresh attempt and persists its outcome.
type Refresher struct {
	Dir    string
	Update func(ctx context.Context) error
	Now    func() time.Time
	Log    *logger.Logger
}

// New returns a Refresher running update and recording into dir.
func New(dir string, update func(ctx context.Context) error) *Refresher {
	return &Refresher{
		Dir:    dir,
		Update: update,
		Now:    time.Now,
		Log:    logger.Default(),
	}
}

// Run performs the update. On success every unresolved record is marked
// resolved; on failure a new record is written and the update error is
// returned. Only one of the two happens per attempt.
func (r *Refresher) Run(ctx context.Context) error {
	updateErr := r.Update(ctx)

	if updateErr == nil {
		n, err := MarkResolved(r.Dir)
		if err != nil {
			// Nobody is listening in the detached child; the records stay
			// unresolved until the next successful attempt.
			r.Log.Warn("refresh: brew update succeeded but records could not be resolved: %v", err)
			return nil
		}
		r.Log.Info("refresh: brew update succeeded, %d error record(s) resolved", n)
		return nil
	}

	path, err := WriteRecord(r.Dir, r.Now(), failureText(updateErr))
	if err != nil {
		r.Log.Error("refresh: %v (after %v)", err, updateErr)
		return updateErr
	}
	r.Log.Warn("refresh: %v; recorded in %s", updateErr, path)
	return updateErr
}

// failureText is what goes into a record: brew's stderr when there is any,
// the error message otherwise.
func failureText(err error) string {
	var updateErr *brew.UpdateError
	if errors.As(err, &updateErr) && updateErr.Output != "" {
		return updateErr.Output + "\n"
	}
	return err.Error() + "\n"
}
