package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/brewfresh/internal/logger"
)

// DefaultDebounce is how long the watched files must stay quiet before the
// callback runs.
const DefaultDebounce = 500 * time.Millisecond

// ErrNothingToWatch is returned when none of the given files has an existing
// parent directory.
var ErrNothingToWatch = errors.New("no history file directory exists to watch")

// Watcher calls OnChange after any of its target files is written, created,
// renamed or removed.
type Watcher struct {
	Debounce time.Duration
	OnChange func()
	Log      *logger.Logger

	fs      *fsnotify.Watcher
	targets map[string]struct{}
	dirs    []string
	stopCh  chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// New creates a Watcher over paths. Paths whose directory does not exist are
// skipped; it is an error if that leaves nothing to watch.
func New(paths []string, onChange func()) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("onChange cannot be nil")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		Debounce: DefaultDebounce,
		OnChange: onChange,
		Log:      logger.Default(),
		fs:       fsw,
		targets:  make(map[string]struct{}),
		stopCh:   make(chan struct{}),
	}

	seen := make(map[string]struct{})
	for _, p := range paths {
		p = filepath.Clean(p)
		w.targets[p] = struct{}{}

		dir := filepath.Dir(p)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}

		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			w.Log.Debug("watcher: cannot watch %s: %v", dir, err)
			continue
		}
		w.dirs = append(w.dirs, dir)
	}

	if len(w.dirs) == 0 {
		fsw.Close()
		return nil, ErrNothingToWatch
	}
	sort.Strings(w.dirs)
	return w, nil
}

// Dirs returns the directories being watched.
func (w *Watcher) Dirs() []string {
	return w.dirs
}

// Start begins delivering change notifications in the background.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop halts the watcher. A pending debounced callback is dropped.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.Log.Debug("watcher: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.OnChange()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.Log.Warn("watcher: %v", err)

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	_, ok := w.targets[filepath.Clean(event.Name)]
	return ok
}
