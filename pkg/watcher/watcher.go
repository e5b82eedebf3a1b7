// Package watcher waits for input files to be rewritten.
//
// The parent directory of each file is watched rather than the file
// itself, so a producer that replaces a file by rename or remove+create
// keeps being followed under the same name.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNotWatchable is returned when a path cannot be registered.
var ErrNotWatchable = errors.New("path is not watchable")

// DefaultDebounce is the quiet period after the last write before a change
// is reported.
const DefaultDebounce = 250 * time.Millisecond

// Event is a completed change to one watched file.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher reports write-complete events for a set of files.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]bool
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a watcher. A zero debounce uses DefaultDebounce; a nil
// logger uses slog.Default().
func New(debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		fs:       fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: debounce,
		logger:   logger,
	}, nil
}

// Add registers interest in path. The file must exist and be a regular
// file when Add is called.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotWatchable, path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotWatchable, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotWatchable, path)
	}

	dir := filepath.Dir(abs)
	if !w.dirs[dir] {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrNotWatchable, dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	w.logger.Debug("watching", "path", abs)
	return nil
}

// Paths returns the registered files.
func (w *Watcher) Paths() []string {
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	return out
}

// Wait blocks until a watched file has been written and then stayed quiet
// for the debounce period. Further writes during the quiet period restart
// it, so a burst is reported once.
func (w *Watcher) Wait(ctx context.Context) (Event, error) {
	var (
		pending *Event
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()

		case <-fire:
			return *pending, nil

		case err, ok := <-w.fs.Errors:
			if !ok {
				return Event{}, errors.New("watcher closed")
			}
			return Event{}, fmt.Errorf("watching files: %w", err)

		case ev, ok := <-w.fs.Events:
			if !ok {
				return Event{}, errors.New("watcher closed")
			}
			if !w.files[filepath.Clean(ev.Name)] {
				continue
			}

			switch {
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				// Being replaced; the new file arrives as a Create.
				w.logger.Debug("data file moved away", "path", ev.Name, "op", ev.Op.String())
				continue
			default:
				continue
			}

			pending = &Event{Path: filepath.Clean(ev.Name), Op: ev.Op}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		}
	}
}

// Loop calls fn every time Wait reports a change, until ctx is cancelled.
// A failing fn is logged and the loop keeps waiting. Loop returns nil on
// cancellation and an error only if the watch itself breaks.
func (w *Watcher) Loop(ctx context.Context, fn func(context.Context, Event) error) error {
	for {
		ev, err := w.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		w.logger.Info("data file has changed", "path", ev.Path)
		if err := fn(ctx, ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("refresh failed", "path", ev.Path, "error", err)
		}
	}
}

// Close releases the underlying watch.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
