package study

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const DefaultDebounce = 250 * time.Millisecond

// Watcher calls OnChange once at startup and again whenever the watched
// file is written or recreated. Bursts of events within Debounce of each
// other trigger a single call. Calls never overlap: OnChange runs on the
// goroutine that called Run, and changes made during a call are handled
// after it returns.
type Watcher struct {
	Path     string
	Debounce time.Duration
	OnChange func(ctx context.Context)
	Log      zerolog.Logger

	mu    sync.Mutex
	timer *time.Timer
	fire  chan struct{}
}

func NewWatcher(path string, log zerolog.Logger, onChange func(ctx context.Context)) *Watcher {
	return &Watcher{Path: path, Debounce: DefaultDebounce, OnChange: onChange, Log: log}
}

// Run blocks until ctx is cancelled. The file's directory is watched rather
// than the file itself so that editors which replace files on save are
// followed.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir, base := filepath.Split(filepath.Clean(w.Path))
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.mu.Lock()
	w.fire = make(chan struct{}, 1)
	w.mu.Unlock()
	defer w.stop()

	w.OnChange(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-w.fire:
			if ctx.Err() != nil {
				return nil
			}
			w.OnChange(ctx)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.Log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Config changed")
			w.schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.Log.Error().Err(err).Msg("Watcher error")
		}
	}
}

// schedule restarts the debounce timer. When it expires a pending change
// is queued for Run; changes that pile up while one is pending collapse
// into it.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	fire := w.fire
	w.timer = time.AfterFunc(w.Debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
