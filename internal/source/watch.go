package source

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a document whenever its file is written or recreated.
// Bursts of events closer than the debounce interval cause a single reload.
type Watcher struct {
	path     string
	debounce time.Duration
	load     func(context.Context, string) (Document, error)
	log      *log.Entry
}

func NewWatcher(path string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		load:     Load,
		log:      log.WithFields(log.Fields{"component": "watcher", "path": path}),
	}
}

// Start begins watching the file's directory and returns once the watch is
// in place. fn receives every reload result until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context, fn func(Document, error)) error {
	target, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("source: resolve %s: %w", w.path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("source: create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(target)); err != nil {
		fw.Close()
		return fmt.Errorf("source: watch %s: %w", filepath.Dir(target), err)
	}

	go w.loop(ctx, fw, target, fn)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, target string, fn func(Document, error)) {
	defer fw.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.log.WithFields(log.Fields{
				"name": event.Name,
				"op":   event.Op,
			}).Debug("document changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			doc, err := w.load(ctx, w.path)
			if err != nil {
				w.log.WithError(err).Warn("reload failed")
			}
			fn(doc, err)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Error("file watcher")
		}
	}
}
