package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/rendergate/internal/logfields"
)

// Watcher keeps the catalog index fresh when the backing directory changes
// out-of-band (templates dropped in by hand, synced by other tooling).
// Events are debounced so a burst of writes triggers a single refresh.
type Watcher struct {
	catalog  *Catalog
	watcher  *fsnotify.Watcher
	debounce time.Duration
	stop     chan struct{}
}

// NewWatcher creates a watcher for the catalog's backing directory.
func NewWatcher(c *Catalog) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fw.Add(c.Dir()); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch template directory %s: %w", c.Dir(), err)
	}

	return &Watcher{
		catalog:  c,
		watcher:  fw,
		debounce: 500 * time.Millisecond,
		stop:     make(chan struct{}),
	}, nil
}

// Start begins monitoring. It returns immediately; the watch loop runs
// until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) {
	slog.Info("starting template catalog watcher", logfields.Path(w.catalog.Dir()))
	go w.loop(ctx)
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() error {
	close(w.stop)
	return w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	refresh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case refresh <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("template watcher error", logfields.Error(err))
		case <-refresh:
			if err := w.catalog.Refresh(); err != nil {
				slog.Warn("template index refresh failed", logfields.Error(err))
			} else {
				slog.Debug("template index refreshed", logfields.Path(w.catalog.Dir()))
			}
		}
	}
}
