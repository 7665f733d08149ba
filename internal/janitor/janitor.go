// Package janitor sweeps orphaned uploads out of the spool directory on a
// schedule. Uploads are normally removed at the end of every render; the
// sweep catches files left behind by crashes or killed connections.
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/rendergate/internal/logfields"
)

// Janitor owns the periodic spool sweep.
type Janitor struct {
	scheduler gocron.Scheduler
	dir       string
	maxAge    time.Duration
}

// New creates a janitor for the given spool directory. Files older than
// maxAge are swept.
func New(dir string, maxAge time.Duration) (*Janitor, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	return &Janitor{scheduler: s, dir: dir, maxAge: maxAge}, nil
}

// Start schedules the sweep at the given interval and begins the scheduler.
func (j *Janitor) Start(ctx context.Context, interval time.Duration) error {
	_, err := j.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(j.runSweep),
		gocron.WithName("spool-sweep"),
	)
	if err != nil {
		return fmt.Errorf("schedule spool sweep: %w", err)
	}

	slog.Info("starting spool janitor", logfields.Path(j.dir), slog.Duration("interval", interval))
	j.scheduler.Start()
	return nil
}

// Stop gracefully shuts the scheduler down.
func (j *Janitor) Stop() error {
	slog.Info("stopping spool janitor")
	return j.scheduler.Shutdown()
}

func (j *Janitor) runSweep() {
	removed, err := j.Sweep()
	if err != nil {
		slog.Warn("spool sweep failed", logfields.Error(err))
		return
	}
	if removed > 0 {
		slog.Info("spool sweep removed orphaned uploads", slog.Int("removed", removed))
	}
}

// Sweep removes spool files older than maxAge, returning how many went.
func (j *Janitor) Sweep() (int, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return 0, fmt.Errorf("read spool directory: %w", err)
	}

	cutoff := time.Now().Add(-j.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.dir, entry.Name())); err != nil {
			slog.Warn("failed to remove orphaned upload", logfields.Path(entry.Name()), logfields.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
