package relay

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mkrell/vidify/telemetry"
)

// ActiveSet tracks artifact paths that belong to in-flight jobs so the
// sweeper never deletes a file between acquisition and delivery.
type ActiveSet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func NewActiveSet() *ActiveSet {
	return &ActiveSet{paths: make(map[string]struct{})}
}

func (s *ActiveSet) Add(path string) {
	s.mu.Lock()
	s.paths[path] = struct{}{}
	s.mu.Unlock()
}

func (s *ActiveSet) Remove(path string) {
	s.mu.Lock()
	delete(s.paths, path)
	s.mu.Unlock()
}

func (s *ActiveSet) Contains(path string) bool {
	s.mu.Lock()
	_, ok := s.paths[path]
	s.mu.Unlock()
	return ok
}

// Sweeper periodically deletes managed media files that outlived MaxAge.
// Deliveries clean up after themselves; the sweeper catches what crashed or
// orphaned jobs left behind.
type Sweeper struct {
	Dir      string
	Interval time.Duration
	MaxAge   time.Duration
	Active   *ActiveSet
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	logger := slog.Default().With(slog.String("component", "sweeper"), slog.String("dir", s.Dir))
	logger.Info("sweeper starting",
		slog.Duration("interval", s.Interval),
		slog.Duration("max_age", s.MaxAge))

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			if n := s.SweepOnce(time.Now()); n > 0 {
				logger.Info("removed stale artifacts", slog.Int("removed", n))
			}
		}
	}
}

// SweepOnce deletes eligible files and returns the number removed. Files in
// the active set are skipped; files already gone are not counted as failures.
func (s *Sweeper) SweepOnce(now time.Time) int {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		slog.Warn("failed to read working dir for sweep", slog.String("dir", s.Dir), slog.Any("err", err))
		return 0
	}

	var removed int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".mp4") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(fi.ModTime()) <= s.MaxAge {
			continue
		}
		path := filepath.Join(s.Dir, e.Name())
		if s.Active != nil && s.Active.Contains(path) {
			slog.Debug("skipping in-flight artifact", slog.String("path", path))
			continue
		}
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("failed to remove stale artifact", slog.String("path", path), slog.Any("err", err))
			}
			continue
		}
		removed++
		if telemetry.SweptArtifacts != nil {
			telemetry.SweptArtifacts.Inc()
		}
		slog.Debug("removed stale artifact", slog.String("path", path), slog.Duration("age", now.Sub(fi.ModTime())))
	}
	return removed
}
