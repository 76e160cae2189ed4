package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"workshop-backend/pkg/config"
)

// KeepFile marks directories that must survive a sweep even when they hold nothing else.
const KeepFile = ".gitkeep"

var (
	sweptFiles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_retention_files_deleted_total",
		Help: "Report files deleted by the retention sweeper.",
	})
	sweptDirs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_retention_dirs_removed_total",
		Help: "Empty report directories removed by the retention sweeper.",
	})
	sweepErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_retention_errors_total",
		Help: "Files or directories the retention sweeper failed to process.",
	})
)

type SweepResult struct {
	FilesDeleted int
	DirsRemoved  int
	Errors       int
}

// Sweeper deletes report files older than the retention age.
type Sweeper struct {
	root     string
	maxAge   time.Duration
	interval time.Duration
	now      func() time.Time

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewSweeper(cfg *config.Config, paths *Paths) *Sweeper {
	return &Sweeper{
		root:     paths.Reports,
		maxAge:   cfg.RetentionAge(),
		interval: cfg.Storage.SweepInterval,
		now:      time.Now,
	}
}

// RegisterSweeper runs a sweep at start and then on every interval until the app stops.
func RegisterSweeper(lc fx.Lifecycle, s *Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
}

func (s *Sweeper) Start() {
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.run(s.stop)
}

func (s *Sweeper) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.wg.Wait()
	s.stop = nil
}

func (s *Sweeper) run(stop <-chan struct{}) {
	defer s.wg.Done()

	zap.L().Info("[Sweeper] started",
		zap.String("root", s.root),
		zap.Duration("max_age", s.maxAge),
		zap.Duration("interval", s.interval),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			zap.L().Warn("[Sweeper] stopped")
			return
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	start := time.Now()
	res := s.Sweep(ctx)
	zap.L().Info("[Sweeper] storage cleanup completed",
		zap.Int("files_deleted", res.FilesDeleted),
		zap.Int("dirs_removed", res.DirsRemoved),
		zap.Int("errors", res.Errors),
		zap.Duration("duration", time.Since(start)),
	)
}

// Sweep walks the reports root once. Failures are logged per entry and never abort the walk.
func (s *Sweeper) Sweep(ctx context.Context) SweepResult {
	var res SweepResult
	cutoff := s.now().Add(-s.maxAge)
	s.sweepDir(ctx, s.root, cutoff, &res)
	return res
}

func (s *Sweeper) sweepDir(ctx context.Context, dir string, cutoff time.Time, res *SweepResult) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.fail(res, "failed to read directory", dir, err)
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			s.sweepDir(ctx, path, cutoff, res)
			s.removeIfEmpty(path, res)
			continue
		}

		if !entry.Type().IsRegular() || entry.Name() == KeepFile {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.fail(res, "failed to stat file", path, err)
			continue
		}

		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			s.fail(res, "failed to delete old file", path, err)
			continue
		}

		res.FilesDeleted++
		sweptFiles.Inc()
		zap.L().Info("[Sweeper] deleted old file", zap.String("path", path), zap.Time("modified_at", info.ModTime()))
	}
}

func (s *Sweeper) removeIfEmpty(dir string, res *SweepResult) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.fail(res, "failed to read directory", dir, err)
		return
	}
	if len(entries) > 0 {
		return
	}

	if err := os.Remove(dir); err != nil {
		s.fail(res, "failed to remove empty directory", dir, err)
		return
	}

	res.DirsRemoved++
	sweptDirs.Inc()
	zap.L().Info("[Sweeper] removed empty directory", zap.String("path", dir))
}

func (s *Sweeper) fail(res *SweepResult, msg, path string, err error) {
	res.Errors++
	sweepErrors.Inc()
	zap.L().Error("[Sweeper] "+msg, zap.String("path", path), zap.Error(err))
}
