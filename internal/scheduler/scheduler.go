package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/armory/internal/config"
	"github.com/mamadbah2/armory/internal/service/reporting"
)

// Scheduler runs the daily stock snapshot job.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	cfg          config.SnapshotConfig
	logger       *zap.Logger
}

// NewScheduler creates a scheduler in the configured timezone. Falls back to
// UTC when the timezone cannot be loaded.
func NewScheduler(cfg config.SnapshotConfig, reportingSvc *reporting.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		reportingSvc: reportingSvc,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the snapshot job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.captureSnapshots); err != nil {
		s.logger.Error("failed to schedule snapshot job", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) captureSnapshots() {
	s.logger.Info("capturing daily stock snapshots")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	count, err := s.reportingSvc.CaptureDailySnapshots(ctx, time.Now())
	if err != nil {
		s.logger.Error("snapshot run failed", zap.Int("written", count), zap.Error(err))
		return
	}
	s.logger.Info("snapshot run completed", zap.Int("written", count))
}
