package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StagingSweeper removes staging files older than a cutoff
type StagingSweeper interface {
	SweepStaging(now time.Time, maxAge time.Duration) (int, error)
}

// Scheduler handles periodic background jobs for the upload store
type Scheduler struct {
	cron    *cron.Cron
	Sweeper StagingSweeper
	MaxAge  time.Duration
	Now     func() time.Time
}

// NewScheduler creates a new scheduler instance
func NewScheduler(sweeper StagingSweeper, maxAge time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		Sweeper: sweeper,
		MaxAge:  maxAge,
		Now:     time.Now,
	}
}

// Start registers the jobs on spec (a cron expression or descriptor such as
// "@every 1h") and begins running them
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.SweepStaging); err != nil {
		zap.S().Errorw("failed to register staging sweep job", "error", err)
		return err
	}

	s.cron.Start()
	zap.S().Infow("upload scheduler started", "schedule", spec)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("upload scheduler stopped")
}

// SweepStaging deletes staging files abandoned by interrupted uploads
func (s *Scheduler) SweepStaging() {
	removed, err := s.Sweeper.SweepStaging(s.Now(), s.MaxAge)
	if err != nil {
		zap.S().Errorw("staging sweep failed", "removed", removed, "error", err)
		return
	}
	if removed > 0 {
		zap.S().Infow("staging sweep removed abandoned files", "removed", removed)
	}
}
