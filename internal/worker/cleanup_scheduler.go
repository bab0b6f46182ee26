package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/internal/usecase"
)

const cleanupTimeout = 5 * time.Minute

// CleanupScheduler runs the blocked slot purge on a cron schedule.
type CleanupScheduler struct {
	cron        *cron.Cron
	maintenance usecase.MaintenanceUsecase
	log         *logrus.Logger
}

// NewCleanupScheduler accepts standard five-field specs and descriptors such as @daily.
func NewCleanupScheduler(spec string, maintenance usecase.MaintenanceUsecase, log *logrus.Logger) (*CleanupScheduler, error) {
	s := &CleanupScheduler{
		cron:        cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		maintenance: maintenance,
		log:         log,
	}

	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *CleanupScheduler) Start() {
	s.log.Info("Starting blocked slot cleanup scheduler")
	s.cron.Start()
}

// Stop prevents new runs and waits for a running purge to finish or ctx to end.
func (s *CleanupScheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Cleanup scheduler did not stop in time")
	}
}

// RunOnce purges expired blocked slots immediately.
func (s *CleanupScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	result, err := s.maintenance.PurgeBlockedSlots(ctx)
	if err != nil {
		s.log.Errorf("Blocked slot cleanup failed: %v", err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"removed": result.Removed,
		"doctors": len(result.Doctors),
		"cutoff":  result.Cutoff,
	}).Info("Blocked slot cleanup finished")
}
