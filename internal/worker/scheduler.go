package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-gear-rental/internal/application"
	"github.com/sanosuguru/go-gear-rental/internal/pkg/logger"
)

const lifecycleJobTimeout = 5 * time.Minute

// LifecycleAdvancer moves reservations along the rental lifecycle.
type LifecycleAdvancer interface {
	AdvanceLifecycle(ctx context.Context) (application.LifecycleResult, error)
}

// Scheduler runs the daily lifecycle job on a cron schedule (with seconds)
// in the store timezone.
type Scheduler struct {
	cron      *cron.Cron
	lifecycle LifecycleAdvancer
}

func NewScheduler(lifecycle LifecycleAdvancer, schedule string, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		lifecycle: lifecycle,
	}
	if _, err := s.cron.AddFunc(schedule, s.RunLifecycle); err != nil {
		return nil, fmt.Errorf("register lifecycle job %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("scheduler stopped")
}

// NextRun reports when the lifecycle job fires next.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunLifecycle performs one lifecycle pass.
func (s *Scheduler) RunLifecycle() {
	ctx, cancel := context.WithTimeout(context.Background(), lifecycleJobTimeout)
	defer cancel()

	res, err := s.lifecycle.AdvanceLifecycle(ctx)
	if err != nil {
		logger.Error("rental lifecycle job failed",
			zap.Int("activated", res.Activated),
			zap.Int("completed", res.Completed),
			zap.Error(err),
		)
		return
	}
	logger.Info("rental lifecycle job finished",
		zap.Int("activated", res.Activated),
		zap.Int("completed", res.Completed),
	)
}
