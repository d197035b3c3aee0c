package usecase

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/roster-engine/internal/domain/jobscheduler"
	"github.com/riskibarqy/roster-engine/internal/domain/movebudget"
	"github.com/riskibarqy/roster-engine/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

// PeriodicJob runs at the instants produced by Next. When CatchUp is set the
// job also runs once at startup for the most recent instant it may have missed.
type PeriodicJob struct {
	Name    string
	Next    func(after time.Time) time.Time
	CatchUp func(now time.Time) time.Time
	Run     func(ctx context.Context, at time.Time) error
}

// Scheduler is the in-process driver used when no external queue is configured.
type Scheduler struct {
	clock  clockwork.Clock
	jobs   []PeriodicJob
	logger *logging.Logger
}

func NewScheduler(clock clockwork.Clock, logger *logging.Logger, jobs ...PeriodicJob) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{clock: clock, jobs: jobs, logger: logger}
}

func (s *Scheduler) Run(ctx context.Context) error {
	var wg conc.WaitGroup
	for _, job := range s.jobs {
		wg.Go(func() {
			s.loop(ctx, job)
		})
	}
	wg.Wait()
	return nil
}

func (s *Scheduler) loop(ctx context.Context, job PeriodicJob) {
	if job.CatchUp != nil {
		s.run(ctx, job, job.CatchUp(s.clock.Now()))
	}
	for {
		now := s.clock.Now()
		at := job.Next(now)
		timer := s.clock.NewTimer(at.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
			s.run(ctx, job, at)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, job PeriodicJob, at time.Time) {
	start := s.clock.Now()
	if err := job.Run(ctx, at); err != nil {
		s.logger.ErrorContext(ctx, "scheduled job failed", "job", job.Name, "at", at.UTC().Format(time.RFC3339), "error", err)
		return
	}
	s.logger.InfoContext(ctx, "scheduled job completed",
		"job", job.Name,
		"at", at.UTC().Format(time.RFC3339),
		"duration", s.clock.Since(start).String(),
	)
}

// EngineJobs returns the waiver batch and weekly reset as periodic jobs.
func EngineJobs(jobs *JobOrchestratorService) []PeriodicJob {
	cutoff := jobs.cfg.WaiverCutoff
	return []PeriodicJob{
		{
			Name:    jobscheduler.JobWaiverResolve,
			Next:    cutoff.Next,
			CatchUp: cutoff.Latest,
			Run: func(ctx context.Context, at time.Time) error {
				_, err := jobs.RunWaiverBatchDirect(ctx, JobRunInput{At: &at})
				return err
			},
		},
		{
			Name: jobscheduler.JobWeeklyReset,
			Next: movebudget.NextWeekStart,
			Run: func(ctx context.Context, at time.Time) error {
				_, err := jobs.RunWeeklyResetDirect(ctx, JobRunInput{At: &at})
				return err
			},
		},
	}
}
