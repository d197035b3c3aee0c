package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/roster-engine/internal/domain/jobscheduler"
	"github.com/riskibarqy/roster-engine/internal/domain/movebudget"
	"github.com/riskibarqy/roster-engine/internal/domain/waiver"
	"github.com/riskibarqy/roster-engine/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

const (
	JobPathWaiverResolve = "/v1/internal/jobs/waivers/resolve"
	JobPathWeeklyReset   = "/v1/internal/jobs/moves/weekly-reset"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

type JobOrchestratorConfig struct {
	WaiverCutoff waiver.DailyCutoff
}

// JobRunInput carries the optional fields of a job delivery.
type JobRunInput struct {
	DispatchID string
	At         *time.Time
}

type JobRunResult struct {
	Job              string             `json:"job"`
	DispatchID       string             `json:"dispatch_id,omitempty"`
	ScheduledFor     time.Time          `json:"scheduled_for"`
	Waivers          *BatchResult       `json:"waivers,omitempty"`
	Reset            *WeeklyResetResult `json:"reset,omitempty"`
	QueuedOperations []string           `json:"queued_operations"`
}

// JobOrchestratorService runs the scheduled engine jobs. When driven by the
// external queue each run enqueues its own successor.
type JobOrchestratorService struct {
	waiverSvc    *WaiverService
	budgetSvc    *MoveBudgetService
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	cfg          JobOrchestratorConfig
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobOrchestratorService(
	waiverSvc *WaiverService,
	budgetSvc *MoveBudgetService,
	queue JobQueue,
	dispatchRepo jobscheduler.Repository,
	cfg JobOrchestratorConfig,
	logger *logging.Logger,
) *JobOrchestratorService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &JobOrchestratorService{
		waiverSvc:    waiverSvc,
		budgetSvc:    budgetSvc,
		queue:        queue,
		dispatchRepo: dispatchRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// RunWaiverBatch resolves the batch for the given cutoff, or the latest one,
// and queues the next day's run.
func (s *JobOrchestratorService) RunWaiverBatch(ctx context.Context, input JobRunInput) (JobRunResult, error) {
	return s.runWaivers(ctx, input, true)
}

// RunWaiverBatchDirect is used by the in-process scheduler and never enqueues.
func (s *JobOrchestratorService) RunWaiverBatchDirect(ctx context.Context, input JobRunInput) (JobRunResult, error) {
	return s.runWaivers(ctx, input, false)
}

func (s *JobOrchestratorService) RunWeeklyReset(ctx context.Context, input JobRunInput) (JobRunResult, error) {
	return s.runReset(ctx, input, true)
}

func (s *JobOrchestratorService) RunWeeklyResetDirect(ctx context.Context, input JobRunInput) (JobRunResult, error) {
	return s.runReset(ctx, input, false)
}

// Bootstrap queues the first waiver batch and weekly reset.
func (s *JobOrchestratorService) Bootstrap(ctx context.Context) (JobRunResult, error) {
	now := s.now().UTC()
	result := JobRunResult{Job: "bootstrap", ScheduledFor: now, QueuedOperations: make([]string, 0, 2)}

	nextCutoff := s.cfg.WaiverCutoff.Next(now)
	if err := s.enqueue(ctx, jobscheduler.JobWaiverResolve, JobPathWaiverResolve, nextCutoff, now); err != nil {
		return JobRunResult{}, err
	}
	result.QueuedOperations = append(result.QueuedOperations, jobscheduler.JobWaiverResolve+":"+nextCutoff.Format(time.RFC3339))

	nextWeek := movebudget.NextWeekStart(now)
	if err := s.enqueue(ctx, jobscheduler.JobWeeklyReset, JobPathWeeklyReset, nextWeek, now); err != nil {
		return JobRunResult{}, err
	}
	result.QueuedOperations = append(result.QueuedOperations, jobscheduler.JobWeeklyReset+":"+nextWeek.Format(time.RFC3339))
	return result, nil
}

func (s *JobOrchestratorService) runWaivers(ctx context.Context, input JobRunInput, enqueueNext bool) (JobRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunWaiverBatch")
	defer span.End()

	now := s.now().UTC()
	cutoff := s.cfg.WaiverCutoff.Latest(now)
	if input.At != nil {
		if input.At.After(now) {
			return JobRunResult{}, newKindError(ErrValidation, "cutoff %s is in the future", input.At.UTC().Format(time.RFC3339))
		}
		cutoff = input.At.UTC()
	}

	result := JobRunResult{
		Job:              jobscheduler.JobWaiverResolve,
		DispatchID:       input.DispatchID,
		ScheduledFor:     cutoff,
		QueuedOperations: []string{},
	}
	batch, err := s.waiverSvc.ResolveDailyBatch(ctx, cutoff)
	s.recordCompletion(ctx, jobscheduler.JobWaiverResolve, JobPathWaiverResolve, input.DispatchID, cutoff, err)
	if err != nil {
		return JobRunResult{}, err
	}
	result.Waivers = &batch

	if enqueueNext {
		next := s.cfg.WaiverCutoff.Next(now)
		if err := s.enqueue(ctx, jobscheduler.JobWaiverResolve, JobPathWaiverResolve, next, now); err != nil {
			return JobRunResult{}, err
		}
		result.QueuedOperations = append(result.QueuedOperations, jobscheduler.JobWaiverResolve+":"+next.Format(time.RFC3339))
	}
	return result, nil
}

func (s *JobOrchestratorService) runReset(ctx context.Context, input JobRunInput, enqueueNext bool) (JobRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunWeeklyReset")
	defer span.End()

	now := s.now().UTC()
	at := now
	if input.At != nil {
		at = input.At.UTC()
	}

	result := JobRunResult{
		Job:              jobscheduler.JobWeeklyReset,
		DispatchID:       input.DispatchID,
		ScheduledFor:     movebudget.WeekStart(at),
		QueuedOperations: []string{},
	}
	reset, err := s.budgetSvc.WeeklyReset(ctx, at)
	s.recordCompletion(ctx, jobscheduler.JobWeeklyReset, JobPathWeeklyReset, input.DispatchID, result.ScheduledFor, err)
	if err != nil {
		return JobRunResult{}, err
	}
	result.Reset = &reset

	if enqueueNext {
		next := movebudget.NextWeekStart(now)
		if err := s.enqueue(ctx, jobscheduler.JobWeeklyReset, JobPathWeeklyReset, next, now); err != nil {
			return JobRunResult{}, err
		}
		result.QueuedOperations = append(result.QueuedOperations, jobscheduler.JobWeeklyReset+":"+next.Format(time.RFC3339))
	}
	return result, nil
}

func (s *JobOrchestratorService) enqueue(ctx context.Context, jobName, path string, at, now time.Time) error {
	dedupID := dedupKey(jobName, at)
	payload := map[string]any{
		"at":          at.UTC().Format(time.RFC3339),
		"dispatch_id": dedupID,
	}
	delay := at.Sub(now)
	if delay < 0 {
		delay = 0
	}

	event := jobscheduler.DispatchEvent{
		DispatchID:   dedupID,
		JobName:      jobName,
		JobPath:      path,
		ScheduledFor: at.UTC(),
		Payload:      payload,
		OccurredAt:   now.UTC(),
	}
	if err := s.queue.Enqueue(ctx, path, payload, delay, dedupID); err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		s.recordDispatchEvent(ctx, event)
		return fmt.Errorf("enqueue %s at=%s: %w", jobName, at.Format(time.RFC3339), err)
	}
	event.Status = jobscheduler.StatusSent
	s.recordDispatchEvent(ctx, event)
	return nil
}

func (s *JobOrchestratorService) recordCompletion(ctx context.Context, jobName, path, dispatchID string, scheduledFor time.Time, runErr error) {
	event := jobscheduler.DispatchEvent{
		DispatchID:   dispatchID,
		JobName:      jobName,
		JobPath:      path,
		Status:       jobscheduler.StatusCompleted,
		ScheduledFor: scheduledFor,
	}
	if runErr != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = runErr.Error()
	}
	s.recordDispatchEvent(ctx, event)
}

// dedupKey names one scheduled run. The queue rejects colons in ids.
func dedupKey(jobName string, at time.Time) string {
	slot := at.UTC().Truncate(time.Minute).Format("20060102T150405Z")
	return sanitizeDedupSegment(jobName) + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func (s *JobOrchestratorService) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
