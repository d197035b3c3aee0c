package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/roster-engine/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/roster-engine/internal/platform/querybuilder"
)

// Each status owns one timestamp column. sent_at keeps the first send;
// completion clears an earlier failure.
const upsertDispatchSuffix = `ON CONFLICT (dispatch_id) DO UPDATE SET
    job_name      = EXCLUDED.job_name,
    job_path      = EXCLUDED.job_path,
    payload       = EXCLUDED.payload,
    status        = EXCLUDED.status,
    scheduled_for = COALESCE(EXCLUDED.scheduled_for, job_dispatches.scheduled_for),
    sent_at       = COALESCE(job_dispatches.sent_at, EXCLUDED.sent_at),
    completed_at  = CASE WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_at ELSE job_dispatches.completed_at END,
    failed_at     = CASE EXCLUDED.status
                        WHEN 'failed' THEN EXCLUDED.failed_at
                        WHEN 'completed' THEN NULL
                        ELSE job_dispatches.failed_at
                    END,
    last_error    = CASE WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.last_error END,
    trace_id      = COALESCE(EXCLUDED.trace_id, job_dispatches.trace_id),
    span_id       = COALESCE(EXCLUDED.span_id, job_dispatches.span_id),
    updated_at    = NOW()`

type JobDispatchRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db, now: time.Now}
}

func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	row, err := dispatchRow(event, r.now())
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("job_dispatches", row, upsertDispatchSuffix)
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch dispatch_id=%s status=%s: %w", row.DispatchID, row.Status, err)
	}
	return nil
}

func dispatchRow(event jobscheduler.DispatchEvent, now time.Time) (jobDispatchInsertModel, error) {
	row := jobDispatchInsertModel{
		DispatchID: strings.TrimSpace(event.DispatchID),
		JobName:    orDefault(event.JobName, "unknown"),
		JobPath:    orDefault(event.JobPath, "/unknown"),
		Status:     string(event.Status),
		TraceID:    optionalString(event.TraceID),
		SpanID:     optionalString(event.SpanID),
	}
	if row.DispatchID == "" {
		return row, fmt.Errorf("dispatch id is required")
	}

	payload := "{}"
	if len(event.Payload) > 0 {
		encoded, err := sonic.MarshalString(event.Payload)
		if err != nil {
			return row, fmt.Errorf("marshal job dispatch payload: %w", err)
		}
		payload = encoded
	}
	row.Payload = payload

	if !event.ScheduledFor.IsZero() {
		at := event.ScheduledFor.UTC()
		row.ScheduledFor = &at
	}

	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}
	occurred = occurred.UTC()
	switch event.Status {
	case jobscheduler.StatusSent:
		row.SentAt = &occurred
	case jobscheduler.StatusCompleted:
		row.CompletedAt = &occurred
	case jobscheduler.StatusFailed:
		row.FailedAt = &occurred
		row.LastError = optionalString(event.ErrorMessage)
	}
	return row, nil
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
