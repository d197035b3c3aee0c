package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

// Job names for the scheduled engine jobs.
const (
	JobWaiverResolve = "waivers-resolve"
	JobWeeklyReset   = "moves-weekly-reset"
)

// DispatchEvent records one lifecycle step of a scheduled job run.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	Status       DispatchStatus
	ScheduledFor time.Time
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}
