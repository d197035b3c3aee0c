package jobscheduler

import "context"

// Repository keeps the latest status per dispatch id; a later event for the
// same id replaces the earlier one.
type Repository interface {
	UpsertEvent(ctx context.Context, event DispatchEvent) error
}
