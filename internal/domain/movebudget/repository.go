package movebudget

import "context"

// Repository stores move counters keyed by (team_id, week_id).
type Repository interface {
	Get(ctx context.Context, teamID, weekID string) (Counter, bool, error)
	// Increment adds one move unless the counter is already at limit, in which
	// case it returns ErrBudgetExceeded and leaves the counter untouched.
	Increment(ctx context.Context, teamID, weekID string, limit int) (Counter, error)
	Decrement(ctx context.Context, teamID, weekID string) (Counter, error)
	// Reset opens weekID for every team with a zero counter. Counters that
	// already exist for weekID are left alone, so a rerun never wipes moves.
	Reset(ctx context.Context, teamIDs []string, weekID string) error
}
