package draft

import "context"

// Repository persists draft records. Every transition after Create goes
// through CompareAndSwap so concurrent writers for the same pick cannot both land.
type Repository interface {
	Create(ctx context.Context, state State) error
	GetByLeague(ctx context.Context, leagueID string) (State, bool, error)
	ListByStatus(ctx context.Context, statuses ...Status) ([]State, error)
	// CompareAndSwap stores next only while the stored draft is still at
	// expectedPick with expectedStatus; otherwise it returns ErrStaleState.
	CompareAndSwap(ctx context.Context, next State, expectedPick int, expectedStatus Status) error
}
