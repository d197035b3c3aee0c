package player

import (
	"context"
	"time"
)

// Repository describes player persistence needs from use cases.
type Repository interface {
	ListByLeague(ctx context.Context, leagueID string) ([]Player, error)
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	GetByIDs(ctx context.Context, leagueID string, playerIDs []string) ([]Player, error)
	// ListWaiverExpiring returns players whose waiver window ends at or before cutoff.
	ListWaiverExpiring(ctx context.Context, cutoff time.Time) ([]Player, error)
	SetWaiverExpiry(ctx context.Context, playerID string, expiresAt *time.Time) error
}
