package waiver

import (
	"context"
	"time"
)

// Repository persists claims and per-cutoff resolution markers.
type Repository interface {
	// Create stores a pending claim; it fails with ErrPriorityTaken when the
	// team already has a pending claim at that priority.
	Create(ctx context.Context, claim Claim) error
	GetByID(ctx context.Context, claimID string) (Claim, bool, error)
	ListByTeam(ctx context.Context, teamID string) ([]Claim, error)
	ListPendingByPlayer(ctx context.Context, playerID string) ([]Claim, error)
	// Cancel moves a pending claim to cancelled, failing with ErrClaimNotPending otherwise.
	Cancel(ctx context.Context, claim Claim) error
	IsResolved(ctx context.Context, playerID string, cutoff time.Time) (bool, error)
	// CompleteResolution finalizes claims and writes the marker atomically.
	CompleteResolution(ctx context.Context, resolution Resolution, finalized []Claim) error
}
