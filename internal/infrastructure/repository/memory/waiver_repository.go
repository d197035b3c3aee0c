package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/roster-engine/internal/domain/waiver"
)

type resolutionKey struct {
	playerID string
	cutoff   int64
}

type WaiverRepository struct {
	mu          sync.RWMutex
	claims      map[string]waiver.Claim
	orders      []string
	resolutions map[resolutionKey]waiver.Resolution
}

func NewWaiverRepository() *WaiverRepository {
	return &WaiverRepository{
		claims:      make(map[string]waiver.Claim),
		resolutions: make(map[resolutionKey]waiver.Resolution),
	}
}

func (r *WaiverRepository) Create(_ context.Context, claim waiver.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.orders {
		other := r.claims[id]
		if other.TeamID == claim.TeamID && other.IsPending() && other.Priority == claim.Priority {
			return fmt.Errorf("%w: team=%s priority=%d", waiver.ErrPriorityTaken, claim.TeamID, claim.Priority)
		}
	}
	r.claims[claim.ID] = cloneClaim(claim)
	r.orders = append(r.orders, claim.ID)
	return nil
}

func (r *WaiverRepository) GetByID(_ context.Context, claimID string) (waiver.Claim, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.claims[claimID]
	if !ok {
		return waiver.Claim{}, false, nil
	}
	return cloneClaim(c), true, nil
}

func (r *WaiverRepository) ListByTeam(_ context.Context, teamID string) ([]waiver.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]waiver.Claim, 0)
	for _, id := range r.orders {
		if c := r.claims[id]; c.TeamID == teamID {
			out = append(out, cloneClaim(c))
		}
	}
	return out, nil
}

func (r *WaiverRepository) ListPendingByPlayer(_ context.Context, playerID string) ([]waiver.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]waiver.Claim, 0)
	for _, id := range r.orders {
		if c := r.claims[id]; c.PlayerID == playerID && c.IsPending() {
			out = append(out, cloneClaim(c))
		}
	}
	return out, nil
}

func (r *WaiverRepository) Cancel(_ context.Context, claim waiver.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.claims[claim.ID]
	if !ok || !current.IsPending() {
		return fmt.Errorf("%w: claim=%s", waiver.ErrClaimNotPending, claim.ID)
	}
	r.claims[claim.ID] = cloneClaim(claim)
	return nil
}

func (r *WaiverRepository) IsResolved(_ context.Context, playerID string, cutoff time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.resolutions[resolutionKey{playerID, cutoff.UTC().Unix()}]
	return ok, nil
}

func (r *WaiverRepository) CompleteResolution(_ context.Context, resolution waiver.Resolution, finalized []waiver.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := resolutionKey{resolution.PlayerID, resolution.Cutoff.UTC().Unix()}
	if _, ok := r.resolutions[key]; ok {
		return fmt.Errorf("%w: player=%s", waiver.ErrAlreadyResolved, resolution.PlayerID)
	}
	for _, c := range finalized {
		current, ok := r.claims[c.ID]
		if !ok || !current.IsPending() {
			return fmt.Errorf("%w: claim=%s", waiver.ErrClaimNotPending, c.ID)
		}
	}
	for _, c := range finalized {
		r.claims[c.ID] = cloneClaim(c)
	}
	r.resolutions[key] = resolution
	return nil
}

func cloneClaim(c waiver.Claim) waiver.Claim {
	c.ProcessedAt = cloneTime(c.ProcessedAt)
	return c
}
