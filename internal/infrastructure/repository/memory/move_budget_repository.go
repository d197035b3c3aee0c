package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/roster-engine/internal/domain/movebudget"
)

type moveKey struct {
	teamID string
	weekID string
}

type MoveBudgetRepository struct {
	mu    sync.Mutex
	items map[moveKey]movebudget.Counter
	now   func() time.Time
}

func NewMoveBudgetRepository() *MoveBudgetRepository {
	return &MoveBudgetRepository{
		items: make(map[moveKey]movebudget.Counter),
		now:   time.Now,
	}
}

func (r *MoveBudgetRepository) Get(_ context.Context, teamID, weekID string) (movebudget.Counter, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[moveKey{teamID, weekID}]
	return c, ok, nil
}

func (r *MoveBudgetRepository) Increment(_ context.Context, teamID, weekID string, limit int) (movebudget.Counter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := moveKey{teamID, weekID}
	c, ok := r.items[key]
	if !ok {
		c = movebudget.Counter{TeamID: teamID, WeekID: weekID}
	}
	if c.Moves >= limit {
		return movebudget.Counter{}, movebudget.ErrBudgetExceeded
	}
	c.Moves++
	c.UpdatedAt = r.now().UTC()
	r.items[key] = c
	return c, nil
}

func (r *MoveBudgetRepository) Decrement(_ context.Context, teamID, weekID string) (movebudget.Counter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := moveKey{teamID, weekID}
	c, ok := r.items[key]
	if !ok {
		return movebudget.Counter{TeamID: teamID, WeekID: weekID}, nil
	}
	if c.Moves > 0 {
		c.Moves--
	}
	c.UpdatedAt = r.now().UTC()
	r.items[key] = c
	return c, nil
}

func (r *MoveBudgetRepository) Reset(_ context.Context, teamIDs []string, weekID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	for _, teamID := range teamIDs {
		key := moveKey{teamID, weekID}
		if _, ok := r.items[key]; ok {
			continue
		}
		r.items[key] = movebudget.Counter{TeamID: teamID, WeekID: weekID, UpdatedAt: now}
	}
	return nil
}
