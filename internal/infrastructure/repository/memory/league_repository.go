package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/roster-engine/internal/domain/league"
)

// LeagueRepository is read-only after construction; leagues keep the order
// they were seeded in.
type LeagueRepository struct {
	mu      sync.RWMutex
	leagues []league.League
	index   map[string]int
}

func NewLeagueRepository(seed []league.League) *LeagueRepository {
	r := &LeagueRepository{index: make(map[string]int, len(seed))}
	for _, l := range seed {
		if i, dup := r.index[l.ID]; dup {
			r.leagues[i] = l
			continue
		}
		r.index[l.ID] = len(r.leagues)
		r.leagues = append(r.leagues, l)
	}
	return r
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.leagues), nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[leagueID]
	if !ok {
		return league.League{}, false, nil
	}
	return r.leagues[i], true, nil
}
