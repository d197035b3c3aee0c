package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/roster-engine/internal/domain/roster"
)

// TeamRepository keeps rosters and a league-wide player ownership index.
type TeamRepository struct {
	mu     sync.RWMutex
	items  map[string]roster.Team
	orders []string
}

func NewTeamRepository(teams []roster.Team) *TeamRepository {
	items := make(map[string]roster.Team, len(teams))
	orders := make([]string, 0, len(teams))
	for _, t := range teams {
		items[t.ID] = t.Clone()
		orders = append(orders, t.ID)
	}
	return &TeamRepository{items: items, orders: orders}
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (roster.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[teamID]
	if !ok {
		return roster.Team{}, false, nil
	}
	return t.Clone(), true, nil
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueID string) ([]roster.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Team, 0)
	for _, id := range r.orders {
		if t := r.items[id]; t.LeagueID == leagueID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (r *TeamRepository) List(_ context.Context) ([]roster.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Team, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id].Clone())
	}
	return out, nil
}

func (r *TeamRepository) Save(_ context.Context, team roster.Team) (roster.Team, error) {
	if err := team.Validate(); err != nil {
		return roster.Team{}, fmt.Errorf("validate team: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[team.ID]
	if !ok {
		return roster.Team{}, fmt.Errorf("team=%s not found", team.ID)
	}
	if current.Version != team.Version {
		return roster.Team{}, fmt.Errorf("%w: team=%s stored=%d given=%d", roster.ErrVersionMismatch, team.ID, current.Version, team.Version)
	}
	for _, id := range r.orders {
		other := r.items[id]
		if other.ID == team.ID || other.LeagueID != team.LeagueID {
			continue
		}
		for _, slot := range team.Slots {
			if other.HasPlayer(slot.PlayerID) {
				return roster.Team{}, fmt.Errorf("%w: player=%s team=%s", roster.ErrPlayerOwned, slot.PlayerID, other.ID)
			}
		}
	}

	saved := team.Clone()
	saved.Version = current.Version + 1
	r.items[team.ID] = saved
	return saved.Clone(), nil
}

func (r *TeamRepository) OwnerOf(_ context.Context, leagueID, playerID string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.orders {
		t := r.items[id]
		if t.LeagueID == leagueID && t.HasPlayer(playerID) {
			return t.ID, true, nil
		}
	}
	return "", false, nil
}
