package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/roster-engine/internal/domain/player"
)

type PlayerRepository struct {
	mu       sync.RWMutex
	items    map[string]player.Player
	byLeague map[string][]string
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	items := make(map[string]player.Player, len(players))
	byLeague := make(map[string][]string)
	for _, p := range players {
		items[p.ID] = clonePlayer(p)
		byLeague[p.LeagueID] = append(byLeague[p.LeagueID], p.ID)
	}

	return &PlayerRepository{
		items:    items,
		byLeague: byLeague,
	}
}

func (r *PlayerRepository) ListByLeague(_ context.Context, leagueID string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byLeague[leagueID]
	out := make([]player.Player, 0, len(ids))
	for _, id := range ids {
		out = append(out, clonePlayer(r.items[id]))
	}

	return out, nil
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[playerID]
	if !ok {
		return player.Player{}, false, nil
	}
	return clonePlayer(p), true, nil
}

func (r *PlayerRepository) GetByIDs(_ context.Context, leagueID string, playerIDs []string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		p, ok := r.items[id]
		if !ok || p.LeagueID != leagueID {
			continue
		}
		out = append(out, clonePlayer(p))
	}

	return out, nil
}

func (r *PlayerRepository) ListWaiverExpiring(_ context.Context, cutoff time.Time) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0)
	for _, p := range r.items {
		if p.WaiverExpiresAt != nil && !p.WaiverExpiresAt.After(cutoff) {
			out = append(out, clonePlayer(p))
		}
	}
	return out, nil
}

func (r *PlayerRepository) SetWaiverExpiry(_ context.Context, playerID string, expiresAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[playerID]
	if !ok {
		return fmt.Errorf("player=%s not found", playerID)
	}
	p.WaiverExpiresAt = cloneTime(expiresAt)
	r.items[playerID] = p
	return nil
}

func clonePlayer(p player.Player) player.Player {
	p.WaiverExpiresAt = cloneTime(p.WaiverExpiresAt)
	return p
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
