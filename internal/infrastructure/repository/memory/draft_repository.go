package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/roster-engine/internal/domain/draft"
)

type DraftRepository struct {
	mu       sync.RWMutex
	byLeague map[string]draft.State
}

func NewDraftRepository() *DraftRepository {
	return &DraftRepository{byLeague: make(map[string]draft.State)}
}

func (r *DraftRepository) Create(_ context.Context, state draft.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byLeague[state.LeagueID]; ok {
		return fmt.Errorf("%w: league=%s", draft.ErrDraftExists, state.LeagueID)
	}
	r.byLeague[state.LeagueID] = state.Clone()
	return nil
}

func (r *DraftRepository) GetByLeague(_ context.Context, leagueID string) (draft.State, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.byLeague[leagueID]
	if !ok {
		return draft.State{}, false, nil
	}
	return state.Clone(), true, nil
}

func (r *DraftRepository) ListByStatus(_ context.Context, statuses ...draft.Status) ([]draft.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[draft.Status]struct{}, len(statuses))
	for _, s := range statuses {
		want[s] = struct{}{}
	}
	out := make([]draft.State, 0)
	for _, state := range r.byLeague {
		if _, ok := want[state.Status]; ok || len(want) == 0 {
			out = append(out, state.Clone())
		}
	}
	return out, nil
}

func (r *DraftRepository) CompareAndSwap(_ context.Context, next draft.State, expectedPick int, expectedStatus draft.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byLeague[next.LeagueID]
	if !ok {
		return fmt.Errorf("draft for league=%s not found", next.LeagueID)
	}
	if current.CurrentPick != expectedPick || current.Status != expectedStatus {
		return fmt.Errorf("%w: league=%s pick=%d status=%s", draft.ErrStaleState, next.LeagueID, current.CurrentPick, current.Status)
	}
	r.byLeague[next.LeagueID] = next.Clone()
	return nil
}
