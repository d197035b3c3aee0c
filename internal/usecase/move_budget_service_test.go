package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/roster-engine/internal/domain/movebudget"
	"github.com/riskibarqy/roster-engine/internal/infrastructure/repository/memory"
	movebudgetmock "github.com/riskibarqy/roster-engine/internal/mocks/domain/movebudget"
	"github.com/riskibarqy/roster-engine/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func newMockedBudget(t *testing.T, repo movebudget.Repository) *MoveBudgetService {
	t.Helper()

	svc := NewMoveBudgetService(repo, memory.NewTeamRepository(memory.SeedTeams()), logging.NewNop())
	svc.now = func() time.Time { return fixtureNow }
	return svc
}

func TestMoveBudgetService_Status_DefaultsToUnusedWeekUsingMockery(t *testing.T) {
	t.Parallel()

	repo := movebudgetmock.NewRepository(t)
	svc := newMockedBudget(t, repo)

	repo.On("Get", mock.Anything, "team-1", "2026-W42").Return(movebudget.Counter{}, false, nil).Once()

	counter, err := svc.Status(context.Background(), "team-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if counter.TeamID != "team-1" || counter.WeekID != "2026-W42" || counter.Moves != 0 || counter.Remaining() != 3 {
		t.Fatalf("unexpected counter: %+v", counter)
	}
}

func TestMoveBudgetService_RecordMove_MapsExhaustedBudgetUsingMockery(t *testing.T) {
	t.Parallel()

	repo := movebudgetmock.NewRepository(t)
	svc := newMockedBudget(t, repo)

	repo.
		On("Increment", mock.Anything, "team-1", "2026-W42", movebudget.MaxMovesPerWeek).
		Return(movebudget.Counter{}, fmt.Errorf("%w: team=team-1", movebudget.ErrBudgetExceeded)).
		Once()

	_, err := svc.RecordMove(context.Background(), "team-1")
	requireKind(t, err, KindBudgetExceeded)
}

func TestMoveBudgetService_RecordMove_StorageFailureIsInternalUsingMockery(t *testing.T) {
	t.Parallel()

	repo := movebudgetmock.NewRepository(t)
	svc := newMockedBudget(t, repo)

	storeErr := errors.New("deadlock detected")
	repo.
		On("Increment", mock.Anything, "team-1", "2026-W42", movebudget.MaxMovesPerWeek).
		Return(movebudget.Counter{}, storeErr).
		Once()

	_, err := svc.RecordMove(context.Background(), "team-1")
	if !errors.Is(err, storeErr) {
		t.Fatalf("unexpected error: got=%v want wrapped %v", err, storeErr)
	}
	requireKind(t, err, KindInternal)
}

func TestMoveBudgetService_Refund_DecrementsReservedWeekUsingMockery(t *testing.T) {
	t.Parallel()

	repo := movebudgetmock.NewRepository(t)
	svc := newMockedBudget(t, repo)

	// The reservation belongs to the previous week; the refund must not move to the current one.
	repo.
		On("Decrement", mock.Anything, "team-1", "2026-W41").
		Return(movebudget.Counter{TeamID: "team-1", WeekID: "2026-W41", Moves: 1}, nil).
		Once()

	svc.Refund(context.Background(), movebudget.Counter{TeamID: "team-1", WeekID: "2026-W41", Moves: 2})
}

func TestMoveBudgetService_WeeklyReset_CoversEveryTeamUsingMockery(t *testing.T) {
	t.Parallel()

	repo := movebudgetmock.NewRepository(t)
	svc := newMockedBudget(t, repo)

	repo.
		On("Reset", mock.Anything, mock.MatchedBy(func(teamIDs []string) bool { return len(teamIDs) == 4 }), "2026-W43").
		Return(nil).
		Once()

	result, err := svc.WeeklyReset(context.Background(), time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("weekly reset: %v", err)
	}
	if result.WeekID != "2026-W43" || result.TeamCount != 4 {
		t.Fatalf("unexpected reset result: %+v", result)
	}
}

func TestMoveBudgetService_WeeklyReset_PropagatesStorageErrorUsingMockery(t *testing.T) {
	t.Parallel()

	repo := movebudgetmock.NewRepository(t)
	svc := newMockedBudget(t, repo)

	repo.On("Reset", mock.Anything, mock.Anything, "2026-W42").Return(errors.New("connection refused")).Once()

	if _, err := svc.WeeklyReset(context.Background(), fixtureNow); err == nil {
		t.Fatalf("expected reset error")
	}
}
