package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/roster-engine/internal/domain/movebudget"
	"github.com/riskibarqy/roster-engine/internal/domain/roster"
	"github.com/riskibarqy/roster-engine/internal/platform/logging"
)

type WeeklyResetResult struct {
	WeekID    string `json:"week_id"`
	TeamCount int    `json:"team_count"`
}

// MoveBudgetService guards the weekly move budget of every team.
type MoveBudgetService struct {
	repo     movebudget.Repository
	teamRepo roster.Repository
	limit    int
	logger   *logging.Logger
	now      func() time.Time
}

func NewMoveBudgetService(repo movebudget.Repository, teamRepo roster.Repository, logger *logging.Logger) *MoveBudgetService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MoveBudgetService{
		repo:     repo,
		teamRepo: teamRepo,
		limit:    movebudget.MaxMovesPerWeek,
		logger:   logger,
		now:      time.Now,
	}
}

// Status returns the counter for the current week, zero when nothing was spent.
func (s *MoveBudgetService) Status(ctx context.Context, teamID string) (movebudget.Counter, error) {
	weekID := movebudget.WeekID(s.now())
	counter, exists, err := s.repo.Get(ctx, teamID, weekID)
	if err != nil {
		return movebudget.Counter{}, fmt.Errorf("get move counter team=%s: %w", teamID, err)
	}
	if !exists {
		return movebudget.Counter{TeamID: teamID, WeekID: weekID}, nil
	}
	return counter, nil
}

// RecordMove reserves one unit of the current week's budget.
func (s *MoveBudgetService) RecordMove(ctx context.Context, teamID string) (movebudget.Counter, error) {
	weekID := movebudget.WeekID(s.now())
	counter, err := s.repo.Increment(ctx, teamID, weekID, s.limit)
	if err != nil {
		if errors.Is(err, movebudget.ErrBudgetExceeded) {
			return movebudget.Counter{}, newKindError(ErrBudgetExceeded, "team=%s already made %d moves in %s", teamID, s.limit, weekID)
		}
		return movebudget.Counter{}, fmt.Errorf("increment move counter team=%s: %w", teamID, err)
	}
	return counter, nil
}

// Refund returns a unit reserved by RecordMove after the move itself failed.
func (s *MoveBudgetService) Refund(ctx context.Context, reserved movebudget.Counter) {
	if _, err := s.repo.Decrement(ctx, reserved.TeamID, reserved.WeekID); err != nil {
		s.logger.ErrorContext(ctx, "refund move budget failed",
			"team_id", reserved.TeamID,
			"week_id", reserved.WeekID,
			"error", err,
		)
	}
}

// WeeklyReset zeroes every team's counter for the week containing at.
func (s *MoveBudgetService) WeeklyReset(ctx context.Context, at time.Time) (WeeklyResetResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MoveBudgetService.WeeklyReset")
	defer span.End()

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return WeeklyResetResult{}, fmt.Errorf("list teams for weekly reset: %w", err)
	}
	teamIDs := make([]string, 0, len(teams))
	for _, team := range teams {
		teamIDs = append(teamIDs, team.ID)
	}

	weekID := movebudget.WeekID(at)
	if err := s.repo.Reset(ctx, teamIDs, weekID); err != nil {
		return WeeklyResetResult{}, fmt.Errorf("reset move counters week=%s: %w", weekID, err)
	}

	s.logger.InfoContext(ctx, "weekly move budget reset", "week_id", weekID, "team_count", len(teamIDs))
	return WeeklyResetResult{WeekID: weekID, TeamCount: len(teamIDs)}, nil
}
