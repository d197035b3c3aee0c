package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/roster-engine/internal/domain/movebudget"
	qb "github.com/riskibarqy/roster-engine/internal/platform/querybuilder"
)

type MoveBudgetRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewMoveBudgetRepository(db *sqlx.DB) *MoveBudgetRepository {
	return &MoveBudgetRepository{db: db, now: time.Now}
}

func (r *MoveBudgetRepository) Get(ctx context.Context, teamID, weekID string) (movebudget.Counter, bool, error) {
	query, args, err := qb.Select("team_public_id", "week_id", "moves", "updated_at").
		From("move_counters").
		Where(qb.Eq("team_public_id", teamID), qb.Eq("week_id", weekID)).
		ToSQL()
	if err != nil {
		return movebudget.Counter{}, false, fmt.Errorf("build select move counter query: %w", err)
	}

	var row moveCounterModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return movebudget.Counter{}, false, nil
		}
		return movebudget.Counter{}, false, fmt.Errorf("select move counter: %w", err)
	}
	return counterFromRow(row), true, nil
}

// Increment relies on the conditional DO UPDATE: when the counter already
// sits at limit no row comes back and the call reports ErrBudgetExceeded.
func (r *MoveBudgetRepository) Increment(ctx context.Context, teamID, weekID string, limit int) (movebudget.Counter, error) {
	if limit < 1 {
		return movebudget.Counter{}, fmt.Errorf("%w: limit=%d", movebudget.ErrBudgetExceeded, limit)
	}

	const query = `
INSERT INTO move_counters (team_public_id, week_id, moves, updated_at)
VALUES ($1, $2, 1, $3)
ON CONFLICT (team_public_id, week_id)
DO UPDATE SET moves = move_counters.moves + 1, updated_at = EXCLUDED.updated_at
WHERE move_counters.moves < $4
RETURNING team_public_id, week_id, moves, updated_at`

	var row moveCounterModel
	if err := r.db.GetContext(ctx, &row, query, teamID, weekID, r.now().UTC(), limit); err != nil {
		if isNotFound(err) {
			return movebudget.Counter{}, fmt.Errorf("%w: team=%s week=%s", movebudget.ErrBudgetExceeded, teamID, weekID)
		}
		return movebudget.Counter{}, fmt.Errorf("increment move counter: %w", err)
	}
	return counterFromRow(row), nil
}

func (r *MoveBudgetRepository) Decrement(ctx context.Context, teamID, weekID string) (movebudget.Counter, error) {
	query, args, err := qb.Update("move_counters").
		SetExpr("moves", "GREATEST(moves - 1, 0)").
		Set("updated_at", r.now().UTC()).
		Where(qb.Eq("team_public_id", teamID), qb.Eq("week_id", weekID)).
		Suffix("RETURNING team_public_id, week_id, moves, updated_at").
		ToSQL()
	if err != nil {
		return movebudget.Counter{}, fmt.Errorf("build decrement move counter query: %w", err)
	}

	var row moveCounterModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return movebudget.Counter{TeamID: teamID, WeekID: weekID}, nil
		}
		return movebudget.Counter{}, fmt.Errorf("decrement move counter: %w", err)
	}
	return counterFromRow(row), nil
}

func (r *MoveBudgetRepository) Reset(ctx context.Context, teamIDs []string, weekID string) error {
	if len(teamIDs) == 0 {
		return nil
	}

	const query = `
INSERT INTO move_counters (team_public_id, week_id, moves, updated_at)
SELECT team_id, $2, 0, $3 FROM unnest($1::text[]) AS team_id
ON CONFLICT (team_public_id, week_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, pq.Array(teamIDs), weekID, r.now().UTC()); err != nil {
		return fmt.Errorf("open move counters week=%s: %w", weekID, err)
	}
	return nil
}

func counterFromRow(row moveCounterModel) movebudget.Counter {
	return movebudget.Counter{
		TeamID:    row.TeamID,
		WeekID:    row.WeekID,
		Moves:     row.Moves,
		UpdatedAt: row.UpdatedAt,
	}
}
