package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/roster-engine/internal/domain/league"
	qb "github.com/riskibarqy/roster-engine/internal/platform/querybuilder"
)

var leagueColumns = []string{
	"id", "public_id", "name", "season", "commissioner_id",
	"draft_rounds", "pick_seconds", "created_at", "updated_at", "deleted_at",
}

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	rows, err := r.selectLeagues(ctx, qb.IsNull("deleted_at"))
	if err != nil {
		return nil, err
	}
	out := make([]league.League, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	rows, err := r.selectLeagues(ctx, qb.Eq("public_id", leagueID), qb.IsNull("deleted_at"))
	if err != nil || len(rows) == 0 {
		return league.League{}, false, err
	}
	return rows[0].toDomain(), true, nil
}

func (r *LeagueRepository) selectLeagues(ctx context.Context, where ...qb.Condition) ([]leagueTableModel, error) {
	query, args, err := qb.Select(leagueColumns...).From("leagues").Where(where...).OrderBy("public_id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select leagues query: %w", err)
	}
	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}
	return rows, nil
}

func (row leagueTableModel) toDomain() league.League {
	return league.League{
		ID:             row.PublicID,
		Name:           row.Name,
		Season:         row.Season,
		CommissionerID: row.CommissionerID,
		DraftRounds:    row.DraftRounds,
		PickSeconds:    row.PickSeconds,
	}
}
