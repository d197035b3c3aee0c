package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/roster-engine/internal/domain/player"
	qb "github.com/riskibarqy/roster-engine/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSelectColumns = []string{
	"public_id",
	"league_public_id",
	"full_name",
	"position",
	"pro_team",
	"season_average",
	"waiver_expires_at",
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) ListByLeague(ctx context.Context, leagueID string) ([]player.Player, error) {
	return r.selectPlayers(ctx, "players by league",
		qb.Eq("league_public_id", leagueID),
		qb.IsNull("deleted_at"),
	)
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(
			qb.Eq("public_id", playerID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player: %w", err)
	}
	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, leagueID string, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return []player.Player{}, nil
	}
	return r.selectPlayers(ctx, "players by ids",
		qb.Eq("league_public_id", leagueID),
		qb.In("public_id", stringSliceToAny(playerIDs)),
		qb.IsNull("deleted_at"),
	)
}

func (r *PlayerRepository) ListWaiverExpiring(ctx context.Context, cutoff time.Time) ([]player.Player, error) {
	return r.selectPlayers(ctx, "expiring waivers",
		qb.Expr("waiver_expires_at <= ?", cutoff.UTC()),
		qb.IsNull("deleted_at"),
	)
}

func (r *PlayerRepository) SetWaiverExpiry(ctx context.Context, playerID string, expiresAt *time.Time) error {
	var value any
	if expiresAt != nil {
		value = expiresAt.UTC()
	}
	query, args, err := qb.Update("players").
		Set("waiver_expires_at", value).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", playerID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set waiver expiry query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set waiver expiry player=%s: %w", playerID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set waiver expiry player=%s: player not found", playerID)
	}
	return nil
}

func (r *PlayerRepository) selectPlayers(ctx context.Context, label string, conditions ...qb.Condition) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select %s query: %w", label, err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", label, err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:              row.PublicID,
		LeagueID:        row.LeagueID,
		FullName:        row.FullName,
		Position:        row.Position,
		ProTeam:         row.ProTeam,
		SeasonAverage:   row.SeasonAverage,
		WaiverExpiresAt: row.WaiverExpiresAt,
	}
}
