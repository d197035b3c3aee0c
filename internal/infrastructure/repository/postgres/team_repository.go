package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/roster-engine/internal/domain/roster"
	qb "github.com/riskibarqy/roster-engine/internal/platform/querybuilder"
)

const rosterSlotLeaguePlayerIndex = "uq_roster_slots_league_player"

type TeamRepository struct {
	db *sqlx.DB
}

var teamSelectColumns = []string{
	"public_id",
	"league_public_id",
	"owner_id",
	"name",
	"season_points",
	"draft_position",
	"version",
	"updated_at",
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (roster.Team, bool, error) {
	teams, err := r.selectTeams(ctx, qb.Eq("public_id", teamID), qb.IsNull("deleted_at"))
	if err != nil {
		return roster.Team{}, false, err
	}
	if len(teams) == 0 {
		return roster.Team{}, false, nil
	}
	return teams[0], true, nil
}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID string) ([]roster.Team, error) {
	return r.selectTeams(ctx, qb.Eq("league_public_id", leagueID), qb.IsNull("deleted_at"))
}

func (r *TeamRepository) List(ctx context.Context) ([]roster.Team, error) {
	return r.selectTeams(ctx, qb.IsNull("deleted_at"))
}

// Save bumps the team version with a conditional update and rewrites the
// slot rows in the same transaction.
func (r *TeamRepository) Save(ctx context.Context, team roster.Team) (roster.Team, error) {
	if err := team.Validate(); err != nil {
		return roster.Team{}, fmt.Errorf("validate team: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return roster.Team{}, fmt.Errorf("begin tx for team save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Update("teams").
		SetExpr("version", "version + 1").
		Set("updated_at", team.UpdatedAt.UTC()).
		Where(
			qb.Eq("public_id", team.ID),
			qb.Eq("version", team.Version),
			qb.IsNull("deleted_at"),
		).
		Suffix("RETURNING version").
		ToSQL()
	if err != nil {
		return roster.Team{}, fmt.Errorf("build bump team version query: %w", err)
	}

	var newVersion int64
	if err := tx.GetContext(ctx, &newVersion, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Team{}, fmt.Errorf("%w: team=%s version=%d", roster.ErrVersionMismatch, team.ID, team.Version)
		}
		return roster.Team{}, fmt.Errorf("bump team version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM roster_slots WHERE team_public_id = $1`, team.ID); err != nil {
		return roster.Team{}, fmt.Errorf("clear roster slots team=%s: %w", team.ID, err)
	}

	const insertSlotQuery = `
INSERT INTO roster_slots (team_public_id, league_public_id, player_public_id, position, is_starter, acquired_via, acquired_at, slot_order)
VALUES (:team_public_id, :league_public_id, :player_public_id, :position, :is_starter, :acquired_via, :acquired_at, :slot_order)`
	for i, slot := range team.Slots {
		row := rosterSlotModel{
			TeamID:      team.ID,
			LeagueID:    team.LeagueID,
			PlayerID:    slot.PlayerID,
			Position:    slot.Position,
			IsStarter:   slot.IsStarter,
			AcquiredVia: string(slot.AcquiredVia),
			AcquiredAt:  slot.AcquiredAt.UTC(),
			SlotOrder:   i,
		}
		insertSQL, insertArgs, err := sqlx.Named(insertSlotQuery, row)
		if err != nil {
			return roster.Team{}, fmt.Errorf("bind insert roster slot query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(insertSQL), insertArgs...); err != nil {
			if isUniqueViolation(err, rosterSlotLeaguePlayerIndex) {
				return roster.Team{}, fmt.Errorf("%w: player=%s", roster.ErrPlayerOwned, slot.PlayerID)
			}
			return roster.Team{}, fmt.Errorf("insert roster slot player=%s: %w", slot.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return roster.Team{}, fmt.Errorf("commit team save: %w", err)
	}

	saved := team.Clone()
	saved.Version = newVersion
	return saved, nil
}

func (r *TeamRepository) OwnerOf(ctx context.Context, leagueID, playerID string) (string, bool, error) {
	query, args, err := qb.Select("team_public_id").From("roster_slots").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("player_public_id", playerID),
		).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build owner lookup query: %w", err)
	}

	var teamID string
	if err := r.db.GetContext(ctx, &teamID, query, args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup player owner: %w", err)
	}
	return teamID, true, nil
}

func (r *TeamRepository) selectTeams(ctx context.Context, conditions ...qb.Condition) ([]roster.Team, error) {
	query, args, err := qb.Select(teamSelectColumns...).From("teams").
		Where(conditions...).
		OrderBy("draft_position", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}
	if len(rows) == 0 {
		return []roster.Team{}, nil
	}

	teamIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		teamIDs = append(teamIDs, row.PublicID)
	}
	slotQuery, slotArgs, err := qb.Select("*").From("roster_slots").
		Where(qb.In("team_public_id", stringSliceToAny(teamIDs))).
		OrderBy("team_public_id", "slot_order").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select roster slots query: %w", err)
	}

	var slotRows []rosterSlotModel
	if err := r.db.SelectContext(ctx, &slotRows, slotQuery, slotArgs...); err != nil {
		return nil, fmt.Errorf("select roster slots: %w", err)
	}
	slotsByTeam := make(map[string][]roster.Slot, len(rows))
	for _, s := range slotRows {
		slotsByTeam[s.TeamID] = append(slotsByTeam[s.TeamID], roster.Slot{
			PlayerID:    s.PlayerID,
			Position:    s.Position,
			IsStarter:   s.IsStarter,
			AcquiredVia: roster.AcquisitionType(s.AcquiredVia),
			AcquiredAt:  s.AcquiredAt,
		})
	}

	out := make([]roster.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.Team{
			ID:            row.PublicID,
			LeagueID:      row.LeagueID,
			OwnerID:       row.OwnerID,
			Name:          row.Name,
			SeasonPoints:  row.SeasonPoints,
			DraftPosition: row.DraftPosition,
			Version:       row.Version,
			Slots:         slotsByTeam[row.PublicID],
			UpdatedAt:     row.UpdatedAt,
		})
	}
	return out, nil
}
