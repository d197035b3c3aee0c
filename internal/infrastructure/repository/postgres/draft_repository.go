package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/roster-engine/internal/domain/draft"
	qb "github.com/riskibarqy/roster-engine/internal/platform/querybuilder"
)

type DraftRepository struct {
	db *sqlx.DB
}

var draftSelectColumns = []string{
	"public_id",
	"league_public_id",
	"status",
	"rounds",
	"pick_seconds",
	"team_order::text AS team_order",
	"current_pick",
	"deadline",
	"remaining_ms",
	"rosters_assigned",
	"created_at",
	"updated_at",
	"completed_at",
}

func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

func (r *DraftRepository) Create(ctx context.Context, state draft.State) error {
	row, err := draftToRow(state)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for draft create: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertDraftQuery = `
INSERT INTO drafts (public_id, league_public_id, status, rounds, pick_seconds, team_order, current_pick, deadline, remaining_ms, rosters_assigned, created_at, updated_at, completed_at)
VALUES (:public_id, :league_public_id, :status, :rounds, :pick_seconds, CAST(:team_order AS JSONB), :current_pick, :deadline, :remaining_ms, :rosters_assigned, :created_at, :updated_at, :completed_at)`
	insertSQL, insertArgs, err := sqlx.Named(insertDraftQuery, row)
	if err != nil {
		return fmt.Errorf("bind insert draft query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(insertSQL), insertArgs...); err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: league=%s", draft.ErrDraftExists, state.LeagueID)
		}
		return fmt.Errorf("insert draft: %w", err)
	}

	const insertPickQuery = `
INSERT INTO draft_picks (draft_public_id, pick_number, round, pick_in_round, team_public_id, player_public_id, made_at, auto_picked)
VALUES (:draft_public_id, :pick_number, :round, :pick_in_round, :team_public_id, :player_public_id, :made_at, :auto_picked)`
	for _, pick := range state.Picks {
		pickSQL, pickArgs, err := sqlx.Named(insertPickQuery, pickToRow(state.ID, pick))
		if err != nil {
			return fmt.Errorf("bind insert draft pick query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(pickSQL), pickArgs...); err != nil {
			return fmt.Errorf("insert draft pick=%d: %w", pick.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit draft create: %w", err)
	}
	return nil
}

func (r *DraftRepository) GetByLeague(ctx context.Context, leagueID string) (draft.State, bool, error) {
	states, err := r.selectDrafts(ctx, qb.Eq("league_public_id", leagueID))
	if err != nil {
		return draft.State{}, false, err
	}
	if len(states) == 0 {
		return draft.State{}, false, nil
	}
	return states[0], true, nil
}

func (r *DraftRepository) ListByStatus(ctx context.Context, statuses ...draft.Status) ([]draft.State, error) {
	if len(statuses) == 0 {
		return r.selectDrafts(ctx)
	}
	values := make([]any, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}
	return r.selectDrafts(ctx, qb.In("status", values))
}

// CompareAndSwap updates the draft row only while it still sits at
// expectedPick and expectedStatus, then writes the made picks.
func (r *DraftRepository) CompareAndSwap(ctx context.Context, next draft.State, expectedPick int, expectedStatus draft.Status) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for draft swap: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var deadline any
	if next.Deadline != nil {
		deadline = next.Deadline.UTC()
	}
	var completedAt any
	if next.CompletedAt != nil {
		completedAt = next.CompletedAt.UTC()
	}
	query, args, err := qb.Update("drafts").
		Set("status", string(next.Status)).
		Set("current_pick", next.CurrentPick).
		Set("deadline", deadline).
		Set("remaining_ms", next.Remaining.Milliseconds()).
		Set("rosters_assigned", next.RostersAssigned).
		Set("updated_at", next.UpdatedAt.UTC()).
		Set("completed_at", completedAt).
		Where(
			qb.Eq("league_public_id", next.LeagueID),
			qb.Eq("current_pick", expectedPick),
			qb.Eq("status", string(expectedStatus)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build draft swap query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("swap draft league=%s: %w", next.LeagueID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read draft swap result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: league=%s expected pick=%d status=%s", draft.ErrStaleState, next.LeagueID, expectedPick, expectedStatus)
	}

	const updatePickQuery = `
UPDATE draft_picks
SET player_public_id = :player_public_id,
    made_at = :made_at,
    auto_picked = :auto_picked
WHERE draft_public_id = :draft_public_id
  AND pick_number = :pick_number
  AND player_public_id IS NULL`
	for _, pick := range next.Picks {
		if !pick.Made() {
			continue
		}
		pickSQL, pickArgs, err := sqlx.Named(updatePickQuery, pickToRow(next.ID, pick))
		if err != nil {
			return fmt.Errorf("bind update draft pick query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(pickSQL), pickArgs...); err != nil {
			if isUniqueViolation(err, "") {
				return fmt.Errorf("%w: %s", draft.ErrPlayerDrafted, pick.PlayerID)
			}
			return fmt.Errorf("update draft pick=%d: %w", pick.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit draft swap: %w", err)
	}
	return nil
}

func (r *DraftRepository) selectDrafts(ctx context.Context, conditions ...qb.Condition) ([]draft.State, error) {
	query, args, err := qb.Select(draftSelectColumns...).From("drafts").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select drafts query: %w", err)
	}

	var rows []draftTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select drafts: %w", err)
	}
	if len(rows) == 0 {
		return []draft.State{}, nil
	}

	draftIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		draftIDs = append(draftIDs, row.PublicID)
	}
	pickQuery, pickArgs, err := qb.Select("*").From("draft_picks").
		Where(qb.In("draft_public_id", stringSliceToAny(draftIDs))).
		OrderBy("draft_public_id", "pick_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select draft picks query: %w", err)
	}
	var pickRows []draftPickModel
	if err := r.db.SelectContext(ctx, &pickRows, pickQuery, pickArgs...); err != nil {
		return nil, fmt.Errorf("select draft picks: %w", err)
	}
	picksByDraft := make(map[string][]draft.Pick, len(rows))
	for _, p := range pickRows {
		picksByDraft[p.DraftID] = append(picksByDraft[p.DraftID], draft.Pick{
			Number:      p.Number,
			Round:       p.Round,
			PickInRound: p.PickInRound,
			TeamID:      p.TeamID,
			PlayerID:    p.PlayerID.String,
			MadeAt:      p.MadeAt,
			AutoPicked:  p.AutoPicked,
		})
	}

	out := make([]draft.State, 0, len(rows))
	for _, row := range rows {
		var order []string
		if err := sonic.UnmarshalString(row.TeamOrder, &order); err != nil {
			return nil, fmt.Errorf("decode team order draft=%s: %w", row.PublicID, err)
		}
		out = append(out, draft.State{
			ID:              row.PublicID,
			LeagueID:        row.LeagueID,
			Status:          draft.Status(row.Status),
			Rounds:          row.Rounds,
			PickSeconds:     row.PickSeconds,
			TeamOrder:       order,
			Picks:           picksByDraft[row.PublicID],
			CurrentPick:     row.CurrentPick,
			Deadline:        row.Deadline,
			Remaining:       time.Duration(row.RemainingMS) * time.Millisecond,
			RostersAssigned: row.RostersAssigned,
			CreatedAt:       row.CreatedAt,
			UpdatedAt:       row.UpdatedAt,
			CompletedAt:     row.CompletedAt,
		})
	}
	return out, nil
}

func draftToRow(state draft.State) (draftTableModel, error) {
	order, err := sonic.MarshalString(state.TeamOrder)
	if err != nil {
		return draftTableModel{}, fmt.Errorf("encode team order: %w", err)
	}
	return draftTableModel{
		PublicID:        state.ID,
		LeagueID:        state.LeagueID,
		Status:          string(state.Status),
		Rounds:          state.Rounds,
		PickSeconds:     state.PickSeconds,
		TeamOrder:       order,
		CurrentPick:     state.CurrentPick,
		Deadline:        state.Deadline,
		RemainingMS:     state.Remaining.Milliseconds(),
		RostersAssigned: state.RostersAssigned,
		CreatedAt:       state.CreatedAt.UTC(),
		UpdatedAt:       state.UpdatedAt.UTC(),
		CompletedAt:     state.CompletedAt,
	}, nil
}

func pickToRow(draftID string, pick draft.Pick) draftPickModel {
	return draftPickModel{
		DraftID:     draftID,
		Number:      pick.Number,
		Round:       pick.Round,
		PickInRound: pick.PickInRound,
		TeamID:      pick.TeamID,
		PlayerID:    sql.NullString{String: pick.PlayerID, Valid: pick.PlayerID != ""},
		MadeAt:      pick.MadeAt,
		AutoPicked:  pick.AutoPicked,
	}
}
