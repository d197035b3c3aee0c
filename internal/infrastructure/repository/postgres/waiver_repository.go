package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/roster-engine/internal/domain/waiver"
	qb "github.com/riskibarqy/roster-engine/internal/platform/querybuilder"
)

const pendingPriorityIndex = "uq_waiver_claims_pending_priority"

type WaiverRepository struct {
	db *sqlx.DB
}

var waiverClaimColumns = []string{
	"public_id",
	"league_public_id",
	"team_public_id",
	"player_public_id",
	"drop_player_public_id",
	"priority",
	"status",
	"failure_reason",
	"created_at",
	"processed_at",
}

func NewWaiverRepository(db *sqlx.DB) *WaiverRepository {
	return &WaiverRepository{db: db}
}

func (r *WaiverRepository) Create(ctx context.Context, claim waiver.Claim) error {
	query, args, err := qb.InsertModel("waiver_claims", claimToRow(claim), "")
	if err != nil {
		return fmt.Errorf("build insert waiver claim query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, pendingPriorityIndex) {
			return fmt.Errorf("%w: team=%s priority=%d", waiver.ErrPriorityTaken, claim.TeamID, claim.Priority)
		}
		return fmt.Errorf("insert waiver claim: %w", err)
	}
	return nil
}

func (r *WaiverRepository) GetByID(ctx context.Context, claimID string) (waiver.Claim, bool, error) {
	claims, err := r.selectClaims(ctx, qb.Eq("public_id", claimID))
	if err != nil {
		return waiver.Claim{}, false, err
	}
	if len(claims) == 0 {
		return waiver.Claim{}, false, nil
	}
	return claims[0], true, nil
}

func (r *WaiverRepository) ListByTeam(ctx context.Context, teamID string) ([]waiver.Claim, error) {
	return r.selectClaims(ctx, qb.Eq("team_public_id", teamID))
}

func (r *WaiverRepository) ListPendingByPlayer(ctx context.Context, playerID string) ([]waiver.Claim, error) {
	return r.selectClaims(ctx, qb.Eq("player_public_id", playerID), qb.Eq("status", string(waiver.StatusPending)))
}

func (r *WaiverRepository) Cancel(ctx context.Context, claim waiver.Claim) error {
	query, args, err := qb.Update("waiver_claims").
		Set("status", string(waiver.StatusCancelled)).
		Set("processed_at", claim.ProcessedAt).
		Where(qb.Eq("public_id", claim.ID), qb.Eq("status", string(waiver.StatusPending))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build cancel waiver claim query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("cancel waiver claim: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read cancel waiver claim result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: claim=%s", waiver.ErrClaimNotPending, claim.ID)
	}
	return nil
}

func (r *WaiverRepository) IsResolved(ctx context.Context, playerID string, cutoff time.Time) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("waiver_resolutions").
		Where(qb.Eq("player_public_id", playerID), qb.Eq("cutoff", cutoff.UTC())).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build waiver resolution lookup query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("lookup waiver resolution: %w", err)
	}
	return count > 0, nil
}

// CompleteResolution writes the marker first so a concurrent resolver for the
// same cutoff fails on the primary key before touching any claim.
func (r *WaiverRepository) CompleteResolution(ctx context.Context, resolution waiver.Resolution, finalized []waiver.Claim) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for waiver resolution: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	markerSQL, markerArgs, err := qb.InsertInto("waiver_resolutions").
		Columns("player_public_id", "cutoff", "winner_claim_public_id", "resolved_at").
		Values(resolution.PlayerID, resolution.Cutoff.UTC(), optionalString(resolution.WinnerClaimID), resolution.ResolvedAt.UTC()).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert waiver resolution query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, markerSQL, markerArgs...); err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: player=%s cutoff=%s", waiver.ErrAlreadyResolved, resolution.PlayerID, resolution.Cutoff.Format(time.RFC3339))
		}
		return fmt.Errorf("insert waiver resolution: %w", err)
	}

	for _, claim := range finalized {
		query, args, err := qb.Update("waiver_claims").
			Set("status", string(claim.Status)).
			Set("failure_reason", optionalString(claim.FailureReason)).
			Set("processed_at", claim.ProcessedAt).
			Where(qb.Eq("public_id", claim.ID), qb.Eq("status", string(waiver.StatusPending))).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build finalize waiver claim query: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("finalize waiver claim=%s: %w", claim.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("read finalize waiver claim result: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: claim=%s", waiver.ErrClaimNotPending, claim.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit waiver resolution: %w", err)
	}
	return nil
}

func (r *WaiverRepository) selectClaims(ctx context.Context, conditions ...qb.Condition) ([]waiver.Claim, error) {
	query, args, err := qb.Select(waiverClaimColumns...).From("waiver_claims").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select waiver claims query: %w", err)
	}

	var rows []waiverClaimModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select waiver claims: %w", err)
	}

	out := make([]waiver.Claim, 0, len(rows))
	for _, row := range rows {
		out = append(out, waiver.Claim{
			ID:            row.PublicID,
			LeagueID:      row.LeagueID,
			TeamID:        row.TeamID,
			PlayerID:      row.PlayerID,
			DropPlayerID:  stringValue(row.DropPlayerID),
			Priority:      row.Priority,
			Status:        waiver.Status(row.Status),
			FailureReason: stringValue(row.FailureReason),
			CreatedAt:     row.CreatedAt,
			ProcessedAt:   row.ProcessedAt,
		})
	}
	return out, nil
}

func claimToRow(claim waiver.Claim) waiverClaimModel {
	return waiverClaimModel{
		PublicID:      claim.ID,
		LeagueID:      claim.LeagueID,
		TeamID:        claim.TeamID,
		PlayerID:      claim.PlayerID,
		DropPlayerID:  optionalString(claim.DropPlayerID),
		Priority:      claim.Priority,
		Status:        string(claim.Status),
		FailureReason: optionalString(claim.FailureReason),
		CreatedAt:     claim.CreatedAt.UTC(),
		ProcessedAt:   claim.ProcessedAt,
	}
}
