package waiver

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Status is the lifecycle state of a waiver claim.
type Status string

const (
	StatusPending    Status = "pending"
	StatusSuccessful Status = "successful"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrPriorityTaken   = errors.New("waiver priority already used by a pending claim")
	ErrClaimNotPending = errors.New("waiver claim is not pending")
	ErrAlreadyResolved = errors.New("waiver already resolved for cutoff")
)

// Failure reasons recorded on claims that lose or cannot be honored.
const (
	ReasonOutbid        = "outbid"
	ReasonRosterFull    = "roster_full"
	ReasonBudget        = "move_budget_exhausted"
	ReasonDropMissing   = "drop_player_not_on_roster"
	ReasonPlayerTaken   = "player_unavailable"
	ReasonWindowClosed  = "waiver_window_closed"
	ReasonTeamMissing   = "team_not_found"
	ReasonRosterInvalid = "roster_change_invalid"
)

// Claim is a team's request to acquire a waivered player.
type Claim struct {
	ID            string
	LeagueID      string
	TeamID        string
	PlayerID      string
	DropPlayerID  string
	Priority      int
	Status        Status
	FailureReason string
	CreatedAt     time.Time
	ProcessedAt   *time.Time
}

func (c Claim) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("claim id is required")
	}
	if c.TeamID == "" || c.PlayerID == "" {
		return fmt.Errorf("claim team and player are required")
	}
	if c.Priority < 1 {
		return fmt.Errorf("claim priority must be >= 1")
	}
	if c.DropPlayerID == c.PlayerID {
		return fmt.Errorf("claim cannot drop the claimed player")
	}
	return nil
}

func (c Claim) IsPending() bool {
	return c.Status == StatusPending
}

// Cancel returns the claim moved to cancelled; only pending claims may be cancelled.
func (c Claim) Cancel(now time.Time) (Claim, error) {
	if !c.IsPending() {
		return Claim{}, fmt.Errorf("%w: claim=%s status=%s", ErrClaimNotPending, c.ID, c.Status)
	}
	c.Status = StatusCancelled
	c.ProcessedAt = &now
	return c, nil
}

func (c Claim) Succeed(now time.Time) Claim {
	c.Status = StatusSuccessful
	c.FailureReason = ""
	c.ProcessedAt = &now
	return c
}

func (c Claim) Fail(reason string, now time.Time) Claim {
	c.Status = StatusFailed
	c.FailureReason = reason
	c.ProcessedAt = &now
	return c
}

// SortForResolution orders claims by priority, then submission time, then id.
func SortForResolution(claims []Claim) {
	sort.SliceStable(claims, func(i, j int) bool {
		if claims[i].Priority != claims[j].Priority {
			return claims[i].Priority < claims[j].Priority
		}
		if !claims[i].CreatedAt.Equal(claims[j].CreatedAt) {
			return claims[i].CreatedAt.Before(claims[j].CreatedAt)
		}
		return claims[i].ID < claims[j].ID
	})
}

// Resolution marks a player as resolved for one batch cutoff.
type Resolution struct {
	PlayerID      string
	Cutoff        time.Time
	WinnerClaimID string
	ResolvedAt    time.Time
}
