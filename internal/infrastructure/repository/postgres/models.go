package postgres

import (
	"database/sql"
	"time"
)

type leagueTableModel struct {
	ID             int64      `db:"id"`
	PublicID       string     `db:"public_id"`
	Name           string     `db:"name"`
	Season         string     `db:"season"`
	CommissionerID string     `db:"commissioner_id"`
	DraftRounds    int        `db:"draft_rounds"`
	PickSeconds    int        `db:"pick_seconds"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

type teamTableModel struct {
	PublicID      string    `db:"public_id"`
	LeagueID      string    `db:"league_public_id"`
	OwnerID       string    `db:"owner_id"`
	Name          string    `db:"name"`
	SeasonPoints  float64   `db:"season_points"`
	DraftPosition int       `db:"draft_position"`
	Version       int64     `db:"version"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type rosterSlotModel struct {
	TeamID      string    `db:"team_public_id"`
	LeagueID    string    `db:"league_public_id"`
	PlayerID    string    `db:"player_public_id"`
	Position    string    `db:"position"`
	IsStarter   bool      `db:"is_starter"`
	AcquiredVia string    `db:"acquired_via"`
	AcquiredAt  time.Time `db:"acquired_at"`
	SlotOrder   int       `db:"slot_order"`
}

type playerTableModel struct {
	PublicID        string     `db:"public_id"`
	LeagueID        string     `db:"league_public_id"`
	FullName        string     `db:"full_name"`
	Position        string     `db:"position"`
	ProTeam         string     `db:"pro_team"`
	SeasonAverage   float64    `db:"season_average"`
	WaiverExpiresAt *time.Time `db:"waiver_expires_at"`
}

type draftTableModel struct {
	PublicID        string     `db:"public_id"`
	LeagueID        string     `db:"league_public_id"`
	Status          string     `db:"status"`
	Rounds          int        `db:"rounds"`
	PickSeconds     int        `db:"pick_seconds"`
	TeamOrder       string     `db:"team_order"`
	CurrentPick     int        `db:"current_pick"`
	Deadline        *time.Time `db:"deadline"`
	RemainingMS     int64      `db:"remaining_ms"`
	RostersAssigned bool       `db:"rosters_assigned"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	CompletedAt     *time.Time `db:"completed_at"`
}

type draftPickModel struct {
	DraftID     string         `db:"draft_public_id"`
	Number      int            `db:"pick_number"`
	Round       int            `db:"round"`
	PickInRound int            `db:"pick_in_round"`
	TeamID      string         `db:"team_public_id"`
	PlayerID    sql.NullString `db:"player_public_id"`
	MadeAt      *time.Time     `db:"made_at"`
	AutoPicked  bool           `db:"auto_picked"`
}

type moveCounterModel struct {
	TeamID    string    `db:"team_public_id"`
	WeekID    string    `db:"week_id"`
	Moves     int       `db:"moves"`
	UpdatedAt time.Time `db:"updated_at"`
}

type waiverClaimModel struct {
	PublicID      string     `db:"public_id"`
	LeagueID      string     `db:"league_public_id"`
	TeamID        string     `db:"team_public_id"`
	PlayerID      string     `db:"player_public_id"`
	DropPlayerID  *string    `db:"drop_player_public_id"`
	Priority      int        `db:"priority"`
	Status        string     `db:"status"`
	FailureReason *string    `db:"failure_reason"`
	CreatedAt     time.Time  `db:"created_at"`
	ProcessedAt   *time.Time `db:"processed_at"`
}

type jobDispatchInsertModel struct {
	DispatchID   string     `db:"dispatch_id"`
	JobName      string     `db:"job_name"`
	JobPath      string     `db:"job_path"`
	Payload      string     `db:"payload"`
	Status       string     `db:"status"`
	ScheduledFor *time.Time `db:"scheduled_for"`
	SentAt       *time.Time `db:"sent_at"`
	CompletedAt  *time.Time `db:"completed_at"`
	FailedAt     *time.Time `db:"failed_at"`
	LastError    *string    `db:"last_error"`
	TraceID      *string    `db:"trace_id"`
	SpanID       *string    `db:"span_id"`
}
