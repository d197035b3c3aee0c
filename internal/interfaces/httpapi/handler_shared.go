package httpapi

import (
	"time"

	"github.com/riskibarqy/roster-engine/internal/domain/draft"
	"github.com/riskibarqy/roster-engine/internal/domain/player"
	"github.com/riskibarqy/roster-engine/internal/domain/roster"
	"github.com/riskibarqy/roster-engine/internal/domain/waiver"
	"github.com/riskibarqy/roster-engine/internal/usecase"
)

type submitPickRequest struct {
	TeamID   string `json:"team_id" validate:"required"`
	PlayerID string `json:"player_id" validate:"required"`
}

type addPlayerRequest struct {
	PlayerID     string  `json:"player_id" validate:"required"`
	AsStarter    bool    `json:"as_starter"`
	DropPlayerID *string `json:"drop_player_id,omitempty"`
}

type setStartersRequest struct {
	PlayerIDs []string `json:"player_ids" validate:"required,dive,required"`
}

type submitClaimRequest struct {
	PlayerID     string  `json:"player_id" validate:"required"`
	Priority     int     `json:"priority" validate:"required,gte=1"`
	DropPlayerID *string `json:"drop_player_id,omitempty"`
}

type internalJobRequest struct {
	DispatchID string `json:"dispatch_id"`
	At         string `json:"at"`
}

type playerDTO struct {
	ID              string  `json:"id"`
	LeagueID        string  `json:"league_id"`
	Name            string  `json:"name"`
	Position        string  `json:"position"`
	ProTeam         string  `json:"pro_team"`
	SeasonAverage   float64 `json:"season_average"`
	WaiverExpiresAt *string `json:"waiver_expires_at,omitempty"`
}

type slotDTO struct {
	PlayerID    string `json:"player_id"`
	Position    string `json:"position"`
	IsStarter   bool   `json:"is_starter"`
	AcquiredVia string `json:"acquired_via"`
	AcquiredAt  string `json:"acquired_at"`
}

type teamDTO struct {
	ID             string    `json:"id"`
	LeagueID       string    `json:"league_id"`
	OwnerID        string    `json:"owner_id"`
	Name           string    `json:"name"`
	SeasonPoints   float64   `json:"season_points"`
	DraftPosition  int       `json:"draft_position"`
	Slots          []slotDTO `json:"slots"`
	WeekID         string    `json:"week_id"`
	MovesThisWeek  int       `json:"moves_this_week"`
	MovesRemaining int       `json:"moves_remaining"`
}

type pickDTO struct {
	Number      int     `json:"pick"`
	Round       int     `json:"round"`
	PickInRound int     `json:"pick_in_round"`
	TeamID      string  `json:"team_id"`
	PlayerID    string  `json:"player_id,omitempty"`
	MadeAt      *string `json:"made_at,omitempty"`
	AutoPicked  bool    `json:"auto_picked"`
}

type draftDTO struct {
	ID               string    `json:"id"`
	LeagueID         string    `json:"league_id"`
	Status           string    `json:"status"`
	Rounds           int       `json:"rounds"`
	PickSeconds      int       `json:"pick_seconds"`
	CurrentRound     int       `json:"current_round"`
	CurrentPick      int       `json:"current_pick"`
	SecondsRemaining int       `json:"seconds_remaining"`
	OnTheClock       *pickDTO  `json:"on_the_clock,omitempty"`
	TeamOrder        []string  `json:"team_order"`
	Picks            []pickDTO `json:"picks"`
	CompletedAt      *string   `json:"completed_at,omitempty"`
}

type claimDTO struct {
	ID            string  `json:"id"`
	TeamID        string  `json:"team_id"`
	PlayerID      string  `json:"player_id"`
	DropPlayerID  string  `json:"drop_player_id,omitempty"`
	Priority      int     `json:"priority"`
	Status        string  `json:"status"`
	FailureReason string  `json:"failure_reason,omitempty"`
	CreatedAt     string  `json:"created_at"`
	ProcessedAt   *string `json:"processed_at,omitempty"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func toPlayerDTOs(items []player.Player) []playerDTO {
	out := make([]playerDTO, 0, len(items))
	for _, p := range items {
		out = append(out, playerDTO{
			ID:              p.ID,
			LeagueID:        p.LeagueID,
			Name:            p.FullName,
			Position:        p.Position,
			ProTeam:         p.ProTeam,
			SeasonAverage:   p.SeasonAverage,
			WaiverExpiresAt: formatOptionalTime(p.WaiverExpiresAt),
		})
	}
	return out
}

func toTeamDTO(view usecase.TeamView) teamDTO {
	slots := make([]slotDTO, 0, len(view.Team.Slots))
	for _, s := range view.Team.Slots {
		slots = append(slots, toSlotDTO(s))
	}
	return teamDTO{
		ID:             view.Team.ID,
		LeagueID:       view.Team.LeagueID,
		OwnerID:        view.Team.OwnerID,
		Name:           view.Team.Name,
		SeasonPoints:   view.Team.SeasonPoints,
		DraftPosition:  view.Team.DraftPosition,
		Slots:          slots,
		WeekID:         view.WeekID,
		MovesThisWeek:  view.MovesUsed,
		MovesRemaining: view.MovesRemaining,
	}
}

func toSlotDTO(s roster.Slot) slotDTO {
	return slotDTO{
		PlayerID:    s.PlayerID,
		Position:    s.Position,
		IsStarter:   s.IsStarter,
		AcquiredVia: string(s.AcquiredVia),
		AcquiredAt:  formatTime(s.AcquiredAt),
	}
}

func toPickDTO(p draft.Pick) pickDTO {
	return pickDTO{
		Number:      p.Number,
		Round:       p.Round,
		PickInRound: p.PickInRound,
		TeamID:      p.TeamID,
		PlayerID:    p.PlayerID,
		MadeAt:      formatOptionalTime(p.MadeAt),
		AutoPicked:  p.AutoPicked,
	}
}

func toDraftDTO(view usecase.DraftView) draftDTO {
	picks := make([]pickDTO, 0, len(view.State.Picks))
	for _, p := range view.State.Picks {
		picks = append(picks, toPickDTO(p))
	}
	out := draftDTO{
		ID:               view.State.ID,
		LeagueID:         view.State.LeagueID,
		Status:           string(view.State.Status),
		Rounds:           view.State.Rounds,
		PickSeconds:      view.State.PickSeconds,
		CurrentRound:     view.CurrentRound,
		CurrentPick:      view.State.CurrentPick,
		SecondsRemaining: view.SecondsRemaining,
		TeamOrder:        append([]string(nil), view.State.TeamOrder...),
		Picks:            picks,
		CompletedAt:      formatOptionalTime(view.State.CompletedAt),
	}
	if view.OnTheClock != nil {
		pick := toPickDTO(*view.OnTheClock)
		out.OnTheClock = &pick
	}
	return out
}

func toClaimDTO(c waiver.Claim) claimDTO {
	return claimDTO{
		ID:            c.ID,
		TeamID:        c.TeamID,
		PlayerID:      c.PlayerID,
		DropPlayerID:  c.DropPlayerID,
		Priority:      c.Priority,
		Status:        string(c.Status),
		FailureReason: c.FailureReason,
		CreatedAt:     formatTime(c.CreatedAt),
		ProcessedAt:   formatOptionalTime(c.ProcessedAt),
	}
}

func toClaimDTOs(items []waiver.Claim) []claimDTO {
	out := make([]claimDTO, 0, len(items))
	for _, c := range items {
		out = append(out, toClaimDTO(c))
	}
	return out
}
