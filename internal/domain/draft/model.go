package draft

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a league draft.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

var (
	ErrStaleState        = errors.New("draft state changed concurrently")
	ErrDraftExists       = errors.New("draft already exists for league")
	ErrInvalidTransition = errors.New("invalid draft transition")
	ErrPlayerDrafted     = errors.New("player already drafted")
	ErrNotEnoughTeams    = errors.New("draft needs at least two teams")
)

const MinTeams = 2

// Pick is one slot of the draft sequence. Number is the overall pick id.
type Pick struct {
	Number      int
	Round       int
	PickInRound int
	TeamID      string
	PlayerID    string
	MadeAt      *time.Time
	AutoPicked  bool
}

func (p Pick) Made() bool {
	return p.PlayerID != ""
}

// State is the durable draft record. While active the timer is the Deadline;
// while paused the frozen time lives in Remaining.
type State struct {
	ID              string
	LeagueID        string
	Status          Status
	Rounds          int
	PickSeconds     int
	TeamOrder       []string
	Picks           []Pick
	CurrentPick     int
	Deadline        *time.Time
	Remaining       time.Duration
	RostersAssigned bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
}

// SnakeOrder builds the full pick sequence: odd rounds follow teamOrder,
// even rounds reverse it.
func SnakeOrder(teamOrder []string, rounds int) []Pick {
	n := len(teamOrder)
	picks := make([]Pick, 0, n*rounds)
	for round := 1; round <= rounds; round++ {
		for i := 0; i < n; i++ {
			idx := i
			if round%2 == 0 {
				idx = n - 1 - i
			}
			picks = append(picks, Pick{
				Number:      len(picks) + 1,
				Round:       round,
				PickInRound: i + 1,
				TeamID:      teamOrder[idx],
			})
		}
	}
	return picks
}

// New returns a pending draft with its full pick sequence.
func New(id, leagueID string, teamOrder []string, rounds, pickSeconds int, now time.Time) (State, error) {
	if len(teamOrder) < MinTeams {
		return State{}, fmt.Errorf("%w: got %d", ErrNotEnoughTeams, len(teamOrder))
	}
	if rounds < 1 {
		return State{}, fmt.Errorf("draft rounds must be >= 1")
	}
	if pickSeconds < 1 {
		return State{}, fmt.Errorf("draft pick seconds must be >= 1")
	}
	seen := make(map[string]struct{}, len(teamOrder))
	for _, teamID := range teamOrder {
		if _, dup := seen[teamID]; dup {
			return State{}, fmt.Errorf("duplicate team %s in draft order", teamID)
		}
		seen[teamID] = struct{}{}
	}

	return State{
		ID:          id,
		LeagueID:    leagueID,
		Status:      StatusPending,
		Rounds:      rounds,
		PickSeconds: pickSeconds,
		TeamOrder:   append([]string(nil), teamOrder...),
		Picks:       SnakeOrder(teamOrder, rounds),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s State) Clone() State {
	copied := s
	copied.TeamOrder = append([]string(nil), s.TeamOrder...)
	copied.Picks = append([]Pick(nil), s.Picks...)
	if s.Deadline != nil {
		d := *s.Deadline
		copied.Deadline = &d
	}
	if s.CompletedAt != nil {
		c := *s.CompletedAt
		copied.CompletedAt = &c
	}
	return copied
}

func (s State) TotalPicks() int {
	return len(s.Picks)
}

// OnTheClock returns the pick currently waiting for a selection.
func (s State) OnTheClock() (Pick, bool) {
	if s.Status != StatusActive && s.Status != StatusPaused {
		return Pick{}, false
	}
	if s.CurrentPick < 1 || s.CurrentPick > len(s.Picks) {
		return Pick{}, false
	}
	return s.Picks[s.CurrentPick-1], true
}

func (s State) CurrentRound() int {
	if pick, ok := s.OnTheClock(); ok {
		return pick.Round
	}
	if s.Status == StatusCompleted {
		return s.Rounds
	}
	return 0
}

// SecondsRemaining rounds the time left on the clock up to whole seconds.
func (s State) SecondsRemaining(now time.Time) int {
	switch s.Status {
	case StatusActive:
		if s.Deadline == nil {
			return 0
		}
		return ceilSeconds(s.Deadline.Sub(now))
	case StatusPaused:
		return ceilSeconds(s.Remaining)
	case StatusPending:
		return s.PickSeconds
	default:
		return 0
	}
}

// Expired reports whether the pick on the clock has run out of time.
func (s State) Expired(now time.Time) bool {
	return s.Status == StatusActive && s.Deadline != nil && !now.Before(*s.Deadline)
}

func (s State) IsDrafted(playerID string) bool {
	for _, p := range s.Picks {
		if p.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (s State) DraftedPlayerIDs() map[string]struct{} {
	out := make(map[string]struct{}, len(s.Picks))
	for _, p := range s.Picks {
		if p.Made() {
			out[p.PlayerID] = struct{}{}
		}
	}
	return out
}

// PicksByTeam groups made picks per team in pick order.
func (s State) PicksByTeam() map[string][]Pick {
	out := make(map[string][]Pick, len(s.TeamOrder))
	for _, p := range s.Picks {
		if p.Made() {
			out[p.TeamID] = append(out[p.TeamID], p)
		}
	}
	return out
}

func (s State) Start(now time.Time) (State, error) {
	if s.Status != StatusPending {
		return State{}, fmt.Errorf("%w: cannot start from %s", ErrInvalidTransition, s.Status)
	}
	next := s.Clone()
	next.Status = StatusActive
	next.CurrentPick = 1
	next.setDeadline(now.Add(next.pickDuration()))
	next.UpdatedAt = now
	return next, nil
}

// RecordPick assigns playerID to the pick on the clock and advances the turn.
func (s State) RecordPick(playerID string, auto bool, now time.Time) (State, error) {
	if s.Status != StatusActive {
		return State{}, fmt.Errorf("%w: cannot pick while %s", ErrInvalidTransition, s.Status)
	}
	if playerID == "" {
		return State{}, fmt.Errorf("player id is required")
	}
	if s.IsDrafted(playerID) {
		return State{}, fmt.Errorf("%w: %s", ErrPlayerDrafted, playerID)
	}
	if _, ok := s.OnTheClock(); !ok {
		return State{}, fmt.Errorf("%w: no pick on the clock", ErrInvalidTransition)
	}

	next := s.Clone()
	madeAt := now
	idx := next.CurrentPick - 1
	next.Picks[idx].PlayerID = playerID
	next.Picks[idx].MadeAt = &madeAt
	next.Picks[idx].AutoPicked = auto
	next.CurrentPick++
	next.UpdatedAt = now

	if next.CurrentPick > len(next.Picks) {
		next.Status = StatusCompleted
		next.Deadline = nil
		next.Remaining = 0
		completedAt := now
		next.CompletedAt = &completedAt
		return next, nil
	}

	next.setDeadline(now.Add(next.pickDuration()))
	return next, nil
}

func (s State) Pause(now time.Time) (State, error) {
	if s.Status != StatusActive {
		return State{}, fmt.Errorf("%w: cannot pause from %s", ErrInvalidTransition, s.Status)
	}
	next := s.Clone()
	remaining := time.Duration(0)
	if s.Deadline != nil {
		remaining = s.Deadline.Sub(now)
	}
	if remaining < 0 {
		remaining = 0
	}
	next.Status = StatusPaused
	next.Remaining = remaining
	next.Deadline = nil
	next.UpdatedAt = now
	return next, nil
}

func (s State) Resume(now time.Time) (State, error) {
	if s.Status != StatusPaused {
		return State{}, fmt.Errorf("%w: cannot resume from %s", ErrInvalidTransition, s.Status)
	}
	next := s.Clone()
	next.Status = StatusActive
	next.setDeadline(now.Add(s.Remaining))
	next.Remaining = 0
	next.UpdatedAt = now
	return next, nil
}

func (s State) pickDuration() time.Duration {
	return time.Duration(s.PickSeconds) * time.Second
}

func (s *State) setDeadline(t time.Time) {
	s.Deadline = &t
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	return int(secs)
}
