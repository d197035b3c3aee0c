package roster

import (
	"errors"
	"fmt"
	"time"
)

const (
	MaxSlots     = 10
	StarterCount = 5
)

var (
	ErrRosterFull      = errors.New("roster is full")
	ErrPlayerOwned     = errors.New("player is already rostered in league")
	ErrPlayerNotOnTeam = errors.New("player is not on team")
	ErrDuplicatePlayer = errors.New("player already on team")
	ErrVersionMismatch = errors.New("team was modified concurrently")
)

// AcquisitionType records how a slot was filled.
type AcquisitionType string

const (
	AcquiredDraft     AcquisitionType = "draft"
	AcquiredFreeAgent AcquisitionType = "free_agent"
	AcquiredWaiver    AcquisitionType = "waiver"
)

// Slot is one rostered player with an explicit starter flag.
type Slot struct {
	PlayerID    string
	Position    string
	IsStarter   bool
	AcquiredVia AcquisitionType
	AcquiredAt  time.Time
}

// Team is a fantasy team and its ordered roster slots.
type Team struct {
	ID            string
	LeagueID      string
	OwnerID       string
	Name          string
	SeasonPoints  float64
	DraftPosition int
	Version       int64
	Slots         []Slot
	UpdatedAt     time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.LeagueID == "" {
		return fmt.Errorf("team league id is required")
	}
	if t.OwnerID == "" {
		return fmt.Errorf("team owner is required")
	}
	if len(t.Slots) > MaxSlots {
		return fmt.Errorf("%w: %d slots exceeds %d", ErrRosterFull, len(t.Slots), MaxSlots)
	}

	seen := make(map[string]struct{}, len(t.Slots))
	starters := 0
	for _, s := range t.Slots {
		if s.PlayerID == "" {
			return fmt.Errorf("slot player id is required")
		}
		if _, ok := seen[s.PlayerID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, s.PlayerID)
		}
		seen[s.PlayerID] = struct{}{}
		if s.IsStarter {
			starters++
		}
	}
	if starters > StarterCount {
		return fmt.Errorf("team has %d starters, max %d", starters, StarterCount)
	}

	return nil
}

func (t Team) OwnedBy(userID string) bool {
	return userID != "" && t.OwnerID == userID
}

func (t Team) IsFull() bool {
	return len(t.Slots) >= MaxSlots
}

func (t Team) HasPlayer(playerID string) bool {
	_, ok := t.Slot(playerID)
	return ok
}

func (t Team) Slot(playerID string) (Slot, bool) {
	for _, s := range t.Slots {
		if s.PlayerID == playerID {
			return s, true
		}
	}
	return Slot{}, false
}

func (t Team) StarterIDs() []string {
	out := make([]string, 0, StarterCount)
	for _, s := range t.Slots {
		if s.IsStarter {
			out = append(out, s.PlayerID)
		}
	}
	return out
}

func (t Team) PlayerIDs() []string {
	out := make([]string, 0, len(t.Slots))
	for _, s := range t.Slots {
		out = append(out, s.PlayerID)
	}
	return out
}

func (t Team) Clone() Team {
	copied := t
	copied.Slots = append([]Slot(nil), t.Slots...)
	return copied
}

// AddSlot appends a slot, enforcing the roster cap.
func (t *Team) AddSlot(slot Slot) error {
	if t.HasPlayer(slot.PlayerID) {
		return fmt.Errorf("%w: %s", ErrDuplicatePlayer, slot.PlayerID)
	}
	if t.IsFull() {
		return fmt.Errorf("%w: team=%s", ErrRosterFull, t.ID)
	}
	t.Slots = append(t.Slots, slot)
	return nil
}

// RemoveSlot drops playerID from the roster and returns the removed slot.
func (t *Team) RemoveSlot(playerID string) (Slot, error) {
	for i, s := range t.Slots {
		if s.PlayerID != playerID {
			continue
		}
		t.Slots = append(t.Slots[:i:i], t.Slots[i+1:]...)
		return s, nil
	}
	return Slot{}, fmt.Errorf("%w: %s", ErrPlayerNotOnTeam, playerID)
}

// ApplyAdd adds slot under the given drop choice. With a drop the named player
// is removed first, so the cap check only matters for NoDrop.
func (t *Team) ApplyAdd(slot Slot, drop DropChoice) (*Slot, error) {
	dropID, hasDrop := drop.PlayerID()
	if !hasDrop {
		if err := t.AddSlot(slot); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if dropID == slot.PlayerID {
		return nil, fmt.Errorf("%w: cannot drop the player being added", ErrDuplicatePlayer)
	}
	removed, err := t.RemoveSlot(dropID)
	if err != nil {
		return nil, err
	}
	if err := t.AddSlot(slot); err != nil {
		return nil, err
	}
	return &removed, nil
}

// SetStarters flags exactly the given players as starters.
func (t *Team) SetStarters(playerIDs []string) error {
	want := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if !t.HasPlayer(id) {
			return fmt.Errorf("%w: %s", ErrPlayerNotOnTeam, id)
		}
		if _, dup := want[id]; dup {
			return fmt.Errorf("%w: %s listed twice", ErrDuplicatePlayer, id)
		}
		want[id] = struct{}{}
	}

	for i := range t.Slots {
		_, ok := want[t.Slots[i].PlayerID]
		t.Slots[i].IsStarter = ok
	}
	return nil
}
