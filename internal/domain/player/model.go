package player

import (
	"fmt"
	"strings"
	"time"
)

// Player is a selectable athlete in a league's player pool.
//
// Position is a free-form token such as "G", "F", "C", "G-F" or "F-C".
type Player struct {
	ID              string
	LeagueID        string
	FullName        string
	Position        string
	ProTeam         string
	SeasonAverage   float64
	WaiverExpiresAt *time.Time
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.LeagueID == "" {
		return fmt.Errorf("player league id is required")
	}
	if p.FullName == "" {
		return fmt.Errorf("player name is required")
	}
	if strings.TrimSpace(p.Position) == "" {
		return fmt.Errorf("player position is required")
	}

	return nil
}

// IsGuard reports whether the position token contains "G".
func (p Player) IsGuard() bool {
	return IsGuardPosition(p.Position)
}

// IsFrontcourt reports whether the position token contains "F" or "C".
func (p Player) IsFrontcourt() bool {
	return IsFrontcourtPosition(p.Position)
}

// OnWaivers reports whether the player is inside an active waiver window at now.
func (p Player) OnWaivers(now time.Time) bool {
	return p.WaiverExpiresAt != nil && now.Before(*p.WaiverExpiresAt)
}

func IsGuardPosition(token string) bool {
	return strings.Contains(strings.ToUpper(token), "G")
}

func IsFrontcourtPosition(token string) bool {
	return strings.ContainsAny(strings.ToUpper(token), "FC")
}
