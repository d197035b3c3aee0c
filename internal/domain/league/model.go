package league

import "fmt"

const (
	DefaultDraftRounds = 10
	DefaultPickSeconds = 90
)

// League groups the fantasy teams that draft from one player pool.
type League struct {
	ID             string
	Name           string
	Season         string
	CommissionerID string
	DraftRounds    int
	PickSeconds    int
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.CommissionerID == "" {
		return fmt.Errorf("league commissioner is required")
	}
	if l.DraftRounds < 0 {
		return fmt.Errorf("league draft rounds must not be negative")
	}
	if l.PickSeconds < 0 {
		return fmt.Errorf("league pick seconds must not be negative")
	}

	return nil
}

// IsCommissioner reports whether userID runs the league.
func (l League) IsCommissioner(userID string) bool {
	return userID != "" && l.CommissionerID == userID
}
