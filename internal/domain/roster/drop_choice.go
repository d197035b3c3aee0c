package roster

import "strings"

// DropChoice is either "no drop" (the zero value) or "drop a named player".
type DropChoice struct {
	playerID string
}

func NoDrop() DropChoice {
	return DropChoice{}
}

func DropPlayer(playerID string) DropChoice {
	return DropChoice{playerID: strings.TrimSpace(playerID)}
}

// DropFromOptional maps an optional wire field onto a DropChoice.
func DropFromOptional(playerID *string) DropChoice {
	if playerID == nil || strings.TrimSpace(*playerID) == "" {
		return NoDrop()
	}
	return DropPlayer(*playerID)
}

func (d DropChoice) PlayerID() (string, bool) {
	return d.playerID, d.playerID != ""
}

func (d DropChoice) IsDrop() bool {
	return d.playerID != ""
}

func (d DropChoice) String() string {
	if d.playerID == "" {
		return "no-drop"
	}
	return "drop:" + d.playerID
}
