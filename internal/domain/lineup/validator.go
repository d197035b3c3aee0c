package lineup

import (
	"github.com/riskibarqy/roster-engine/internal/domain/player"
	"github.com/riskibarqy/roster-engine/internal/domain/roster"
)

// Result is the outcome of checking a proposed starting five.
type Result string

const (
	ResultOK                        Result = "ok"
	ResultWrongCount                Result = "wrong_count"
	ResultInsufficientGuards        Result = "insufficient_guards"
	ResultInsufficientForwardCenter Result = "insufficient_forward_center"
)

const (
	MinGuards     = 2
	MinFrontcourt = 1
)

func (r Result) OK() bool {
	return r == ResultOK
}

// Validate checks a starting lineup. Dual-position tokens such as "G-F"
// count toward both the guard and the forward/center minimum.
func Validate(starters []player.Player) Result {
	positions := make([]string, 0, len(starters))
	for _, p := range starters {
		positions = append(positions, p.Position)
	}
	return ValidatePositions(positions)
}

func ValidatePositions(positions []string) Result {
	if len(positions) != roster.StarterCount {
		return ResultWrongCount
	}

	guards, frontcourt := 0, 0
	for _, token := range positions {
		if player.IsGuardPosition(token) {
			guards++
		}
		if player.IsFrontcourtPosition(token) {
			frontcourt++
		}
	}

	if guards < MinGuards {
		return ResultInsufficientGuards
	}
	if frontcourt < MinFrontcourt {
		return ResultInsufficientForwardCenter
	}
	return ResultOK
}
