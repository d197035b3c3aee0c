package movebudget

import (
	"errors"
	"fmt"
	"time"
)

const MaxMovesPerWeek = 3

var ErrBudgetExceeded = errors.New("weekly move budget exhausted")

// Counter is the number of counted moves a team made in one week.
type Counter struct {
	TeamID    string
	WeekID    string
	Moves     int
	UpdatedAt time.Time
}

func (c Counter) Remaining() int {
	left := MaxMovesPerWeek - c.Moves
	if left < 0 {
		return 0
	}
	return left
}

// WeekID names the ISO week containing t, for example "2026-W42".
func WeekID(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// WeekStart returns Monday 00:00 UTC of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// NextWeekStart returns the first week boundary strictly after t.
func NextWeekStart(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 7)
}
