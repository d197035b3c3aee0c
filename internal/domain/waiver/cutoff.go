package waiver

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DailyCutoff is the UTC time of day at which the waiver batch runs.
type DailyCutoff struct {
	Hour   int
	Minute int
}

// ParseDailyCutoff parses "HH:MM" in UTC.
func ParseDailyCutoff(raw string) (DailyCutoff, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return DailyCutoff{}, fmt.Errorf("invalid cutoff %q, expected HH:MM", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return DailyCutoff{}, fmt.Errorf("invalid cutoff hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return DailyCutoff{}, fmt.Errorf("invalid cutoff minute in %q", raw)
	}
	return DailyCutoff{Hour: hour, Minute: minute}, nil
}

func (c DailyCutoff) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c DailyCutoff) on(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, 0, 0, time.UTC)
}

// Latest returns the most recent cutoff at or before t.
func (c DailyCutoff) Latest(t time.Time) time.Time {
	candidate := c.on(t)
	if candidate.After(t) {
		candidate = candidate.AddDate(0, 0, -1)
	}
	return candidate
}

// AtOrAfter returns the first cutoff at or after t.
func (c DailyCutoff) AtOrAfter(t time.Time) time.Time {
	candidate := c.on(t)
	if candidate.Before(t) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// Next returns the first cutoff strictly after t.
func (c DailyCutoff) Next(t time.Time) time.Time {
	candidate := c.on(t)
	if !candidate.After(t) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
