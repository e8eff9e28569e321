package domain

import (
	"fmt"
	"strings"
	"time"
)

// ClockTime is a time of day that may be unset.
// The zero value is unset; midnight is {Minutes: 0, Valid: true} and counts
// as a real time.
type ClockTime struct {
	Minutes int // minutes past midnight, 0..1439
	Valid   bool
}

// NewClockTime returns a set ClockTime for hour:minute.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime{Minutes: hour*60 + minute, Valid: true}
}

// ParseClockTime parses "15:04" or "15:04:05". Blank input yields an unset
// ClockTime and no error. Seconds are accepted but discarded.
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ClockTime{}, nil
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewClockTime(t.Hour(), t.Minute()), nil
		}
	}
	return ClockTime{}, fmt.Errorf("invalid time %q: want HH:MM", s)
}

// Hour returns the hour component.
func (c ClockTime) Hour() int { return c.Minutes / 60 }

// Minute returns the minute component.
func (c ClockTime) Minute() int { return c.Minutes % 60 }

// String formats the time as "15:04", or "" when unset.
func (c ClockTime) String() string {
	if !c.Valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}
