package event

import (
	"fmt"

	"github.com/samber/mo"
)

// RepeatType is the recurrence frequency of an event.
// The zero value is RepeatNone.
type RepeatType uint8

const (
	RepeatNone RepeatType = iota
	RepeatDaily
	RepeatWeekly
	RepeatMonthly
	RepeatYearly
)

var repeatTypeNames = [...]string{
	RepeatNone:    "none",
	RepeatDaily:   "daily",
	RepeatWeekly:  "weekly",
	RepeatMonthly: "monthly",
	RepeatYearly:  "yearly",
}

// Valid reports whether t is one of the declared repeat types.
func (t RepeatType) Valid() bool {
	return int(t) < len(repeatTypeNames)
}

func (t RepeatType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("RepeatType(%d)", uint8(t))
	}
	return repeatTypeNames[t]
}

// MarshalText encodes the type as its lowercase tag.
func (t RepeatType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid repeat type %d", uint8(t))
	}
	return []byte(repeatTypeNames[t]), nil
}

// UnmarshalText accepts the lowercase tags. An empty tag decodes to RepeatNone.
func (t *RepeatType) UnmarshalText(text []byte) error {
	parsed, err := ParseRepeatType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseRepeatType maps a tag such as "weekly" to its RepeatType.
func ParseRepeatType(s string) (RepeatType, error) {
	if s == "" {
		return RepeatNone, nil
	}
	for i, name := range repeatTypeNames {
		if name == s {
			return RepeatType(i), nil
		}
	}
	return RepeatNone, fmt.Errorf("unknown repeat type %q", s)
}

// RepeatInfo describes how an event repeats.
type RepeatInfo struct {
	Type     RepeatType `json:"type"`
	Interval int        `json:"interval"`
	// ID groups the occurrences generated for one series.
	ID mo.Option[string] `json:"id"`
	// EndDate is an ISO date (YYYY-MM-DD); absent means "until the horizon".
	EndDate mo.Option[string] `json:"endDate"`
}

// Step returns the interval to advance by, treating values below 1 as 1.
func (r RepeatInfo) Step() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}

// Event is a single calendar occurrence.
type Event struct {
	// ID is absent for drafts that were never persisted.
	ID          mo.Option[string] `json:"id"`
	Title       string            `json:"title"`
	Date        string            `json:"date"`      // YYYY-MM-DD
	StartTime   string            `json:"startTime"` // HH:MM
	EndTime     string            `json:"endTime"`   // HH:MM
	Description string            `json:"description"`
	Location    string            `json:"location"`
	Category    string            `json:"category"`
	Repeat      RepeatInfo        `json:"repeat"`
	// NotificationTime is the reminder lead time in minutes.
	NotificationTime int `json:"notificationTime"`
}

// SameID reports whether both events carry an id and the ids are equal.
func (e Event) SameID(other Event) bool {
	a, ok := e.ID.Get()
	if !ok {
		return false
	}
	b, ok := other.ID.Get()
	return ok && a == b
}

// WithDate returns a copy of e moved to date.
func (e Event) WithDate(date string) Event {
	e.Date = date
	return e
}
