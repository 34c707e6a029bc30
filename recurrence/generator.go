package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/cyp0633/librepeat/datemath"
	"github.com/cyp0633/librepeat/event"
)

// ErrUnknownRepeatType is returned when a rule carries a type outside the declared set.
var ErrUnknownRepeatType = errors.New("unknown repeat type")

// Single returns base as the only occurrence.
func Single(base event.Event) []event.Event {
	return []event.Event{base}
}

// Daily returns count occurrences, one every Step() days starting at base.Date.
func Daily(base event.Event, count int) ([]event.Event, error) {
	step := base.Repeat.Step()
	return every(base, count, func(start time.Time, i int) time.Time {
		return datemath.ShiftDays(start, i*step)
	})
}

// Weekly returns count occurrences on the weekday of base.Date.
func Weekly(base event.Event, count int) ([]event.Event, error) {
	step := base.Repeat.Step()
	return every(base, count, func(start time.Time, i int) time.Time {
		return datemath.ShiftDays(start, 7*i*step)
	})
}

// Monthly returns count occurrences on the day-of-month of base.Date.
// Months without that day are skipped and do not count towards count.
func Monthly(base event.Event, count int) ([]event.Event, error) {
	start, err := datemath.Parse(base.Date)
	if err != nil {
		return nil, err
	}
	step := base.Repeat.Step()
	day := start.Day()

	out := make([]event.Event, 0, max(count, 0))
	// first of month never clamps, so ShiftMonths walks months exactly
	cursor := datemath.Date(start.Year(), start.Month(), 1)
	for len(out) < count {
		if datemath.IsValidDateInMonth(cursor.Year(), cursor.Month(), day) {
			d := datemath.Date(cursor.Year(), cursor.Month(), day)
			out = append(out, base.WithDate(datemath.Format(d)))
		}
		cursor = datemath.ShiftMonths(cursor, step)
	}
	return out, nil
}

// Yearly returns count occurrences on the month and day of base.Date.
// Years without that day (Feb 29 in common years) are skipped.
func Yearly(base event.Event, count int) ([]event.Event, error) {
	start, err := datemath.Parse(base.Date)
	if err != nil {
		return nil, err
	}
	step := base.Repeat.Step()
	month, day := start.Month(), start.Day()

	out := make([]event.Event, 0, max(count, 0))
	for year := start.Year(); len(out) < count; year += step {
		if datemath.IsValidDateInMonth(year, month, day) {
			out = append(out, base.WithDate(datemath.Format(datemath.Date(year, month, day))))
		}
	}
	return out, nil
}

// Generate dispatches on base.Repeat.Type.
func Generate(base event.Event, count int) ([]event.Event, error) {
	switch base.Repeat.Type {
	case event.RepeatNone:
		return Single(base), nil
	case event.RepeatDaily:
		return Daily(base, count)
	case event.RepeatWeekly:
		return Weekly(base, count)
	case event.RepeatMonthly:
		return Monthly(base, count)
	case event.RepeatYearly:
		return Yearly(base, count)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownRepeatType, base.Repeat.Type)
	}
}

// UntilEndDate generates the series of base up to and including endDate.
// Candidates come from Generate with the count given by limits, and the
// walk stops at the first candidate past endDate.
func UntilEndDate(base event.Event, endDate string, limits Limits) ([]event.Event, error) {
	if base.Repeat.Type == event.RepeatNone {
		return Single(base), nil
	}
	if _, err := datemath.Parse(endDate); err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}
	count, err := limits.For(base.Repeat.Type)
	if err != nil {
		return nil, err
	}
	candidates, err := Generate(base, count)
	if err != nil {
		return nil, err
	}
	return truncate(candidates, endDate), nil
}

// truncate keeps the ascending prefix of candidates dated on or before endDate.
// ISO dates order lexically.
func truncate(candidates []event.Event, endDate string) []event.Event {
	for i, c := range candidates {
		if c.Date > endDate {
			return candidates[:i]
		}
	}
	return candidates
}

func every(base event.Event, count int, at func(time.Time, int) time.Time) ([]event.Event, error) {
	start, err := datemath.Parse(base.Date)
	if err != nil {
		return nil, err
	}
	out := make([]event.Event, 0, max(count, 0))
	for i := 0; i < count; i++ {
		out = append(out, base.WithDate(datemath.Format(at(start, i))))
	}
	return out, nil
}
