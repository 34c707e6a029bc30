// Package datemath does calendar arithmetic on ISO dates (YYYY-MM-DD).
//
// All values are handled as UTC midnight so zone offsets and DST never
// move a date. Month and year offsets clamp to the last valid day of the
// target month; they never overflow into the following month the way
// time.Time.AddDate does.
package datemath

import (
	"fmt"
	"time"
)

// Layout is the ISO calendar date layout.
const Layout = "2006-01-02"

// Parse reads an ISO date.
func Parse(date string) (time.Time, error) {
	t, err := time.Parse(Layout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// Format writes t as an ISO date.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// LastDayOfMonth returns the number of days in month of year.
func LastDayOfMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// IsValidDateInMonth reports whether day exists in month of year.
func IsValidDateInMonth(year int, month time.Month, day int) bool {
	return day >= 1 && day <= LastDayOfMonth(year, month)
}

// Date builds a UTC midnight time for a day that is known to exist.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ShiftDays moves t by n calendar days.
func ShiftDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// ShiftMonths moves t by n months, clamping the day to the target month.
func ShiftMonths(t time.Time, n int) time.Time {
	// month arithmetic on a zero-based index so negative offsets wrap correctly
	idx := t.Year()*12 + int(t.Month()) - 1 + n
	year, month := floorDiv(idx, 12), time.Month(floorMod(idx, 12)+1)
	return Date(year, month, min(t.Day(), LastDayOfMonth(year, month)))
}

// ShiftYears moves t by n years. Feb 29 lands on Feb 28 in common years.
func ShiftYears(t time.Time, n int) time.Time {
	year := t.Year() + n
	return Date(year, t.Month(), min(t.Day(), LastDayOfMonth(year, t.Month())))
}

// AddDays offsets an ISO date by n days.
func AddDays(date string, n int) (string, error) {
	return shift(date, n, ShiftDays)
}

// AddWeeks offsets an ISO date by n weeks.
func AddWeeks(date string, n int) (string, error) {
	return shift(date, 7*n, ShiftDays)
}

// AddMonths offsets an ISO date by n months, e.g. 2024-01-31 +1 = 2024-02-29.
func AddMonths(date string, n int) (string, error) {
	return shift(date, n, ShiftMonths)
}

// AddYears offsets an ISO date by n years, e.g. 2024-02-29 +1 = 2025-02-28.
func AddYears(date string, n int) (string, error) {
	return shift(date, n, ShiftYears)
}

func shift(date string, n int, fn func(time.Time, int) time.Time) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return Format(fn(t, n)), nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
