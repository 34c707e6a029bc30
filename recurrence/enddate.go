package recurrence

import "github.com/samber/mo"

// ResolveEndDate picks the effective end date of a series.
// An absent or empty endDate resolves to horizon, and anything past the
// horizon is capped to it. Ordering against the series start is not
// checked here; see ValidateEndDate.
func ResolveEndDate(endDate mo.Option[string], horizon string) string {
	end := endDate.OrEmpty()
	if end == "" || end > horizon {
		return horizon
	}
	return end
}
