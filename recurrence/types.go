package recurrence

import (
	"fmt"

	"github.com/cyp0633/librepeat/event"
)

// DefaultHorizon is the last date any series may reach unless configured otherwise.
const DefaultHorizon = "2025-12-31"

// Limits caps how many candidates UntilEndDate generates per frequency
// before truncating at the end date.
type Limits struct {
	Daily   int `yaml:"daily"`
	Weekly  int `yaml:"weekly"`
	Monthly int `yaml:"monthly"`
	Yearly  int `yaml:"yearly"`
}

// DefaultLimits reach a one-year horizon for daily and weekly series and a
// multi-year horizon for monthly and yearly ones.
var DefaultLimits = Limits{
	Daily:   365,
	Weekly:  52,
	Monthly: 12,
	Yearly:  5,
}

// For returns the candidate count for t.
func (l Limits) For(t event.RepeatType) (int, error) {
	switch t {
	case event.RepeatNone:
		return 1, nil
	case event.RepeatDaily:
		return l.Daily, nil
	case event.RepeatWeekly:
		return l.Weekly, nil
	case event.RepeatMonthly:
		return l.Monthly, nil
	case event.RepeatYearly:
		return l.Yearly, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownRepeatType, t)
	}
}
