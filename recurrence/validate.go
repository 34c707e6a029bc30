package recurrence

import (
	"errors"
	"fmt"

	"github.com/samber/mo"

	"github.com/cyp0633/librepeat/datemath"
)

var (
	ErrInvalidEndDate   = errors.New("not a valid date format")
	ErrEndBeforeStart   = errors.New("end date must be on or after the start date")
	ErrInvalidStartDate = errors.New("start date is not a valid date")
)

// ValidationError reports why an end date was rejected. Reason is meant
// to be shown to the user as is.
type ValidationError struct {
	Kind      error
	Reason    string
	StartDate string
	EndDate   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid repeat end date %q (start %q): %s", e.EndDate, e.StartDate, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// ValidateEndDate checks a user supplied end date against the series start.
// An absent or empty end date is valid; the resolver supplies the horizon.
// Run it before generating anything.
func ValidateEndDate(startDate string, endDate mo.Option[string]) error {
	end := endDate.OrEmpty()
	if end == "" {
		return nil
	}

	endT, err := datemath.Parse(end)
	if err != nil {
		return newValidationError(ErrInvalidEndDate, startDate, end)
	}
	startT, err := datemath.Parse(startDate)
	if err != nil {
		return newValidationError(ErrInvalidStartDate, startDate, end)
	}
	if endT.Before(startT) {
		return newValidationError(ErrEndBeforeStart, startDate, end)
	}
	return nil
}

func newValidationError(kind error, start, end string) *ValidationError {
	return &ValidationError{
		Kind:      kind,
		Reason:    kind.Error(),
		StartDate: start,
		EndDate:   end,
	}
}
