package event

// IsRecurring reports whether e repeats. It is safe to call with nil.
func IsRecurring(e *Event) bool {
	if e == nil {
		return false
	}
	t := e.Repeat.Type
	return t.Valid() && t != RepeatNone
}

// RepeatTypes lists the selectable repeat kinds in display order.
// RepeatNone is the absence of a choice and is not included.
func RepeatTypes() []RepeatType {
	return []RepeatType{RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly}
}

var repeatLabels = map[RepeatType]string{
	RepeatNone:    "반복 안함",
	RepeatDaily:   "매일",
	RepeatWeekly:  "매주",
	RepeatMonthly: "매월",
	RepeatYearly:  "매년",
}

// Label returns the user-facing label for t, or "" for an unknown type.
func Label(t RepeatType) string {
	return repeatLabels[t]
}
