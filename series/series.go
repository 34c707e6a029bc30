// Package series resolves which stored occurrences belong to the same
// recurring series and computes the result of editing one of them.
package series

import (
	"github.com/samber/mo"

	"github.com/cyp0633/librepeat/event"
)

// EditMode selects how far an edit to one occurrence reaches.
type EditMode uint8

const (
	// EditSingle detaches the edited occurrence from its series.
	EditSingle EditMode = iota
	// EditAll applies the edit to every member of the series.
	EditAll
)

func (m EditMode) String() string {
	switch m {
	case EditSingle:
		return "single"
	case EditAll:
		return "all"
	default:
		return "unknown"
	}
}

// FindSeries returns the members of target's series within all.
//
// Members are matched by series id first. When target carries no series id,
// or nothing else shares it, members are matched structurally on title,
// times, repeat type and interval. Plain events form a series of one.
// A target that is not in all by id has no series.
func FindSeries(all []event.Event, target event.Event) []event.Event {
	if len(all) == 0 {
		return nil
	}

	found, ok := FindByID(all, target.ID.OrEmpty())
	if !ok || !target.ID.IsPresent() {
		return nil
	}

	if target.Repeat.Type == event.RepeatNone {
		return []event.Event{found}
	}

	if seriesID, ok := target.Repeat.ID.Get(); ok {
		members := filter(all, func(e event.Event) bool {
			id, ok := e.Repeat.ID.Get()
			return ok && id == seriesID
		})
		if len(members) > 0 {
			return members
		}
	}

	return filter(all, func(e event.Event) bool {
		return e.Title == target.Title &&
			e.StartTime == target.StartTime &&
			e.EndTime == target.EndTime &&
			e.Repeat.Type == target.Repeat.Type &&
			e.Repeat.Interval == target.Repeat.Interval
	})
}

// filter keeps the recurring events accepted by keep.
func filter(all []event.Event, keep func(event.Event) bool) []event.Event {
	var out []event.Event
	for _, e := range all {
		if e.Repeat.Type != event.RepeatNone && keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// FindByID returns the event whose id is id.
func FindByID(all []event.Event, id string) (event.Event, bool) {
	if id == "" {
		return event.Event{}, false
	}
	for _, e := range all {
		if e.ID.OrEmpty() == id {
			return e, true
		}
	}
	return event.Event{}, false
}

// IDs collects the ids of members, skipping drafts without one.
func IDs(members []event.Event) []string {
	ids := make([]string, 0, len(members))
	for _, e := range members {
		if id, ok := e.ID.Get(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// ApplyUpdate merges patch into original and fixes up the repeat rule
// for mode. It never turns a plain event into a recurring one.
//
// In EditSingle the result leaves its series: the rule is reset to a plain
// rule with interval 1 and no series id or end date. In EditAll the
// original type, interval and series id are kept and only a new end date
// from the patch is adopted. Unknown modes return the plain merge.
func ApplyUpdate(original event.Event, patch event.Patch, mode EditMode) event.Event {
	if patch.IsEmpty() {
		return original
	}

	merged := patch.Apply(original)

	if original.Repeat.Type == event.RepeatNone {
		merged.Repeat = original.Repeat
		return merged
	}

	switch mode {
	case EditSingle:
		merged.Repeat = event.RepeatInfo{Type: event.RepeatNone, Interval: 1}
	case EditAll:
		rule := original.Repeat
		if end, ok := patch.EndDate().Get(); ok {
			rule.EndDate = mo.Some(end)
		}
		merged.Repeat = rule
	}

	return merged
}
