package recurrence

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/teambition/rrule-go"

	"github.com/cyp0633/librepeat/datemath"
	"github.com/cyp0633/librepeat/event"
)

const (
	productID = "-//github.com/cyp0633/librepeat//NONSGML v1.0//EN"

	// PropSeriesID carries RepeatInfo.ID on exported components
	PropSeriesID = "X-LIBREPEAT-SERIES-ID"
	// PropRepeatType, PropRepeatInterval and PropRepeatEnd carry the rest of
	// an occurrence's RepeatInfo, which has no RRULE once expanded
	PropRepeatType     = "X-LIBREPEAT-REPEAT-TYPE"
	PropRepeatInterval = "X-LIBREPEAT-REPEAT-INTERVAL"
	PropRepeatEnd      = "X-LIBREPEAT-REPEAT-END"

	timeLayout = "15:04"
)

// ErrUnsupportedRule is returned for RRULE parts this package does not model
var ErrUnsupportedRule = errors.New("unsupported recurrence rule")

var freqByType = map[event.RepeatType]rrule.Frequency{
	event.RepeatDaily:   rrule.DAILY,
	event.RepeatWeekly:  rrule.WEEKLY,
	event.RepeatMonthly: rrule.MONTHLY,
	event.RepeatYearly:  rrule.YEARLY,
}

// RRuleFor converts info into an RRULE. until, when non-empty, is an ISO
// date; the rule then ends at the last second of that day (UTC).
func RRuleFor(info event.RepeatInfo, until string) (*rrule.ROption, error) {
	freq, ok := freqByType[info.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no RRULE form", ErrUnknownRepeatType, info.Type)
	}

	opt := &rrule.ROption{
		Freq:     freq,
		Interval: info.Step(),
	}
	if until != "" {
		day, err := datemath.Parse(until)
		if err != nil {
			return nil, fmt.Errorf("until: %w", err)
		}
		opt.Until = day.Add(24*time.Hour - time.Second)
	}
	return opt, nil
}

// RepeatInfoFromRRule parses RRULE text (with or without the "RRULE:"
// prefix). Only FREQ, INTERVAL and UNTIL are understood; anything else
// that changes the occurrence set is rejected.
func RepeatInfoFromRRule(s string) (event.RepeatInfo, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "RRULE:")
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return event.RepeatInfo{}, fmt.Errorf("failed to parse RRULE '%s': %w", s, err)
	}

	if opt.Count != 0 || len(opt.Byweekday) > 0 || len(opt.Bysetpos) > 0 ||
		len(opt.Bymonth) > 0 || len(opt.Bymonthday) > 0 || len(opt.Byyearday) > 0 ||
		len(opt.Byweekno) > 0 || len(opt.Byhour) > 0 || len(opt.Byminute) > 0 ||
		len(opt.Bysecond) > 0 || len(opt.Byeaster) > 0 {
		return event.RepeatInfo{}, fmt.Errorf("%w: %s", ErrUnsupportedRule, s)
	}

	info := event.RepeatInfo{Interval: max(opt.Interval, 1)}
	switch opt.Freq {
	case rrule.DAILY:
		info.Type = event.RepeatDaily
	case rrule.WEEKLY:
		info.Type = event.RepeatWeekly
	case rrule.MONTHLY:
		info.Type = event.RepeatMonthly
	case rrule.YEARLY:
		info.Type = event.RepeatYearly
	default:
		return event.RepeatInfo{}, fmt.Errorf("%w: frequency %s", ErrUnsupportedRule, opt.Freq)
	}
	if !opt.Until.IsZero() {
		info.EndDate = mo.Some(datemath.Format(opt.Until.UTC()))
	}
	return info, nil
}

// ComponentFor builds a VEVENT for a single occurrence. Times are written
// in UTC; an event without a start time becomes an all-day event.
func ComponentFor(ev event.Event) (*ical.Component, error) {
	start, end, allDay, err := occurrenceBounds(ev)
	if err != nil {
		return nil, err
	}

	comp := ical.NewComponent(ical.CompEvent)
	comp.Props.SetText(ical.PropUID, ev.ID.OrElse(uuid.NewString()))
	comp.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	if allDay {
		comp.Props.SetDate(ical.PropDateTimeStart, start)
		comp.Props.SetDate(ical.PropDateTimeEnd, end)
	} else {
		comp.Props.SetDateTime(ical.PropDateTimeStart, start)
		comp.Props.SetDateTime(ical.PropDateTimeEnd, end)
	}
	comp.Props.SetText(ical.PropSummary, ev.Title)
	setOptionalText(comp.Props, ical.PropDescription, ev.Description)
	setOptionalText(comp.Props, ical.PropLocation, ev.Location)
	setOptionalText(comp.Props, ical.PropCategories, ev.Category)
	if id, ok := ev.Repeat.ID.Get(); ok {
		comp.Props.SetText(PropSeriesID, id)
	}
	if ev.Repeat.Type != event.RepeatNone {
		typ, err := ev.Repeat.Type.MarshalText()
		if err != nil {
			return nil, err
		}
		comp.Props.SetText(PropRepeatType, string(typ))
		comp.Props.SetText(PropRepeatInterval, strconv.Itoa(ev.Repeat.Step()))
		if end, ok := ev.Repeat.EndDate.Get(); ok {
			comp.Props.SetText(PropRepeatEnd, end)
		}
	}

	if ev.NotificationTime > 0 {
		alarm := ical.NewComponent(ical.CompAlarm)
		alarm.Props.SetText(ical.PropAction, "DISPLAY")
		alarm.Props.SetText(ical.PropDescription, ev.Title)
		trigger := ical.NewProp(ical.PropTrigger)
		trigger.Value = "-PT" + strconv.Itoa(ev.NotificationTime) + "M"
		alarm.Props.Set(trigger)
		comp.Children = append(comp.Children, alarm)
	}

	return comp, nil
}

// MasterComponent builds one VEVENT that stands for base's whole series,
// ending at until (an ISO date, usually the resolved end date).
func MasterComponent(base event.Event, until string) (*ical.Component, error) {
	comp, err := ComponentFor(base)
	if err != nil {
		return nil, err
	}
	if base.Repeat.Type == event.RepeatNone {
		return comp, nil
	}

	opt, err := RRuleFor(base.Repeat, until)
	if err != nil {
		return nil, err
	}
	prop := ical.NewProp(ical.PropRecurrenceRule)
	prop.Value = opt.RRuleString()
	comp.Props.Set(prop)
	return comp, nil
}

// ExtractRepeatInfoFromComponent reads the repeat rule and series id of comp.
// An RRULE wins over the X-LIBREPEAT-REPEAT-* properties written for
// expanded occurrences. A component with neither yields a RepeatNone rule.
func ExtractRepeatInfoFromComponent(comp *ical.Component) (event.RepeatInfo, error) {
	info := event.RepeatInfo{Type: event.RepeatNone, Interval: 1}

	if rruleProp := comp.Props.Get(ical.PropRecurrenceRule); rruleProp != nil && rruleProp.Value != "" {
		parsed, err := RepeatInfoFromRRule(rruleProp.Value)
		if err != nil {
			return event.RepeatInfo{}, err
		}
		info = parsed
	} else if typ := propText(comp.Props, PropRepeatType); typ != "" {
		parsed, err := repeatInfoFromProps(comp.Props, typ)
		if err != nil {
			return event.RepeatInfo{}, err
		}
		info = parsed
	}

	if seriesProp := comp.Props.Get(PropSeriesID); seriesProp != nil && seriesProp.Value != "" {
		info.ID = mo.Some(seriesProp.Value)
	}
	return info, nil
}

func repeatInfoFromProps(props ical.Props, typ string) (event.RepeatInfo, error) {
	var info event.RepeatInfo
	if err := info.Type.UnmarshalText([]byte(typ)); err != nil {
		return event.RepeatInfo{}, fmt.Errorf("%s: %w", PropRepeatType, err)
	}

	info.Interval = 1
	if raw := propText(props, PropRepeatInterval); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return event.RepeatInfo{}, fmt.Errorf("%s: %w", PropRepeatInterval, err)
		}
		info.Interval = n
	}

	if end := propText(props, PropRepeatEnd); end != "" {
		if _, err := datemath.Parse(end); err != nil {
			return event.RepeatInfo{}, fmt.Errorf("%s: %w", PropRepeatEnd, err)
		}
		info.EndDate = mo.Some(end)
	}
	return info, nil
}

// EventFromComponent converts a VEVENT back into an event.
func EventFromComponent(comp *ical.Component) (event.Event, error) {
	if comp.Name != ical.CompEvent {
		return event.Event{}, fmt.Errorf("expected %s component, got %s", ical.CompEvent, comp.Name)
	}

	if comp.Props.Get(ical.PropDateTimeStart) == nil {
		return event.Event{}, errors.New("VEVENT has no DTSTART")
	}
	// wall-clock time in the property's own zone (TZID, UTC or floating)
	start, err := comp.Props.DateTime(ical.PropDateTimeStart, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("failed to read DTSTART: %w", err)
	}

	ev := event.Event{
		Title:       propText(comp.Props, ical.PropSummary),
		Date:        datemath.Format(start),
		Description: propText(comp.Props, ical.PropDescription),
		Location:    propText(comp.Props, ical.PropLocation),
		Category:    propText(comp.Props, ical.PropCategories),
	}
	if uid := propText(comp.Props, ical.PropUID); uid != "" {
		ev.ID = mo.Some(uid)
	}

	if !isDateValue(comp.Props.Get(ical.PropDateTimeStart)) {
		ev.StartTime = start.Format(timeLayout)
		// no DTEND or DURATION means an instantaneous event
		ev.EndTime = ev.StartTime
		if comp.Props.Get(ical.PropDateTimeEnd) != nil {
			if end, err := comp.Props.DateTime(ical.PropDateTimeEnd, nil); err == nil {
				ev.EndTime = end.In(start.Location()).Format(timeLayout)
			}
		} else if durationProp := comp.Props.Get(ical.PropDuration); durationProp != nil {
			if duration, err := durationProp.Duration(); err == nil {
				ev.EndTime = start.Add(duration).Format(timeLayout)
			}
		}
	}

	for _, child := range comp.Children {
		if child.Name != ical.CompAlarm {
			continue
		}
		if minutes, ok := parseTriggerMinutes(propText(child.Props, ical.PropTrigger)); ok {
			ev.NotificationTime = minutes
			break
		}
	}

	ev.Repeat, err = ExtractRepeatInfoFromComponent(comp)
	if err != nil {
		return event.Event{}, err
	}
	return ev, nil
}

// EncodeCalendar serializes events as a VCALENDAR, one VEVENT per occurrence
func EncodeCalendar(events []event.Event) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	for _, ev := range events {
		comp, err := ComponentFor(ev)
		if err != nil {
			return nil, fmt.Errorf("event on %s: %w", ev.Date, err)
		}
		cal.Children = append(cal.Children, comp)
	}

	return encode(cal)
}

// EncodeSeries serializes base's series as a single VEVENT carrying an RRULE
func EncodeSeries(base event.Event, until string) ([]byte, error) {
	comp, err := MasterComponent(base, until)
	if err != nil {
		return nil, err
	}
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Children = append(cal.Children, comp)
	return encode(cal)
}

// DecodedEvent is a VEVENT read from an iCalendar stream. Master is set
// when the component carried an RRULE, so Event still describes a whole
// series rather than one stored occurrence.
type DecodedEvent struct {
	Event  event.Event
	Master bool
}

// DecodeEvents reads every VEVENT of an iCalendar stream
func DecodeEvents(r io.Reader) ([]DecodedEvent, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}

	var decoded []DecodedEvent
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		ev, err := EventFromComponent(child)
		if err != nil {
			return nil, err
		}
		rruleProp := child.Props.Get(ical.PropRecurrenceRule)
		decoded = append(decoded, DecodedEvent{
			Event:  ev,
			Master: rruleProp != nil && rruleProp.Value != "",
		})
	}
	return decoded, nil
}

// DecodeCalendar reads every VEVENT of an iCalendar stream as an event
func DecodeCalendar(r io.Reader) ([]event.Event, error) {
	decoded, err := DecodeEvents(r)
	if err != nil {
		return nil, err
	}
	events := make([]event.Event, len(decoded))
	for i, d := range decoded {
		events[i] = d.Event
	}
	return events, nil
}

func encode(cal *ical.Calendar) ([]byte, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func occurrenceBounds(ev event.Event) (start, end time.Time, allDay bool, err error) {
	day, err := datemath.Parse(ev.Date)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if ev.StartTime == "" {
		return day, datemath.ShiftDays(day, 1), true, nil
	}

	start, err = atTime(day, ev.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("start time: %w", err)
	}
	end = start
	if ev.EndTime != "" {
		end, err = atTime(day, ev.EndTime)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("end time: %w", err)
		}
	}
	return start, end, false, nil
}

func atTime(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(timeLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

func setOptionalText(props ical.Props, name, value string) {
	if value != "" {
		props.SetText(name, value)
	}
}

func propText(props ical.Props, name string) string {
	text, err := props.Text(name)
	if err != nil {
		return ""
	}
	return text
}

// isDateValue checks whether a property carries VALUE=DATE
func isDateValue(prop *ical.Prop) bool {
	if prop == nil {
		return false
	}
	if valueParam := prop.Params["VALUE"]; len(valueParam) > 0 && strings.ToUpper(valueParam[0]) == "DATE" {
		return true
	}
	return len(prop.Value) == len("20060102")
}

// parseTriggerMinutes reads the "-PT<n>M" triggers ComponentFor writes
func parseTriggerMinutes(trigger string) (int, bool) {
	if !strings.HasPrefix(trigger, "-PT") || !strings.HasSuffix(trigger, "M") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(trigger, "-PT"), "M"))
	if err != nil {
		return 0, false
	}
	return n, true
}
