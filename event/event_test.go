package event

import (
	"encoding/json"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRecurring(t *testing.T) {
	tests := []struct {
		name     string
		event    *Event
		expected bool
	}{
		{name: "nil event", event: nil, expected: false},
		{name: "zero rule", event: &Event{}, expected: false},
		{name: "none", event: &Event{Repeat: RepeatInfo{Type: RepeatNone}}, expected: false},
		{name: "daily", event: &Event{Repeat: RepeatInfo{Type: RepeatDaily}}, expected: true},
		{name: "yearly", event: &Event{Repeat: RepeatInfo{Type: RepeatYearly, Interval: 1}}, expected: true},
		{name: "out of range type", event: &Event{Repeat: RepeatInfo{Type: RepeatType(42)}}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRecurring(tt.event))
		})
	}
}

func TestRepeatTypesOrder(t *testing.T) {
	assert.Equal(t, []RepeatType{RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly}, RepeatTypes())

	// callers may not corrupt the list for everyone else
	types := RepeatTypes()
	types[0] = RepeatNone
	assert.Equal(t, RepeatDaily, RepeatTypes()[0])
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "반복 안함", Label(RepeatNone))
	assert.Equal(t, "매일", Label(RepeatDaily))
	assert.Equal(t, "매주", Label(RepeatWeekly))
	assert.Equal(t, "매월", Label(RepeatMonthly))
	assert.Equal(t, "매년", Label(RepeatYearly))
	assert.Empty(t, Label(RepeatType(9)))
}

func TestRepeatTypeText(t *testing.T) {
	for _, rt := range append(RepeatTypes(), RepeatNone) {
		text, err := rt.MarshalText()
		require.NoError(t, err)

		var decoded RepeatType
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, rt, decoded)
	}

	_, err := ParseRepeatType("hourly")
	assert.Error(t, err)

	_, err = RepeatType(7).MarshalText()
	assert.Error(t, err)
}

func TestEventJSONShape(t *testing.T) {
	raw := `{
		"id": "1",
		"title": "Standup",
		"date": "2025-10-01",
		"startTime": "09:00",
		"endTime": "09:15",
		"repeat": {"type": "weekly", "interval": 1, "endDate": "2025-10-31"},
		"notificationTime": 10
	}`

	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, mo.Some("1"), e.ID)
	assert.Equal(t, RepeatWeekly, e.Repeat.Type)
	assert.Equal(t, mo.Some("2025-10-31"), e.Repeat.EndDate)
	assert.True(t, e.Repeat.ID.IsAbsent())
	assert.Equal(t, 10, e.NotificationTime)

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"type":"weekly"`)
}

func TestPatch(t *testing.T) {
	base := Event{
		ID:        mo.Some("a"),
		Title:     "Old",
		Date:      "2025-10-01",
		StartTime: "10:00",
		EndTime:   "11:00",
		Repeat:    RepeatInfo{Type: RepeatDaily, Interval: 1},
	}

	t.Run("empty", func(t *testing.T) {
		p := Patch{}
		assert.True(t, p.IsEmpty())
		assert.Equal(t, base, p.Apply(base))
	})

	t.Run("overrides present fields only", func(t *testing.T) {
		p := Patch{Title: mo.Some("New"), NotificationTime: mo.Some(0)}
		assert.False(t, p.IsEmpty())

		got := p.Apply(base)
		assert.Equal(t, "New", got.Title)
		assert.Equal(t, 0, got.NotificationTime)
		assert.Equal(t, base.Date, got.Date)
		assert.Equal(t, base.Repeat, got.Repeat)
	})

	t.Run("end date from rule", func(t *testing.T) {
		assert.True(t, Patch{}.EndDate().IsAbsent())

		p := Patch{Repeat: mo.Some(RepeatInfo{EndDate: mo.Some("2025-11-01")})}
		assert.Equal(t, mo.Some("2025-11-01"), p.EndDate())
	})

	t.Run("full patch round trips", func(t *testing.T) {
		other := base
		other.Title = "Other"
		other.Date = "2025-12-01"
		assert.Equal(t, other, PatchFrom(other).Apply(base))
		assert.Equal(t, base.Date, PatchFrom(other).WithoutDate().Apply(base).Date)
	})
}

func TestSameID(t *testing.T) {
	a := Event{ID: mo.Some("x")}
	b := Event{ID: mo.Some("x")}
	c := Event{ID: mo.Some("y")}
	draft := Event{}

	assert.True(t, a.SameID(b))
	assert.False(t, a.SameID(c))
	assert.False(t, draft.SameID(draft))
	assert.False(t, a.SameID(draft))
}
