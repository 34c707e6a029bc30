package recurrence

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/librepeat/event"
)

func TestEngine_Expand(t *testing.T) {
	engine := NewEngine()
	defer engine.Close()

	tests := []struct {
		name      string
		base      event.Event
		endDate   mo.Option[string]
		wantCount int
		wantLast  string
		wantErr   error
	}{
		{
			name:      "daily with explicit end",
			base:      newBase("2025-10-01", event.RepeatDaily),
			endDate:   mo.Some("2025-10-05"),
			wantCount: 5,
			wantLast:  "2025-10-05",
		},
		{
			name:      "monthly until the horizon",
			base:      newBase("2025-10-31", event.RepeatMonthly),
			endDate:   mo.None[string](),
			wantCount: 2,
			wantLast:  "2025-12-31",
		},
		{
			name:      "end past the horizon is capped",
			base:      newBase("2025-12-29", event.RepeatDaily),
			endDate:   mo.Some("2026-06-01"),
			wantCount: 3,
			wantLast:  "2025-12-31",
		},
		{
			name:      "plain event",
			base:      newBase("2026-03-01", event.RepeatNone),
			endDate:   mo.None[string](),
			wantCount: 1,
			wantLast:  "2026-03-01",
		},
		{
			name:    "end before start",
			base:    newBase("2025-10-15", event.RepeatDaily),
			endDate: mo.Some("2025-10-10"),
			wantErr: ErrEndBeforeStart,
		},
		{
			name:    "malformed end",
			base:    newBase("2025-10-15", event.RepeatDaily),
			endDate: mo.Some("tomorrow"),
			wantErr: ErrInvalidEndDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := tt.base
			base.Repeat.EndDate = tt.endDate

			got, err := engine.Expand(base)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, tt.wantCount)
			assert.Equal(t, tt.wantLast, got[len(got)-1].Date)
		})
	}
}

func TestEngine_ConfiguredHorizon(t *testing.T) {
	engine, err := NewEngineWithConfig(EngineConfig{Horizon: "2026-12-31"}, nil)
	require.NoError(t, err)
	defer engine.Close()

	assert.Equal(t, "2026-12-31", engine.Horizon())
	assert.Equal(t, DefaultLimits, engine.Config().Limits)
	assert.Equal(t, "2026-12-31", engine.ResolveEndDate(mo.None[string]()))

	got, err := engine.Expand(newBase("2026-03-01", event.RepeatMonthly))
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, "2026-12-01", got[9].Date)
}

func TestEngine_WarnsWhenLimitCutsSeries(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	engine, err := NewEngineWithConfig(EngineConfig{
		Horizon: "2030-12-31",
		Limits:  Limits{Daily: 3, Weekly: 52, Monthly: 12, Yearly: 5},
	}, logger)
	require.NoError(t, err)
	defer engine.Close()

	got, err := engine.UntilEndDate(newBase("2025-10-01", event.RepeatDaily), "2025-10-31")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Contains(t, buf.String(), "series truncated at candidate limit")

	buf.Reset()
	_, err = engine.UntilEndDate(newBase("2025-10-01", event.RepeatDaily), "2025-10-02")
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	// the end date falls on the last candidate, so nothing was cut
	buf.Reset()
	got, err = engine.UntilEndDate(newBase("2025-10-01", event.RepeatDaily), "2025-10-03")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Empty(t, buf.String())
}

func TestEngine_NoWarningWhenEndDateFillsLimit(t *testing.T) {
	tests := []struct {
		name    string
		base    event.Event
		endDate string
		want    int
	}{
		{name: "daily whole year", base: newBase("2025-01-01", event.RepeatDaily), endDate: "2025-12-31", want: 365},
		{name: "weekly", base: newBase("2025-01-01", event.RepeatWeekly), endDate: "2025-12-24", want: 52},
		{name: "monthly skipping short months", base: newBase("2024-01-31", event.RepeatMonthly), endDate: "2025-08-31", want: 12},
		{name: "yearly leap day", base: newBase("2024-02-29", event.RepeatYearly), endDate: "2040-02-29", want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
			engine, err := NewEngineWithConfig(EngineConfig{Horizon: "2040-12-31", Limits: DefaultLimits}, logger)
			require.NoError(t, err)
			defer engine.Close()

			got, err := engine.UntilEndDate(tt.base, tt.endDate)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			assert.Empty(t, buf.String())
		})
	}
}

func TestEngineWithCache_LogicalCorrectness(t *testing.T) {
	cached, err := NewEngineWithConfig(CachedEngineConfig, nil)
	require.NoError(t, err)
	defer cached.Close()

	plain := NewEngine()
	defer plain.Close()

	bases := []event.Event{
		newBase("2025-10-01", event.RepeatDaily),
		newBase("2025-10-01", event.RepeatWeekly),
		newBase("2024-01-31", event.RepeatMonthly),
		newBase("2024-02-29", event.RepeatYearly),
	}

	for _, base := range bases {
		want, err := plain.UntilEndDate(base, "2025-12-31")
		require.NoError(t, err)

		// first call fills the cache, second is served from it
		for i := 0; i < 2; i++ {
			got, err := cached.UntilEndDate(base, "2025-12-31")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}

	stats := cached.CacheStats()
	assert.Equal(t, len(bases), stats.TotalEntries)
	assert.Equal(t, CacheStats{}, plain.CacheStats())
}

func TestEngine_UnknownType(t *testing.T) {
	engine := NewEngine()
	defer engine.Close()

	_, err := engine.Expand(newBase("2025-10-01", event.RepeatType(12)))
	assert.ErrorIs(t, err, ErrUnknownRepeatType)
}
