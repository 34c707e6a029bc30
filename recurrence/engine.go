package recurrence

import (
	"fmt"
	"log/slog"

	"github.com/samber/mo"

	"github.com/cyp0633/librepeat/event"
)

// Engine expands recurring events against a configured horizon
type Engine struct {
	cache  *ExpansionCache
	config EngineConfig
	logger *slog.Logger
}

// NewEngine creates a new recurrence engine with DefaultEngineConfig
func NewEngine() *Engine {
	e, err := NewEngineWithConfig(DefaultEngineConfig, nil)
	if err != nil {
		// DefaultEngineConfig is valid
		panic(err)
	}
	return e
}

// Config returns the normalized configuration the engine runs with
func (e *Engine) Config() EngineConfig {
	return e.config
}

// Horizon returns the last date any series may reach
func (e *Engine) Horizon() string {
	return e.config.Horizon
}

// ResolveEndDate caps endDate to the engine's horizon
func (e *Engine) ResolveEndDate(endDate mo.Option[string]) string {
	return ResolveEndDate(endDate, e.config.Horizon)
}

// UntilEndDate generates base's series up to endDate using the engine's limits.
// Results are served from the cache when one is configured.
func (e *Engine) UntilEndDate(base event.Event, endDate string) ([]event.Event, error) {
	limits := e.config.Limits

	if e.cache != nil {
		if cached, ok := e.cache.Get(base, endDate, limits); ok {
			e.logger.Debug("expansion cache hit", "date", base.Date, "type", base.Repeat.Type, "end", endDate)
			return cached, nil
		}
	}

	occurrences, err := UntilEndDate(base, endDate, limits)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s series from %s: %w", base.Repeat.Type, base.Date, err)
	}

	if limit, truncated := cutByLimit(base, endDate, limits, occurrences); truncated {
		e.logger.Warn("series truncated at candidate limit",
			"date", base.Date,
			"type", base.Repeat.Type,
			"limit", limit,
			"last", occurrences[len(occurrences)-1].Date,
			"end", endDate,
		)
	}

	if e.cache != nil {
		e.cache.Set(base, endDate, limits, occurrences)
	}
	e.logger.Debug("expanded series", "date", base.Date, "type", base.Repeat.Type, "end", endDate, "count", len(occurrences))
	return occurrences, nil
}

// cutByLimit reports whether the candidate limit, rather than endDate, ended
// the series: the set is full and the next candidate is still on or before endDate.
func cutByLimit(base event.Event, endDate string, limits Limits, occurrences []event.Event) (int, bool) {
	limit, err := limits.For(base.Repeat.Type)
	if err != nil || base.Repeat.Type == event.RepeatNone || len(occurrences) < limit {
		return limit, false
	}
	candidates, err := Generate(base, limit+1)
	if err != nil || len(candidates) <= limit {
		return limit, false
	}
	return limit, candidates[limit].Date <= endDate
}

// Expand validates base's own end date, resolves it against the horizon and
// generates the series. Nothing is generated when validation fails.
func (e *Engine) Expand(base event.Event) ([]event.Event, error) {
	if base.Repeat.Type == event.RepeatNone {
		return Single(base), nil
	}
	if err := ValidateEndDate(base.Date, base.Repeat.EndDate); err != nil {
		return nil, err
	}
	return e.UntilEndDate(base, e.ResolveEndDate(base.Repeat.EndDate))
}

// CacheStats reports cache usage; the zero value when caching is off
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}

// Close releases the cache's cleanup goroutine
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}
