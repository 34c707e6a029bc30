// Package workflow drives event creation, editing and deletion on top of a
// storage.Store. It is the caller the recurrence and series packages are
// written for: it expands new series, resolves series membership on edit
// and delete, and turns each user action into the store requests it needs.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/cyp0633/librepeat/event"
	"github.com/cyp0633/librepeat/recurrence"
	"github.com/cyp0633/librepeat/series"
	"github.com/cyp0633/librepeat/storage"
)

var (
	// ErrEventNotFound is returned when the event being edited or deleted does not exist
	ErrEventNotFound = errors.New("event not found")
	// ErrSeriesNotFound is returned when an event's series has no members
	ErrSeriesNotFound = errors.New("series not found")
	// ErrEmptySeries is returned when a recurring draft expands to nothing,
	// which happens when it starts after the horizon
	ErrEmptySeries = errors.New("series has no occurrences before the horizon")
	// ErrPartialUpdate wraps store failures during a series-wide edit.
	// Members may have been updated partially.
	ErrPartialUpdate = errors.New("series update failed")
)

// Service runs the event workflow against a store
type Service struct {
	store  storage.Store
	engine *recurrence.Engine
	logger *slog.Logger
}

// New creates a Service. A nil engine uses recurrence.NewEngine, a nil
// logger slog.Default.
func New(store storage.Store, engine *recurrence.Engine, logger *slog.Logger) *Service {
	if engine == nil {
		engine = recurrence.NewEngine()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		engine: engine,
		logger: logger,
	}
}

// Events lists every stored event
func (s *Service) Events(ctx context.Context) ([]event.Event, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Create stores draft. A recurring draft is validated and expanded up to
// its resolved end date, every occurrence is tagged with one series id and
// the series is stored in one batch. Nothing is stored when validation fails.
func (s *Service) Create(ctx context.Context, draft event.Event) ([]event.Event, error) {
	if draft.Repeat.Type == event.RepeatNone {
		created, err := s.store.CreateEvent(ctx, draft)
		if err != nil {
			return nil, fmt.Errorf("failed to create event: %w", err)
		}
		s.logger.Info("event created", "id", created.ID.OrEmpty(), "date", created.Date)
		return []event.Event{created}, nil
	}

	occurrences, err := s.engine.Expand(draft)
	if err != nil {
		return nil, err
	}
	if len(occurrences) == 0 {
		return nil, fmt.Errorf("%w: starts %s, horizon %s", ErrEmptySeries, draft.Date, s.engine.Horizon())
	}

	// occurrences get their ids from the store
	seriesID := draft.Repeat.ID.OrElse(uuid.NewString())
	for i := range occurrences {
		occurrences[i].ID = mo.None[string]()
		occurrences[i].Repeat.ID = mo.Some(seriesID)
	}

	created, err := s.store.CreateEvents(ctx, occurrences)
	if err != nil {
		return nil, fmt.Errorf("failed to create series %s: %w", seriesID, err)
	}
	s.logger.Info("series created",
		"series", seriesID,
		"type", draft.Repeat.Type,
		"occurrences", len(created),
		"first", created[0].Date,
		"last", created[len(created)-1].Date)
	return created, nil
}

// Update applies patch to the event id. In EditSingle mode, or for a plain
// event, only that event is updated and a recurring one leaves its series.
// In EditAll mode every member of the series is updated in one batch, each
// keeping its own date; a new end date must not precede the date of id.
// An empty patch changes nothing.
func (s *Service) Update(ctx context.Context, id string, patch event.Patch, mode series.EditMode) ([]event.Event, error) {
	original, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return []event.Event{original}, nil
	}

	if mode != series.EditAll || original.Repeat.Type == event.RepeatNone {
		updated, err := s.store.UpdateEvent(ctx, series.ApplyUpdate(original, patch, mode))
		if err != nil {
			return nil, fmt.Errorf("failed to update event %s: %w", id, err)
		}
		s.logger.Info("event updated", "id", id, "mode", mode)
		return []event.Event{updated}, nil
	}

	members, err := s.members(ctx, original)
	if err != nil {
		return nil, err
	}

	if end := patch.EndDate(); end.IsPresent() {
		if err := recurrence.ValidateEndDate(original.Date, end); err != nil {
			return nil, err
		}
	}

	patch = patch.WithoutDate()
	edited := make([]event.Event, len(members))
	for i, m := range members {
		edited[i] = series.ApplyUpdate(m, patch, series.EditAll)
	}

	updated, err := s.store.UpdateEvents(ctx, edited)
	if err != nil {
		s.logger.Error("series update failed",
			"id", id,
			"series", original.Repeat.ID.OrEmpty(),
			"members", len(edited),
			"error", err)
		return nil, fmt.Errorf("%w: %d members: %w", ErrPartialUpdate, len(edited), err)
	}
	s.logger.Info("series updated", "id", id, "series", original.Repeat.ID.OrEmpty(), "members", len(updated))
	return updated, nil
}

// Delete removes the single event id
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrEventNotFound, id)
		}
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	s.logger.Info("event deleted", "id", id)
	return nil
}

// DeleteSeries removes every member of the series id belongs to, in one
// batch, and returns the removed ids. For a plain event that is id alone.
func (s *Service) DeleteSeries(ctx context.Context, id string) ([]string, error) {
	original, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.members(ctx, original)
	if err != nil {
		return nil, err
	}

	ids := series.IDs(members)
	if err := s.store.DeleteEvents(ctx, ids); err != nil {
		s.logger.Error("series delete failed", "id", id, "members", len(ids), "error", err)
		return nil, fmt.Errorf("failed to delete series of %s: %w", id, err)
	}
	s.logger.Info("series deleted", "id", id, "members", len(ids))
	return ids, nil
}

// Export writes every stored event as an iCalendar stream, one VEVENT per occurrence
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	events, err := s.Events(ctx)
	if err != nil {
		return err
	}
	data, err := recurrence.EncodeCalendar(events)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Import reads an iCalendar stream and creates its events. A VEVENT with an
// RRULE is expanded like a recurring draft. Other VEVENTs, including the
// occurrences Export writes, are stored as they are, so an exported series
// keeps its rule and series id. Events are created in order; the first
// failure stops the import and the events created so far are returned.
func (s *Service) Import(ctx context.Context, r io.Reader) ([]event.Event, error) {
	decoded, err := recurrence.DecodeEvents(r)
	if err != nil {
		return nil, err
	}

	var (
		created []event.Event
		pending []event.Event
	)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		evs, err := s.store.CreateEvents(ctx, pending)
		if err != nil {
			return fmt.Errorf("failed to import %d events from %s: %w", len(pending), pending[0].Date, err)
		}
		created = append(created, evs...)
		pending = nil
		return nil
	}

	for _, d := range decoded {
		if !d.Master {
			pending = append(pending, d.Event)
			continue
		}
		if err := flush(); err != nil {
			return created, err
		}
		evs, err := s.Create(ctx, d.Event)
		if err != nil {
			return created, fmt.Errorf("failed to import %q on %s: %w", d.Event.Title, d.Event.Date, err)
		}
		created = append(created, evs...)
	}
	if err := flush(); err != nil {
		return created, err
	}

	s.logger.Info("calendar imported", "components", len(decoded), "events", len(created))
	return created, nil
}

func (s *Service) get(ctx context.Context, id string) (event.Event, error) {
	ev, err := s.store.GetEvent(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return event.Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
		}
		return event.Event{}, fmt.Errorf("failed to load event %s: %w", id, err)
	}
	return ev, nil
}

func (s *Service) members(ctx context.Context, original event.Event) ([]event.Event, error) {
	all, err := s.Events(ctx)
	if err != nil {
		return nil, err
	}
	members := series.FindSeries(all, original)
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSeriesNotFound, original.ID.OrEmpty())
	}
	return members, nil
}
