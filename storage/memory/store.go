// memory based implementation for testing purposes
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/cyp0633/librepeat/event"
	"github.com/cyp0633/librepeat/storage"
)

type entry struct {
	event event.Event
	seq   uint64 // insertion order, breaks ties between same-day events
}

// Store implements storage.Store using an in-memory map
type Store struct {
	mu      sync.RWMutex
	events  map[string]entry
	nextSeq uint64
}

var _ storage.Store = (*Store)(nil)

// New creates a new in-memory storage
func New() *Store {
	return &Store{
		events: make(map[string]entry),
	}
}

func notFound(id string) error {
	return &storage.Error{
		Type:    storage.ErrNotFound,
		Message: "event not found: " + id,
	}
}

func missingID() error {
	return &storage.Error{
		Type:    storage.ErrInvalidInput,
		Message: "event has no id",
	}
}

// ListEvents returns all events ordered by date, then by insertion.
func (s *Store) ListEvents(_ context.Context) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]entry, 0, len(s.events))
	for _, e := range s.events {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Or(
			strings.Compare(a.event.Date, b.event.Date),
			cmp.Compare(a.seq, b.seq),
		)
	})

	events := make([]event.Event, len(entries))
	for i, e := range entries {
		events[i] = e.event
	}
	return events, nil
}

func (s *Store) GetEvent(_ context.Context, id string) (event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return event.Event{}, notFound(id)
	}
	return e.event, nil
}

func (s *Store) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	created, err := s.CreateEvents(ctx, []event.Event{ev})
	if err != nil {
		return event.Event{}, err
	}
	return created[0], nil
}

// CreateEvents assigns ids to events that lack one and stores the batch.
// Nothing is stored if any id is already taken.
func (s *Store) CreateEvents(_ context.Context, evs []event.Event) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]event.Event, len(evs))
	seen := make(map[string]struct{}, len(evs))
	for i, ev := range evs {
		if ev.ID.IsAbsent() {
			ev.ID = mo.Some(uuid.NewString())
		}
		id := ev.ID.MustGet()

		_, dup := seen[id]
		if _, exists := s.events[id]; exists || dup {
			return nil, &storage.Error{
				Type:    storage.ErrAlreadyExists,
				Message: "event already exists: " + id,
			}
		}
		seen[id] = struct{}{}
		created[i] = ev
	}

	for _, ev := range created {
		s.events[ev.ID.MustGet()] = entry{event: ev, seq: s.nextSeq}
		s.nextSeq++
	}

	return created, nil
}

func (s *Store) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	updated, err := s.UpdateEvents(ctx, []event.Event{ev})
	if err != nil {
		return event.Event{}, err
	}
	return updated[0], nil
}

// UpdateEvents replaces every event in the batch, or none of them.
func (s *Store) UpdateEvents(_ context.Context, evs []event.Event) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range evs {
		id, ok := ev.ID.Get()
		if !ok {
			return nil, missingID()
		}
		if _, exists := s.events[id]; !exists {
			return nil, notFound(id)
		}
	}

	for _, ev := range evs {
		id := ev.ID.MustGet()
		s.events[id] = entry{event: ev, seq: s.events[id].seq}
	}

	return slices.Clone(evs), nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return s.DeleteEvents(ctx, []string{id})
}

// DeleteEvents removes every listed event, or none of them.
func (s *Store) DeleteEvents(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, exists := s.events[id]; !exists {
			return notFound(id)
		}
	}

	for _, id := range ids {
		delete(s.events, id)
	}
	return nil
}
