// Package storage defines the persistence boundary for events.
package storage

import (
	"context"

	"github.com/cyp0633/librepeat/event"
)

// Store persists events. Batch operations are all-or-nothing: when one
// element fails, nothing is written. Please use the error types provided.
type Store interface {
	// ListEvents returns every stored event.
	ListEvents(ctx context.Context) ([]event.Event, error)
	// GetEvent finds an event by id.
	GetEvent(ctx context.Context, id string) (event.Event, error)
	// CreateEvent stores a new event. An event without an id is assigned one.
	// The stored event is returned.
	CreateEvent(ctx context.Context, ev event.Event) (event.Event, error)
	// CreateEvents stores a batch of new events, typically one series.
	CreateEvents(ctx context.Context, evs []event.Event) ([]event.Event, error)
	// UpdateEvent replaces an existing event.
	UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error)
	// UpdateEvents replaces a batch of existing events.
	UpdateEvents(ctx context.Context, evs []event.Event) ([]event.Event, error)
	// DeleteEvent removes an event.
	DeleteEvent(ctx context.Context, id string) error
	// DeleteEvents removes a batch of events.
	DeleteEvents(ctx context.Context, ids []string) error
}
