package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cyp0633/librepeat/event"
)

// MockStore implements the Store interface for testing
type MockStore struct {
	mock.Mock
}

var _ Store = (*MockStore)(nil)

func (m *MockStore) ListEvents(ctx context.Context) ([]event.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]event.Event), args.Error(1)
}

func (m *MockStore) GetEvent(ctx context.Context, id string) (event.Event, error) {
	args := m.Called(ctx, id)
	ev, _ := args.Get(0).(event.Event)
	return ev, args.Error(1)
}

func (m *MockStore) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	args := m.Called(ctx, ev)
	created, _ := args.Get(0).(event.Event)
	return created, args.Error(1)
}

func (m *MockStore) CreateEvents(ctx context.Context, evs []event.Event) ([]event.Event, error) {
	args := m.Called(ctx, evs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]event.Event), args.Error(1)
}

func (m *MockStore) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	args := m.Called(ctx, ev)
	updated, _ := args.Get(0).(event.Event)
	return updated, args.Error(1)
}

func (m *MockStore) UpdateEvents(ctx context.Context, evs []event.Event) ([]event.Event, error) {
	args := m.Called(ctx, evs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]event.Event), args.Error(1)
}

func (m *MockStore) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) DeleteEvents(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// --- Convenience methods for setting up common test scenarios ---

// SetupEvents makes ListEvents return evs and GetEvent find each of them by id.
// Lookups of any other id fail with ErrNotFound. These expectations are
// optional and do not fail AssertExpectations when unused.
func (m *MockStore) SetupEvents(evs []event.Event) {
	m.On("ListEvents", mock.Anything).Return(evs, nil).Maybe()
	for _, ev := range evs {
		if id, ok := ev.ID.Get(); ok {
			m.On("GetEvent", mock.Anything, id).Return(ev, nil).Maybe()
		}
	}
	m.On("GetEvent", mock.Anything, mock.Anything).
		Return(event.Event{}, &Error{Type: ErrNotFound, Message: "event not found"}).
		Maybe()
}
