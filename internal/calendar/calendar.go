// Package calendar integrates Google Calendar as an optional collaborator.
// When OAuth credentials are not present every operation is a no-op.
package calendar

import "time"

// Event is the subset of calendar event fields the assistant works with.
type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// Service is the calendar contract. A disabled service returns nil/empty/false
// results with nil errors so callers never need to special-case setup state.
type Service interface {
	Enabled() bool
	CreateEvent(summary, description string, start, end time.Time, location string) (*Event, error)
	ListEvents(max int, since time.Time) ([]Event, error)
	GetEvent(id string) (*Event, error)
	DeleteEvent(id string) (bool, error)
}

// Disabled is the no-op service used when credentials are missing.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) CreateEvent(summary, description string, start, end time.Time, location string) (*Event, error) {
	return nil, nil
}

func (Disabled) ListEvents(max int, since time.Time) ([]Event, error) { return nil, nil }

func (Disabled) GetEvent(id string) (*Event, error) { return nil, nil }

func (Disabled) DeleteEvent(id string) (bool, error) { return false, nil }
