package domain

import (
	"context"
	"time"
)

const (
	// DateLayout is the wire and storage format of Event.Date (dd-MM-yyyy).
	DateLayout = "02-01-2006"
	// ClockLayout is the wire and storage format of start and end times (HH:mm).
	ClockLayout = "15:04"
)

// Event is a single calendar entry owned by a user.
type Event struct {
	ID          string
	UserID      int64
	Title       string
	Date        string
	StartTime   string
	EndTime     string // empty when the event has no explicit end
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasEnd reports whether the event carries an explicit end time.
func (e Event) HasEnd() bool {
	return e.EndTime != ""
}

// EventRepository defines persistence operations for events.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByUser(ctx context.Context, userID int64) ([]Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
}
