package domain

import (
	"context"
	"time"
)

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderDelivered ReminderStatus = "delivered"
	ReminderExpired   ReminderStatus = "expired"
)

// Reminder is a persisted notification that fires ahead of an event's start.
type Reminder struct {
	ID        string
	EventID   string
	UserID    int64
	Title     string
	EventDate string
	EventTime string
	FireAt    time.Time
	Status    ReminderStatus
	CreatedAt time.Time
}

// Notification is what subscribers receive when a reminder fires.
type Notification struct {
	ReminderID string
	EventID    string
	UserID     int64
	Title      string
	Date       string
	Time       string
	FireAt     time.Time
}

// ReminderRepository defines persistence operations for reminders.
type ReminderRepository interface {
	Create(ctx context.Context, reminder *Reminder) error
	// DeletePendingByEvent removes any not-yet-fired reminder for the event.
	DeletePendingByEvent(ctx context.Context, eventID string) error
	ListPendingByUser(ctx context.Context, userID int64) ([]Reminder, error)
	// ListDue returns pending reminders whose FireAt is at or before now,
	// oldest first.
	ListDue(ctx context.Context, now time.Time) ([]Reminder, error)
	SetStatus(ctx context.Context, id string, status ReminderStatus) error
}
