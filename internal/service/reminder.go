package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/msomdec/event-tracker/internal/domain"
)

// ReminderLead is how far ahead of an event's start its reminder fires.
const ReminderLead = 30 * time.Minute

const defaultNotificationTitle = "Untitled Event"

// ComputeTrigger combines an event's date and start time in loc and returns
// the instant ReminderLead before it. ok is false when that instant is at or
// before now; such reminders are dropped, not scheduled late. A nil loc means
// the process local zone.
func ComputeTrigger(date, start string, now time.Time, loc *time.Location) (trigger time.Time, ok bool, err error) {
	if loc == nil {
		loc = time.Local
	}
	if _, err := parseClock(start); err != nil {
		return time.Time{}, false, err
	}
	at, err := time.ParseInLocation(domain.DateLayout+" "+domain.ClockLayout, date+" "+start, loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %q %q is not a valid date and time", domain.ErrInvalidInput, date, start)
	}

	trigger = at.Add(-ReminderLead)
	if !trigger.After(now) {
		return time.Time{}, false, nil
	}
	return trigger, true, nil
}

// ReminderService persists event reminders and delivers them when due.
type ReminderService struct {
	reminders domain.ReminderRepository
	notifier  *Notifier
	clock     clock.Clock
	loc       *time.Location
}

// NewReminderService creates a new ReminderService. Event dates and times are
// interpreted in loc.
func NewReminderService(reminders domain.ReminderRepository, notifier *Notifier, clk clock.Clock, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderService{reminders: reminders, notifier: notifier, clock: clk, loc: loc}
}

// Schedule replaces the event's pending reminder. It returns nil without error
// when the reminder would fire in the past.
func (s *ReminderService) Schedule(ctx context.Context, event *domain.Event) (*domain.Reminder, error) {
	if err := s.reminders.DeletePendingByEvent(ctx, event.ID); err != nil {
		return nil, fmt.Errorf("clear pending reminder: %w", err)
	}

	trigger, ok, err := ComputeTrigger(event.Date, event.StartTime, s.clock.Now(), s.loc)
	if err != nil {
		return nil, fmt.Errorf("compute trigger: %w", err)
	}
	if !ok {
		slog.Debug("reminder skipped, trigger already passed", "event_id", event.ID)
		return nil, nil
	}

	reminder := &domain.Reminder{
		EventID:   event.ID,
		UserID:    event.UserID,
		Title:     event.Title,
		EventDate: event.Date,
		EventTime: event.StartTime,
		FireAt:    trigger,
		Status:    domain.ReminderPending,
	}
	if err := s.reminders.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}

	slog.Debug("reminder scheduled", "event_id", event.ID, "fire_at", trigger)
	return reminder, nil
}

// ListPending returns a user's reminders that have not fired yet.
func (s *ReminderService) ListPending(ctx context.Context, userID int64) ([]domain.Reminder, error) {
	return s.reminders.ListPendingByUser(ctx, userID)
}

// DispatchDue publishes every pending reminder whose trigger has passed and
// returns how many were delivered. A reminder nobody is subscribed to stays
// pending and is retried on the next sweep. A reminder whose event has already
// started (for example after downtime) is marked expired instead.
func (s *ReminderService) DispatchDue(ctx context.Context) (int, error) {
	now := s.clock.Now()
	due, err := s.reminders.ListDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due reminders: %w", err)
	}

	var (
		delivered int
		errs      []error
	)
	for _, rem := range due {
		if !rem.FireAt.Add(ReminderLead).After(now) {
			slog.Warn("reminder expired before delivery", "reminder_id", rem.ID, "event_id", rem.EventID)
			if err := s.reminders.SetStatus(ctx, rem.ID, domain.ReminderExpired); err != nil {
				errs = append(errs, fmt.Errorf("expire reminder %s: %w", rem.ID, err))
			}
			continue
		}

		sent := s.notifier.Publish(notificationFor(rem))
		if sent == 0 {
			slog.Debug("reminder held, no subscriber connected", "reminder_id", rem.ID, "user_id", rem.UserID)
			continue
		}
		slog.Debug("reminder published", "reminder_id", rem.ID, "subscribers", sent)
		if err := s.reminders.SetStatus(ctx, rem.ID, domain.ReminderDelivered); err != nil {
			errs = append(errs, fmt.Errorf("mark reminder %s delivered: %w", rem.ID, err))
			continue
		}
		delivered++
	}

	return delivered, errors.Join(errs...)
}

func notificationFor(rem domain.Reminder) domain.Notification {
	title := strings.TrimSpace(rem.Title)
	if title == "" {
		title = defaultNotificationTitle
	}
	return domain.Notification{
		ReminderID: rem.ID,
		EventID:    rem.EventID,
		UserID:     rem.UserID,
		Title:      title,
		Date:       rem.EventDate,
		Time:       rem.EventTime,
		FireAt:     rem.FireAt,
	}
}
