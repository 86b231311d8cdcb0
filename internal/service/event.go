package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/msomdec/event-tracker/internal/domain"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 1000
)

// EventInput holds the user-editable fields of an event.
type EventInput struct {
	Title       string
	Date        string
	StartTime   string
	EndTime     string
	Description string
}

// EventService handles calendar event business logic. Writes are checked
// against the owner's other events so that no two of them overlap.
type EventService struct {
	events    domain.EventRepository
	reminders *ReminderService
	loc       *time.Location

	// mu serializes conflict check and write.
	mu sync.Mutex
}

// NewEventService creates a new EventService. Dates are interpreted in loc.
func NewEventService(events domain.EventRepository, reminders *ReminderService, loc *time.Location) *EventService {
	if loc == nil {
		loc = time.Local
	}
	return &EventService{events: events, reminders: reminders, loc: loc}
}

// Create validates and stores a new event for userID, then schedules its
// reminder. It fails with domain.ErrEventConflict when the event overlaps one
// of the user's existing events.
func (s *EventService) Create(ctx context.Context, userID int64, in EventInput) (*domain.Event, error) {
	event, err := in.normalize()
	if err != nil {
		return nil, err
	}
	event.UserID = userID

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkConflicts(ctx, event, ""); err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.scheduleReminder(ctx, event)
	return event, nil
}

// Get returns the event if it belongs to userID.
func (s *EventService) Get(ctx context.Context, userID int64, id string) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

// List returns the user's events ordered by date and start time. A non-empty
// query keeps only events whose title contains it, ignoring case.
func (s *EventService) List(ctx context.Context, userID int64, query string) ([]domain.Event, error) {
	events, err := s.events.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		events = slices.DeleteFunc(events, func(e domain.Event) bool {
			return !strings.Contains(strings.ToLower(e.Title), q)
		})
	}

	slices.SortStableFunc(events, func(a, b domain.Event) int {
		if c := s.dateOf(a).Compare(s.dateOf(b)); c != 0 {
			return c
		}
		return cmp.Compare(a.StartTime, b.StartTime)
	})
	return events, nil
}

// Update replaces the editable fields of the user's event and reschedules its
// reminder. The event's previous version is not considered a conflict.
func (s *EventService) Update(ctx context.Context, userID int64, id string, in EventInput) (*domain.Event, error) {
	updated, err := in.normalize()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	event.Title = updated.Title
	event.Date = updated.Date
	event.StartTime = updated.StartTime
	event.EndTime = updated.EndTime
	event.Description = updated.Description

	if err := s.checkConflicts(ctx, event, event.ID); err != nil {
		return nil, err
	}
	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.scheduleReminder(ctx, event)
	return event, nil
}

// Delete removes the user's event. Its reminder goes with it.
func (s *EventService) Delete(ctx context.Context, userID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *EventService) checkConflicts(ctx context.Context, candidate *domain.Event, skipID string) error {
	existing, err := s.events.ListByUser(ctx, candidate.UserID)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	for _, other := range existing {
		if other.ID == skipID {
			continue
		}
		clash, err := Conflicts(*candidate, other)
		if err != nil {
			return fmt.Errorf("check conflict with %s: %w", other.ID, err)
		}
		if clash {
			return fmt.Errorf("%w: overlaps %q at %s", domain.ErrEventConflict, other.Title, other.StartTime)
		}
	}
	return nil
}

func (s *EventService) scheduleReminder(ctx context.Context, event *domain.Event) {
	if s.reminders == nil {
		return
	}
	if _, err := s.reminders.Schedule(ctx, event); err != nil {
		slog.Error("schedule reminder", "event_id", event.ID, "error", err)
	}
}

func (s *EventService) dateOf(e domain.Event) time.Time {
	d, err := time.ParseInLocation(domain.DateLayout, e.Date, s.loc)
	if err != nil {
		return time.Time{}
	}
	return d
}

func (in EventInput) normalize() (*domain.Event, error) {
	e := &domain.Event{
		Title:       strings.TrimSpace(in.Title),
		Date:        strings.TrimSpace(in.Date),
		StartTime:   strings.TrimSpace(in.StartTime),
		EndTime:     strings.TrimSpace(in.EndTime),
		Description: strings.TrimSpace(in.Description),
	}

	if e.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(e.Title) > maxTitleLength {
		return nil, fmt.Errorf("%w: title must be at most %d characters", domain.ErrInvalidInput, maxTitleLength)
	}
	if utf8.RuneCountInString(e.Description) > maxDescriptionLength {
		return nil, fmt.Errorf("%w: description must be at most %d characters", domain.ErrInvalidInput, maxDescriptionLength)
	}

	if len(e.Date) != len(domain.DateLayout) {
		return nil, fmt.Errorf("%w: date %q must be dd-MM-yyyy", domain.ErrInvalidInput, e.Date)
	}
	if _, err := time.Parse(domain.DateLayout, e.Date); err != nil {
		return nil, fmt.Errorf("%w: date %q must be dd-MM-yyyy", domain.ErrInvalidInput, e.Date)
	}

	if e.StartTime == "" {
		return nil, fmt.Errorf("%w: start time is required", domain.ErrInvalidInput)
	}
	start, err := parseClock(e.StartTime)
	if err != nil {
		return nil, err
	}

	if e.HasEnd() {
		end, err := parseClock(e.EndTime)
		if err != nil {
			return nil, err
		}
		if end == start {
			return nil, fmt.Errorf("%w: start and end time must differ", domain.ErrInvalidInput)
		}
		if end < start {
			return nil, fmt.Errorf("%w: end time must be after start time", domain.ErrInvalidInput)
		}
	}

	return e, nil
}
