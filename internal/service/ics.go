package service

import (
	"context"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/msomdec/event-tracker/internal/domain"
)

const calendarProductID = "-//event-tracker//Events//EN"

// ExportICS serializes the user's events as an iCalendar feed. Each event
// carries a display alarm matching its reminder lead.
func (s *EventService) ExportICS(ctx context.Context, userID int64) ([]byte, error) {
	events, err := s.List(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(calendarProductID)

	for _, e := range events {
		start, end, err := s.span(e)
		if err != nil {
			return nil, fmt.Errorf("export event %s: %w", e.ID, err)
		}

		ve := cal.AddEvent(e.ID)
		ve.SetCreatedTime(e.CreatedAt)
		ve.SetDtStampTime(e.UpdatedAt)
		ve.SetModifiedAt(e.UpdatedAt)
		ve.SetStartAt(start)
		ve.SetEndAt(end)
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}

		alarm := ve.AddAlarm()
		alarm.SetAction(ical.ActionDisplay)
		alarm.SetTrigger(fmt.Sprintf("-PT%dM", int(ReminderLead/time.Minute)))
	}

	return []byte(cal.Serialize()), nil
}

// span returns the event's start and end instants in the service zone.
// Events without an end last DefaultEventLength.
func (s *EventService) span(e domain.Event) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(domain.DateLayout, e.Date, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date %q must be dd-MM-yyyy", domain.ErrInvalidInput, e.Date)
	}
	startOff, err := parseClock(e.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := s.wallClock(day, startOff)
	if !e.HasEnd() {
		return start, start.Add(DefaultEventLength), nil
	}

	endOff, err := parseClock(e.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, s.wallClock(day, endOff), nil
}

// wallClock returns the instant at time of day off on day's date. Hour and
// minute are set directly so a daylight saving change does not shift them.
func (s *EventService) wallClock(day time.Time, off time.Duration) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		int(off/time.Hour), int(off%time.Hour/time.Minute), 0, 0, s.loc)
}
