package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/msomdec/event-tracker/internal/domain"
	"github.com/msomdec/event-tracker/internal/service"
)

func TestEventService_Create(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	event, err := f.events.Create(ctx, f.user.ID, service.EventInput{
		Title:       "  Dentist  ",
		Date:        "12-03-2024",
		StartTime:   "14:00",
		EndTime:     "14:45",
		Description: "checkup",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if event.ID == "" {
		t.Fatal("expected event ID to be set")
	}
	if event.Title != "Dentist" {
		t.Fatalf("Title = %q, want trimmed Dentist", event.Title)
	}

	got, err := f.events.Get(ctx, f.user.ID, event.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.EndTime != "14:45" || got.Description != "checkup" {
		t.Fatalf("unexpected stored event: %+v", got)
	}
}

func TestEventService_CreateValidation(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   service.EventInput
	}{
		{"missing title", service.EventInput{Date: "12-03-2024", StartTime: "10:00"}},
		{"long title", service.EventInput{Title: strings.Repeat("a", 101), Date: "12-03-2024", StartTime: "10:00"}},
		{"long description", service.EventInput{Title: "t", Date: "12-03-2024", StartTime: "10:00", Description: strings.Repeat("d", 1001)}},
		{"iso date", service.EventInput{Title: "t", Date: "2024-03-12", StartTime: "10:00"}},
		{"single digit day", service.EventInput{Title: "t", Date: "1-03-2024", StartTime: "10:00"}},
		{"impossible date", service.EventInput{Title: "t", Date: "30-02-2024", StartTime: "10:00"}},
		{"missing start", service.EventInput{Title: "t", Date: "12-03-2024"}},
		{"bad start", service.EventInput{Title: "t", Date: "12-03-2024", StartTime: "7:00"}},
		{"bad end", service.EventInput{Title: "t", Date: "12-03-2024", StartTime: "10:00", EndTime: "24:00"}},
		{"end equals start", service.EventInput{Title: "t", Date: "12-03-2024", StartTime: "10:00", EndTime: "10:00"}},
		{"end before start", service.EventInput{Title: "t", Date: "12-03-2024", StartTime: "10:00", EndTime: "09:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.events.Create(ctx, f.user.ID, tt.in)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	events, err := f.events.List(ctx, f.user.ID, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected nothing stored, got %d events", len(events))
	}
}

func TestEventService_CreateConflict(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	if _, err := f.events.Create(ctx, f.user.ID, service.EventInput{Title: "Meeting", Date: "12-03-2024", StartTime: "10:30", EndTime: "11:30"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := f.events.Create(ctx, f.user.ID, service.EventInput{Title: "Call", Date: "12-03-2024", StartTime: "10:00", EndTime: "11:00"})
	if !errors.Is(err, domain.ErrEventConflict) {
		t.Fatalf("expected ErrEventConflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "Meeting") {
		t.Fatalf("expected error to name the clashing event, got %v", err)
	}

	events, err := f.events.List(ctx, f.user.ID, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected conflicting event not stored, got %d events", len(events))
	}
}

func TestEventService_AdjacentAllowed(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	if _, err := f.events.Create(ctx, f.user.ID, service.EventInput{Title: "A", Date: "12-03-2024", StartTime: "11:00"}); err != nil {
		t.Fatalf("Create A: %v", err)
	}
	if _, err := f.events.Create(ctx, f.user.ID, service.EventInput{Title: "B", Date: "12-03-2024", StartTime: "10:00", EndTime: "11:00"}); err != nil {
		t.Fatalf("Create B: %v", err)
	}
}

func TestEventService_ConflictsScopedToUser(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	other := createTestUser(t, f.db, "other@example.com")

	in := service.EventInput{Title: "Same", Date: "12-03-2024", StartTime: "10:00"}
	if _, err := f.events.Create(ctx, f.user.ID, in); err != nil {
		t.Fatalf("Create owner: %v", err)
	}
	if _, err := f.events.Create(ctx, other.ID, in); err != nil {
		t.Fatalf("Create other: %v", err)
	}
}

func TestEventService_UpdateSkipsSelf(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	event, err := f.events.Create(ctx, f.user.ID, service.EventInput{Title: "Gym", Date: "12-03-2024", StartTime: "18:00"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := f.events.Update(ctx, f.user.ID, event.ID, service.EventInput{Title: "Gym", Date: "12-03-2024", StartTime: "18:30", EndTime: "19:30"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.StartTime != "18:30" || updated.EndTime != "19:30" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
}

func TestEventService_UpdateConflict(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	if _, err := f.events.Create(ctx, f.user.ID, service.EventInput{Title: "A", Date: "12-03-2024", StartTime: "10:00"}); err != nil {
		t.Fatalf("Create A: %v", err)
	}
	b, err := f.events.Create(ctx, f.user.ID, service.EventInput{Title: "B", Date: "12-03-2024", StartTime: "12:00"})
	if err != nil {
		t.Fatalf("Create B: %v", err)
	}

	_, err = f.events.Update(ctx, f.user.ID, b.ID, service.EventInput{Title: "B", Date: "12-03-2024", StartTime: "10:30"})
	if !errors.Is(err, domain.ErrEventConflict) {
		t.Fatalf("expected ErrEventConflict, got %v", err)
	}

	got, err := f.events.Get(ctx, f.user.ID, b.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.StartTime != "12:00" {
		t.Fatalf("expected unchanged start 12:00, got %s", got.StartTime)
	}
}

func TestEventService_ForeignEventNotFound(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	other := createTestUser(t, f.db, "other@example.com")

	event, err := f.events.Create(ctx, f.user.ID, service.EventInput{Title: "Private", Date: "12-03-2024", StartTime: "10:00"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.events.Get(ctx, other.ID, event.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}
	if _, err := f.events.Update(ctx, other.ID, event.ID, service.EventInput{Title: "X", Date: "12-03-2024", StartTime: "10:00"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update: expected ErrNotFound, got %v", err)
	}
	if err := f.events.Delete(ctx, other.ID, event.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestEventService_Delete(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	event, err := f.events.Create(ctx, f.user.ID, service.EventInput{Title: "Temp", Date: "12-03-2024", StartTime: "10:00"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.events.Delete(ctx, f.user.ID, event.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.events.Get(ctx, f.user.ID, event.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	pending, err := f.reminders.ListPending(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected reminder removed with event, got %d", len(pending))
	}
}

func TestEventService_ListSortedAndFiltered(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	inputs := []service.EventInput{
		{Title: "Team lunch", Date: "01-04-2024", StartTime: "12:00"},
		{Title: "Breakfast", Date: "15-03-2024", StartTime: "08:00"},
		{Title: "Lunch with Sam", Date: "15-03-2024", StartTime: "12:30"},
		{Title: "Run", Date: "15-03-2024", StartTime: "07:00"},
	}
	for _, in := range inputs {
		if _, err := f.events.Create(ctx, f.user.ID, in); err != nil {
			t.Fatalf("Create %s: %v", in.Title, err)
		}
	}

	events, err := f.events.List(ctx, f.user.ID, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"Run", "Breakfast", "Lunch with Sam", "Team lunch"}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, title := range want {
		if events[i].Title != title {
			t.Fatalf("events[%d] = %q, want %q", i, events[i].Title, title)
		}
	}

	filtered, err := f.events.List(ctx, f.user.ID, "LUNCH")
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 lunch events, got %d", len(filtered))
	}
}
