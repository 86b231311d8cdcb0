package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/event-tracker/internal/domain"
	"github.com/msomdec/event-tracker/internal/repository/sqlite"
)

func TestEventRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewEventRepository(db)
	user := createUser(t, db, "events@example.com")
	ctx := context.Background()

	event := &domain.Event{
		UserID:      user.ID,
		Title:       "Dentist",
		Date:        "01-06-2025",
		StartTime:   "09:00",
		EndTime:     "10:00",
		Description: "Checkup",
	}
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if event.ID == "" {
		t.Fatal("expected event ID to be assigned")
	}

	found, err := repo.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Title != "Dentist" || found.Date != "01-06-2025" || found.StartTime != "09:00" || found.EndTime != "10:00" {
		t.Fatalf("unexpected event: %+v", found)
	}
	if found.UserID != user.ID {
		t.Fatalf("expected user id %d, got %d", user.ID, found.UserID)
	}
}

func TestEventRepository_EmptyEndTimeIsNull(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewEventRepository(db)
	user := createUser(t, db, "noend@example.com")
	ctx := context.Background()

	event := &domain.Event{UserID: user.ID, Title: "Call", Date: "02-06-2025", StartTime: "14:00"}
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create: %v", err)
	}

	var isNull bool
	if err := db.SqlDB.QueryRowContext(ctx, "SELECT end_time IS NULL FROM events WHERE id = ?", event.ID).Scan(&isNull); err != nil {
		t.Fatalf("query end_time: %v", err)
	}
	if !isNull {
		t.Fatal("expected end_time to be stored as NULL")
	}

	found, err := repo.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.HasEnd() {
		t.Fatalf("expected no end time, got %q", found.EndTime)
	}
}

func TestEventRepository_ListByUser(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewEventRepository(db)
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	ctx := context.Background()

	for _, title := range []string{"First", "Second"} {
		if err := repo.Create(ctx, &domain.Event{UserID: alice.ID, Title: title, Date: "01-06-2025", StartTime: "09:00"}); err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
	}
	if err := repo.Create(ctx, &domain.Event{UserID: bob.ID, Title: "Other", Date: "01-06-2025", StartTime: "09:00"}); err != nil {
		t.Fatalf("Create bob event: %v", err)
	}

	events, err := repo.ListByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Title != "First" || events[1].Title != "Second" {
		t.Fatalf("expected insertion order, got %q, %q", events[0].Title, events[1].Title)
	}
}

func TestEventRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewEventRepository(db)
	user := createUser(t, db, "update@example.com")
	ctx := context.Background()

	event := &domain.Event{UserID: user.ID, Title: "Old", Date: "01-06-2025", StartTime: "09:00", EndTime: "10:00"}
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create: %v", err)
	}

	event.Title = "New"
	event.EndTime = ""
	if err := repo.Update(ctx, event); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, err := repo.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Title != "New" {
		t.Fatalf("expected title New, got %q", found.Title)
	}
	if found.HasEnd() {
		t.Fatalf("expected end time cleared, got %q", found.EndTime)
	}
}

func TestEventRepository_UpdateAndDelete_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewEventRepository(db)
	ctx := context.Background()

	err := repo.Update(ctx, &domain.Event{ID: "missing", Title: "x", Date: "01-06-2025", StartTime: "09:00"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestEventRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewEventRepository(db)
	user := createUser(t, db, "delete@example.com")
	ctx := context.Background()

	event := &domain.Event{UserID: user.ID, Title: "Gone", Date: "01-06-2025", StartTime: "09:00"}
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, event.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, event.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
