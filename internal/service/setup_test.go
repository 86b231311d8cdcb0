package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/msomdec/event-tracker/internal/domain"
	"github.com/msomdec/event-tracker/internal/repository/sqlite"
	"github.com/msomdec/event-tracker/internal/service"
)

// testNow is 10 March 2024 09:00 UTC.
var testNow = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newMockClock() *clock.Mock {
	mock := clock.NewMock()
	mock.Set(testNow)
	return mock
}

func createTestUser(t *testing.T, db *sqlite.DB, username string) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, PasswordHash: "hash"}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return user
}

type eventFixture struct {
	db        *sqlite.DB
	clock     *clock.Mock
	notifier  *service.Notifier
	reminders *service.ReminderService
	events    *service.EventService
	user      *domain.User
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	db := newTestDB(t)
	mock := newMockClock()
	notifier := service.NewNotifier(8)
	reminders := service.NewReminderService(db.Reminders(), notifier, mock, time.UTC)
	return &eventFixture{
		db:        db,
		clock:     mock,
		notifier:  notifier,
		reminders: reminders,
		events:    service.NewEventService(db.Events(), reminders, time.UTC),
		user:      createTestUser(t, db, "owner@example.com"),
	}
}
