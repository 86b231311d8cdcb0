package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/event-tracker/internal/domain"
)

const eventColumns = `id, user_id, title, event_date, start_time, end_time, description, created_at, updated_at`

// EventRepository implements domain.EventRepository using SQLite.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new SQLite-backed EventRepository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db.SqlDB}
}

// Create inserts the event, assigning a fresh UUID when ID is empty.
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.UserID, event.Title, event.Date, event.StartTime,
		nullableString(event.EndTime), event.Description, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	event.CreatedAt = now
	event.UpdatedAt = now
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	return event, nil
}

// ListByUser returns the user's events in insertion order.
func (r *EventRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func (r *EventRepository) Update(ctx context.Context, event *domain.Event) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET title = ?, event_date = ?, start_time = ?, end_time = ?,
		 description = ?, updated_at = ?
		 WHERE id = ?`,
		event.Title, event.Date, event.StartTime, nullableString(event.EndTime),
		event.Description, now, event.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	event.UpdatedAt = now
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var (
		e   domain.Event
		end sql.NullString
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Date, &e.StartTime, &end,
		&e.Description, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.EndTime = end.String
	return &e, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
