package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/event-tracker/internal/domain"
)

const reminderColumns = `id, event_id, user_id, title, event_date, event_time, fire_at, status, created_at`

// ReminderRepository implements domain.ReminderRepository using SQLite.
// FireAt is stored as Unix seconds so due lookups are a plain integer compare.
type ReminderRepository struct {
	db *sql.DB
}

// NewReminderRepository creates a new SQLite-backed ReminderRepository.
func NewReminderRepository(db *DB) *ReminderRepository {
	return &ReminderRepository{db: db.SqlDB}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	if reminder.Status == "" {
		reminder.Status = domain.ReminderPending
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reminders (`+reminderColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reminder.ID, reminder.EventID, reminder.UserID, reminder.Title,
		reminder.EventDate, reminder.EventTime, reminder.FireAt.Unix(),
		string(reminder.Status), now,
	)
	if err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}
	reminder.CreatedAt = now
	return nil
}

func (r *ReminderRepository) DeletePendingByEvent(ctx context.Context, eventID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM reminders WHERE event_id = ? AND status = ?",
		eventID, string(domain.ReminderPending),
	)
	if err != nil {
		return fmt.Errorf("delete pending reminders: %w", err)
	}
	return nil
}

func (r *ReminderRepository) ListPendingByUser(ctx context.Context, userID int64) ([]domain.Reminder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE user_id = ? AND status = ? ORDER BY fire_at`,
		userID, string(domain.ReminderPending))
	if err != nil {
		return nil, fmt.Errorf("list pending reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (r *ReminderRepository) ListDue(ctx context.Context, now time.Time) ([]domain.Reminder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE status = ? AND fire_at <= ? ORDER BY fire_at`,
		string(domain.ReminderPending), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (r *ReminderRepository) SetStatus(ctx context.Context, id string, status domain.ReminderStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE reminders SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("update reminder status: %w", err)
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

func scanReminders(rows *sql.Rows) ([]domain.Reminder, error) {
	var reminders []domain.Reminder
	for rows.Next() {
		var (
			rem    domain.Reminder
			fireAt int64
			status string
		)
		if err := rows.Scan(&rem.ID, &rem.EventID, &rem.UserID, &rem.Title, &rem.EventDate,
			&rem.EventTime, &fireAt, &status, &rem.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		rem.FireAt = time.Unix(fireAt, 0).UTC()
		rem.Status = domain.ReminderStatus(status)
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}
