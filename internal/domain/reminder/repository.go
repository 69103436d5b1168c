package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"petmemorial/internal/domain/notification"
)

const uniqueViolation = "23505"

type Repository struct {
	db    *gorm.DB
	guard *notification.SchemaGuard
}

func NewRepository(db *gorm.DB, guard *notification.SchemaGuard) *Repository {
	return &Repository{db: db, guard: guard}
}

// Insert adds a pending reminder. A second reminder of the same type for the
// same booking is rejected with ErrDuplicateReminder.
func (r *Repository) Insert(ctx context.Context, bookingID int64, reminderType string, at time.Time) (*Reminder, error) {
	if err := r.guard.EnsureRemindersTable(ctx); err != nil {
		return nil, err
	}

	rem := &Reminder{
		BookingID:     bookingID,
		ReminderType:  reminderType,
		ScheduledTime: at.UTC().Truncate(time.Second),
		CreatedAt:     time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO booking_reminders (booking_id, reminder_type, scheduled_time, sent, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		rem.BookingID, rem.ReminderType, rem.ScheduledTime, false, rem.CreatedAt,
	).Scan(&rem.ID).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateReminder
		}
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	return rem, nil
}

// Reschedule moves a pending reminder to a new time. Sent reminders are left alone.
func (r *Repository) Reschedule(ctx context.Context, bookingID int64, reminderType string, at time.Time) (bool, error) {
	if err := r.guard.EnsureRemindersTable(ctx); err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Exec(
		`UPDATE booking_reminders SET scheduled_time = ? WHERE booking_id = ? AND reminder_type = ? AND sent = ?`,
		at.UTC().Truncate(time.Second), bookingID, reminderType, false,
	)
	if res.Error != nil {
		return false, fmt.Errorf("reschedule reminder: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// RetirePending deletes the unsent reminder of a type for a booking. Sent rows are kept.
func (r *Repository) RetirePending(ctx context.Context, bookingID int64, reminderType string) (bool, error) {
	if err := r.guard.EnsureRemindersTable(ctx); err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Exec(
		`DELETE FROM booking_reminders WHERE booking_id = ? AND reminder_type = ? AND sent = ?`,
		bookingID, reminderType, false,
	)
	if res.Error != nil {
		return false, fmt.Errorf("retire reminder: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Due returns unsent reminders scheduled at or before now, oldest first.
func (r *Repository) Due(ctx context.Context, now time.Time, limit int) ([]Reminder, error) {
	if err := r.guard.EnsureRemindersTable(ctx); err != nil {
		return nil, err
	}
	var rows []Reminder
	err := r.db.WithContext(ctx).
		Table("booking_reminders").
		Where("sent = ? AND scheduled_time <= ?", false, now.UTC().Truncate(time.Second)).
		Order("scheduled_time ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load due reminders: %w", err)
	}
	return rows, nil
}

func (r *Repository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE booking_reminders SET sent = ?, sent_at = ? WHERE id = ? AND sent = ?`,
		true, at.UTC(), id, false,
	)
	if res.Error != nil {
		return fmt.Errorf("mark reminder %d sent: %w", id, res.Error)
	}
	return nil
}

func (r *Repository) ListByBooking(ctx context.Context, bookingID int64) ([]Reminder, error) {
	if err := r.guard.EnsureRemindersTable(ctx); err != nil {
		return nil, err
	}
	var rows []Reminder
	err := r.db.WithContext(ctx).
		Table("booking_reminders").
		Where("booking_id = ?", bookingID).
		Order("scheduled_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return rows, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
