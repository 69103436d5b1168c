package notification

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const DefaultListLimit = 10

// Store reads and writes the notifications table.
type Store struct {
	db    *gorm.DB
	guard *SchemaGuard
	now   func() time.Time
}

func NewStore(db *gorm.DB, guard *SchemaGuard) *Store {
	return &Store{db: db, guard: guard, now: time.Now}
}

// Create ensures the table exists, then inserts the notification.
func (s *Store) Create(ctx context.Context, in NewNotification) (*Notification, error) {
	if err := s.guard.EnsureNotificationsTable(ctx); err != nil {
		return nil, err
	}
	return s.CreateFast(ctx, in)
}

// CreateFast inserts without the table check. The table must already exist,
// normally because Prepare or Create ran earlier in the process.
func (s *Store) CreateFast(ctx context.Context, in NewNotification) (*Notification, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	key, err := s.guard.KeyColumn(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	n := &Notification{
		UserID:    in.UserID,
		Title:     in.Title,
		Message:   in.Message,
		Type:      in.Type,
		Link:      optionalString(in.Link),
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := fmt.Sprintf(
		`INSERT INTO notifications (user_id, title, message, type, is_read, link, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING %s`, key)
	err = s.db.WithContext(ctx).
		Raw(query, n.UserID, n.Title, n.Message, string(n.Type), false, n.Link, n.CreatedAt, n.UpdatedAt).
		Scan(&n.ID).Error
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

// ListByUser returns the newest notifications of a user. The key column is
// aliased to id so legacy tables produce the same shape.
func (s *Store) ListByUser(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if err := s.guard.EnsureNotificationsTable(ctx); err != nil {
		return nil, err
	}
	key, err := s.guard.KeyColumn(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT %[1]s AS id, user_id, title, message, type, is_read, link, created_at, updated_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, %[1]s DESC
		LIMIT ?`, key)

	var rows []Notification
	if err := s.db.WithContext(ctx).Raw(query, userID, limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return rows, nil
}

func (s *Store) CountUnread(ctx context.Context, userID int64) (int64, error) {
	if err := s.guard.EnsureNotificationsTable(ctx); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.WithContext(ctx).
		Raw(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?`, userID, false).
		Scan(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkAsRead flags one notification as read if userID owns it. The update does not
// filter on is_read, so repeating it still matches the row. Zero matched rows means
// the notification does not exist or belongs to someone else: ErrNotificationNotFound.
func (s *Store) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	if err := s.guard.EnsureNotificationsTable(ctx); err != nil {
		return err
	}
	key, err := s.guard.KeyColumn(ctx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE notifications SET is_read = ?, updated_at = ? WHERE %s = ? AND user_id = ?`, key)
	res := s.db.WithContext(ctx).Exec(query, true, s.now().UTC(), notificationID, userID)
	if res.Error != nil {
		return fmt.Errorf("mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead flags every unread notification of the user and returns how many changed.
func (s *Store) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	if err := s.guard.EnsureNotificationsTable(ctx); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Exec(
		`UPDATE notifications SET is_read = ?, updated_at = ? WHERE user_id = ? AND is_read = ?`,
		true, s.now().UTC(), userID, false,
	)
	if res.Error != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
