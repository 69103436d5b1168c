package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// NewAdminNotification carries the fields of an admin broadcast. Link is derived, not supplied.
type NewAdminNotification struct {
	Type          string
	Title         string
	Message       string
	EntityType    string
	EntityID      int64
	SubjectUserID int64
}

type AdminStore struct {
	db    *gorm.DB
	guard *SchemaGuard
	now   func() time.Time
}

func NewAdminStore(db *gorm.DB, guard *SchemaGuard) *AdminStore {
	return &AdminStore{db: db, guard: guard, now: time.Now}
}

func (s *AdminStore) Create(ctx context.Context, in NewAdminNotification) (*AdminNotification, error) {
	in.Type = strings.TrimSpace(in.Type)
	if in.Type == "" {
		return nil, ErrUnknownKind
	}
	if err := s.guard.EnsureAdminNotificationsTable(ctx); err != nil {
		return nil, err
	}

	n := &AdminNotification{
		Type:       in.Type,
		Title:      in.Title,
		Message:    in.Message,
		EntityType: optionalString(in.EntityType),
		Link:       AdminLink(in.Type, in.EntityType, in.EntityID, in.SubjectUserID),
		CreatedAt:  s.now().UTC(),
	}
	if in.EntityID > 0 {
		id := in.EntityID
		n.EntityID = &id
	}

	err := s.db.WithContext(ctx).Raw(
		`INSERT INTO admin_notifications (type, title, message, entity_type, entity_id, link, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		n.Type, n.Title, n.Message, n.EntityType, n.EntityID, n.Link, false, n.CreatedAt,
	).Scan(&n.ID).Error
	if err != nil {
		return nil, fmt.Errorf("insert admin notification: %w", err)
	}
	return n, nil
}

func (s *AdminStore) List(ctx context.Context, limit int, unreadOnly bool) ([]AdminNotification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if err := s.guard.EnsureAdminNotificationsTable(ctx); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Table(tableAdminNotifications)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var rows []AdminNotification
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list admin notifications: %w", err)
	}
	return rows, nil
}

func (s *AdminStore) MarkAsRead(ctx context.Context, id int64) error {
	if err := s.guard.EnsureAdminNotificationsTable(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Exec(`UPDATE admin_notifications SET is_read = ? WHERE id = ?`, true, id)
	if res.Error != nil {
		return fmt.Errorf("mark admin notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *AdminStore) MarkAllAsRead(ctx context.Context) (int64, error) {
	if err := s.guard.EnsureAdminNotificationsTable(ctx); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Exec(`UPDATE admin_notifications SET is_read = ? WHERE is_read = ?`, true, false)
	if res.Error != nil {
		return 0, fmt.Errorf("mark all admin notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
