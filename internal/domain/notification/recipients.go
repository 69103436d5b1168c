package notification

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Recipient is the delivery view of a user account.
type Recipient struct {
	UserID       int64
	Email        string
	FirstName    string
	Phone        string
	BusinessName string
	EmailEnabled bool
	SMSEnabled   bool
}

func (r *Recipient) CanEmail() bool {
	return r != nil && r.EmailEnabled && strings.TrimSpace(r.Email) != ""
}

type recipientRow struct {
	UserID             int64   `gorm:"column:user_id"`
	Email              *string `gorm:"column:email"`
	FirstName          *string `gorm:"column:first_name"`
	Phone              *string `gorm:"column:phone"`
	BusinessName       *string `gorm:"column:business_name"`
	EmailNotifications *bool   `gorm:"column:email_notifications"`
	SMSNotifications   *bool   `gorm:"column:sms_notifications"`
}

// toRecipient applies the preference defaults: email is on unless explicitly
// disabled, SMS is off unless explicitly enabled.
func (row recipientRow) toRecipient() *Recipient {
	r := &Recipient{
		UserID:       row.UserID,
		Email:        deref(row.Email),
		FirstName:    deref(row.FirstName),
		Phone:        deref(row.Phone),
		BusinessName: deref(row.BusinessName),
		EmailEnabled: true,
	}
	if row.EmailNotifications != nil {
		r.EmailEnabled = *row.EmailNotifications
	}
	if row.SMSNotifications != nil {
		r.SMSEnabled = *row.SMSNotifications
	}
	return r
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// Each lookup lists its queries richest first. Later entries drop columns that
// older schemas lack, and the missing preferences fall back to their defaults.
var (
	userQueries = []string{
		`SELECT user_id, email, first_name, phone, email_notifications, sms_notifications FROM users WHERE user_id = ? LIMIT 1`,
		`SELECT user_id, email, first_name, phone, email_notifications FROM users WHERE user_id = ? LIMIT 1`,
		`SELECT user_id, email, first_name, phone FROM users WHERE user_id = ? LIMIT 1`,
	}
	businessQueries = []string{
		`SELECT u.user_id, u.email, u.first_name, u.phone, u.email_notifications, bp.business_name
		FROM users u LEFT JOIN business_profiles bp ON bp.user_id = u.user_id
		WHERE u.user_id = ? LIMIT 1`,
		`SELECT u.user_id, u.email, u.first_name, u.phone, bp.business_name
		FROM users u LEFT JOIN business_profiles bp ON bp.user_id = u.user_id
		WHERE u.user_id = ? LIMIT 1`,
		`SELECT user_id, email, first_name, phone FROM users WHERE user_id = ? LIMIT 1`,
	}
	adminQueries = []string{
		`SELECT user_id, email, first_name, email_notifications FROM users
		WHERE role = 'admin' AND status = 'active' AND email IS NOT NULL AND email <> ''
		ORDER BY user_id`,
		`SELECT user_id, email, first_name FROM users
		WHERE role = 'admin' AND status = 'active' AND email IS NOT NULL AND email <> ''
		ORDER BY user_id`,
	}
	activeUserQueries = []string{
		`SELECT user_id FROM users WHERE status = 'active' ORDER BY user_id`,
		`SELECT user_id FROM users ORDER BY user_id`,
	}
)

// RecipientRepository resolves delivery details from the users table, which this
// subsystem reads but does not own.
type RecipientRepository struct {
	db *gorm.DB
}

func NewRecipientRepository(db *gorm.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

// User returns ErrRecipientNotFound when the account does not exist.
func (r *RecipientRepository) User(ctx context.Context, userID int64) (*Recipient, error) {
	return r.one(ctx, userQueries, userID)
}

// Business is User plus the business display name from business_profiles.
func (r *RecipientRepository) Business(ctx context.Context, userID int64) (*Recipient, error) {
	return r.one(ctx, businessQueries, userID)
}

// ActiveAdmins returns active admins with an email address and email notifications enabled.
func (r *RecipientRepository) ActiveAdmins(ctx context.Context) ([]*Recipient, error) {
	var rows []recipientRow
	if err := r.firstWorking(ctx, adminQueries, &rows); err != nil {
		return nil, fmt.Errorf("load admins: %w", err)
	}

	out := make([]*Recipient, 0, len(rows))
	for _, row := range rows {
		rec := row.toRecipient()
		if rec.CanEmail() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *RecipientRepository) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.firstWorking(ctx, activeUserQueries, &ids); err != nil {
		return nil, fmt.Errorf("load active users: %w", err)
	}
	return ids, nil
}

func (r *RecipientRepository) one(ctx context.Context, queries []string, userID int64) (*Recipient, error) {
	var rows []recipientRow
	if err := r.firstWorking(ctx, queries, &rows, userID); err != nil {
		return nil, fmt.Errorf("load recipient %d: %w", userID, err)
	}
	if len(rows) == 0 {
		return nil, ErrRecipientNotFound
	}
	return rows[0].toRecipient(), nil
}

// firstWorking runs queries in order and keeps the first one the schema accepts.
// The last error is returned if none of them do.
func (r *RecipientRepository) firstWorking(ctx context.Context, queries []string, dest any, args ...any) error {
	var lastErr error
	for _, q := range queries {
		err := r.db.WithContext(ctx).Raw(q, args...).Scan(dest).Error
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return lastErr
}
