package notification

import (
	"strings"
	"time"
)

// Severity drives the colour and icon of a notification in the UI.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
		return true
	}
	return false
}

// Account types used to address live-push subscribers.
const (
	AccountFurParent = "fur_parent"
	AccountBusiness  = "business"
	AccountAdmin     = "admin"
)

// Notification is a row of the notifications table, addressed to one user account.
type Notification struct {
	ID        int64     `gorm:"column:id" json:"id"`
	UserID    int64     `gorm:"column:user_id" json:"user_id"`
	Title     string    `gorm:"column:title" json:"title"`
	Message   string    `gorm:"column:message" json:"message"`
	Type      Severity  `gorm:"column:type" json:"type"`
	IsRead    bool      `gorm:"column:is_read" json:"is_read"`
	Link      *string   `gorm:"column:link" json:"link"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// NewNotification carries the fields needed to insert a notification.
type NewNotification struct {
	UserID  int64
	Title   string
	Message string
	Type    Severity
	Link    string
}

func (n *NewNotification) normalize() error {
	if n.UserID <= 0 {
		return ErrInvalidRecipient
	}
	if n.Type == "" {
		n.Type = SeverityInfo
	}
	if !n.Type.Valid() {
		return ErrInvalidSeverity
	}
	n.Link = strings.TrimSpace(n.Link)
	if n.Link != "" && !strings.HasPrefix(n.Link, "/") {
		return ErrInvalidLink
	}
	return nil
}

// AdminNotification is broadcast to every admin rather than addressed to one user.
type AdminNotification struct {
	ID         int64     `gorm:"column:id" json:"id"`
	Type       string    `gorm:"column:type" json:"type"`
	Title      string    `gorm:"column:title" json:"title"`
	Message    string    `gorm:"column:message" json:"message"`
	EntityType *string   `gorm:"column:entity_type" json:"entity_type"`
	EntityID   *int64    `gorm:"column:entity_id" json:"entity_id"`
	Link       *string   `gorm:"column:link" json:"link"`
	IsRead     bool      `gorm:"column:is_read" json:"is_read"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

// LivePayload is what subscribers receive over SSE/WebSocket.
type LivePayload struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	Link      *string   `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
