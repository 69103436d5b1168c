package notification

import "time"

type NotificationResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	Link      *string   `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}

func NotificationResponseFromEntity(n Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		Link:      n.Link,
		CreatedAt: n.CreatedAt,
	}
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type MarkedResponse struct {
	Updated int64 `json:"updated"`
}

type CreatedResponse struct {
	NotificationID int64 `json:"notification_id"`
}

// CreateNotificationRequest creates a notification for one account directly.
type CreateNotificationRequest struct {
	UserID    int64  `json:"user_id" binding:"required,gt=0"`
	Title     string `json:"title" binding:"required,max=255"`
	Message   string `json:"message" binding:"required"`
	Type      string `json:"type"`
	Link      string `json:"link"`
	SendEmail *bool  `json:"send_email"`
	Audience  string `json:"audience" binding:"omitempty,oneof=user business"`
}

type BookingEventRequest struct {
	BookingID   int64  `json:"booking_id" binding:"required,gt=0"`
	Kind        string `json:"kind" binding:"required"`
	Reason      string `json:"reason"`
	CancelledBy string `json:"cancelled_by"`
	Source      string `json:"source"`
}

type PaymentEventRequest struct {
	BookingID int64   `json:"booking_id" binding:"required,gt=0"`
	Kind      string  `json:"kind" binding:"required"`
	Amount    float64 `json:"amount" binding:"gte=0"`
}

type SystemEventRequest struct {
	Kind    string  `json:"kind" binding:"required"`
	Title   string  `json:"title"`
	Message string  `json:"message" binding:"required"`
	Link    string  `json:"link"`
	UserIDs []int64 `json:"user_ids"`
}

type AdminEventRequest struct {
	Type       string `json:"type" binding:"required"`
	Title      string `json:"title" binding:"required,max=255"`
	Message    string `json:"message" binding:"required"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	UserID     int64  `json:"user_id"`
	SendEmail  *bool  `json:"send_email"`
}

func policyFromFlag(flag *bool) EmailPolicy {
	switch {
	case flag == nil:
		return EmailDefault
	case *flag:
		return EmailOn
	default:
		return EmailOff
	}
}
