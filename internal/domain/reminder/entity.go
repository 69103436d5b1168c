package reminder

import (
	"time"

	"petmemorial/internal/domain/notification"
)

const (
	Type24h = "24h"
	Type1h  = "1h"
)

// Offset is how long before the appointment a reminder fires.
type Offset struct {
	Type   string
	Before time.Duration
}

// Offsets are scheduled for every confirmed booking.
var Offsets = []Offset{
	{Type: Type24h, Before: 24 * time.Hour},
	{Type: Type1h, Before: time.Hour},
}

// Reminder is a row of booking_reminders.
type Reminder struct {
	ID            int64      `gorm:"column:id" json:"id"`
	BookingID     int64      `gorm:"column:booking_id" json:"booking_id"`
	ReminderType  string     `gorm:"column:reminder_type" json:"reminder_type"`
	ScheduledTime time.Time  `gorm:"column:scheduled_time" json:"scheduled_time"`
	Sent          bool       `gorm:"column:sent" json:"sent"`
	SentAt        *time.Time `gorm:"column:sent_at" json:"sent_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
}

func validType(t string) bool {
	return t == Type24h || t == Type1h
}

// KindFor maps a reminder type to the booking notification it triggers.
func KindFor(reminderType string) (notification.BookingKind, bool) {
	switch reminderType {
	case Type24h:
		return notification.Reminder24h, true
	case Type1h:
		return notification.Reminder1h, true
	}
	return "", false
}
