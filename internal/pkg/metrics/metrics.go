package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

var (
	// NotificationsCreated counts persisted notification rows by audience (user, business, admin).
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications persisted",
		},
		[]string{"audience"},
	)

	// Deliveries counts delivery attempts by channel (email, sms, push) and outcome.
	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_deliveries_total",
			Help: "Total number of notification delivery attempts",
		},
		[]string{"channel", "outcome"},
	)

	RemindersDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_reminders_dispatched_total",
			Help: "Total number of booking reminders processed by the dispatcher",
		},
		[]string{"reminder_type", "outcome"},
	)

	LiveSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_live_subscribers",
			Help: "Number of connected SSE/WebSocket subscribers",
		},
	)
)

func IncCreated(audience string) {
	NotificationsCreated.WithLabelValues(audience).Inc()
}

func IncDelivery(channel, outcome string) {
	Deliveries.WithLabelValues(channel, outcome).Inc()
}

func IncReminder(reminderType, outcome string) {
	RemindersDispatched.WithLabelValues(reminderType, outcome).Inc()
}
