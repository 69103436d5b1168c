package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"petmemorial/internal/domain/booking"
	"petmemorial/internal/email"
)

// BookingKind is a booking lifecycle event.
type BookingKind string

const (
	BookingCreated    BookingKind = "booking_created"
	BookingConfirmed  BookingKind = "booking_confirmed"
	BookingPending    BookingKind = "booking_pending"
	BookingInProgress BookingKind = "booking_in_progress"
	BookingCompleted  BookingKind = "booking_completed"
	BookingCancelled  BookingKind = "booking_cancelled"
	ReviewRequest     BookingKind = "review_request"
	Reminder24h       BookingKind = "reminder_24h"
	Reminder1h        BookingKind = "reminder_1h"
)

func (k BookingKind) Valid() bool {
	_, ok := bookingRules[k]
	return ok
}

// BookingEventOptions carries the optional context of a booking event.
type BookingEventOptions struct {
	Reason      string `json:"reason,omitempty"`
	CancelledBy string `json:"cancelled_by,omitempty"`
	Source      string `json:"source,omitempty"`
}

func (o BookingEventOptions) byProvider() bool {
	return strings.EqualFold(o.CancelledBy, "provider") || strings.EqualFold(o.Source, "provider")
}

type bookingRule struct {
	title    string
	severity Severity
	email    bool
	// richEmail replaces the plain notification email with a booking template.
	richEmail     bool
	providerEcho  bool
	message       func(b *booking.Context, o BookingEventOptions) string
	providerTitle string
	providerText  func(b *booking.Context, o BookingEventOptions) string
}

var bookingRules = map[BookingKind]bookingRule{
	BookingCreated: {
		title:     "Booking Submitted",
		severity:  SeveritySuccess,
		email:     true,
		richEmail: true,
		message: func(b *booking.Context, _ BookingEventOptions) string {
			return fmt.Sprintf("Your booking for %s's %s with %s on %s at %s has been submitted and is awaiting confirmation.",
				b.PetName, b.ServiceName, b.ProviderName, b.FormattedDate(), b.FormattedTime())
		},
		providerEcho:  true,
		providerTitle: "New Booking Received",
		providerText: func(b *booking.Context, _ BookingEventOptions) string {
			return fmt.Sprintf("A new booking (#%d) for %s's %s has been placed for %s at %s.",
				b.ID, b.PetName, b.ServiceName, b.FormattedDate(), b.FormattedTime())
		},
	},
	BookingConfirmed: {
		title:     "Booking Confirmed",
		severity:  SeveritySuccess,
		email:     true,
		richEmail: true,
		message: func(b *booking.Context, _ BookingEventOptions) string {
			return fmt.Sprintf("Your booking for %s's %s on %s at %s has been confirmed by %s.",
				b.PetName, b.ServiceName, b.FormattedDate(), b.FormattedTime(), b.ProviderName)
		},
	},
	BookingPending: {
		title:    "Booking Pending",
		severity: SeverityInfo,
		message: func(b *booking.Context, _ BookingEventOptions) string {
			return fmt.Sprintf("Your booking for %s's %s is pending confirmation from %s.",
				b.PetName, b.ServiceName, b.ProviderName)
		},
		providerEcho:  true,
		providerTitle: "Booking Awaiting Confirmation",
		providerText: func(b *booking.Context, _ BookingEventOptions) string {
			return fmt.Sprintf("Booking #%d for %s's %s on %s at %s is waiting for your confirmation.",
				b.ID, b.PetName, b.ServiceName, b.FormattedDate(), b.FormattedTime())
		},
	},
	BookingInProgress: {
		title:     "Service In Progress",
		severity:  SeverityInfo,
		email:     true,
		richEmail: true,
		message: func(b *booking.Context, _ BookingEventOptions) string {
			return fmt.Sprintf("%s for %s is now in progress with %s.", b.ServiceName, b.PetName, b.ProviderName)
		},
	},
	BookingCompleted: {
		title:     "Service Completed",
		severity:  SeveritySuccess,
		email:     true,
		richEmail: true,
		message: func(b *booking.Context, _ BookingEventOptions) string {
			return fmt.Sprintf("%s for %s has been completed. Thank you for trusting %s.", b.ServiceName, b.PetName, b.ProviderName)
		},
	},
	BookingCancelled: {
		title:     "Booking Cancelled",
		severity:  SeverityWarning,
		email:     true,
		richEmail: true,
		message: func(b *booking.Context, o BookingEventOptions) string {
			msg := fmt.Sprintf("Your booking for %s's %s", b.PetName, b.ServiceName)
			if o.byProvider() {
				msg += " has been cancelled by the service provider."
			} else {
				msg += " has been cancelled."
			}
			return withReason(msg, o.Reason)
		},
		providerEcho:  true,
		providerTitle: "Booking Cancelled",
		providerText: func(b *booking.Context, o BookingEventOptions) string {
			var msg string
			if o.byProvider() {
				msg = fmt.Sprintf("You cancelled booking #%d for %s's %s.", b.ID, b.PetName, b.ServiceName)
			} else {
				msg = fmt.Sprintf("The customer cancelled booking #%d for %s's %s.", b.ID, b.PetName, b.ServiceName)
			}
			return withReason(msg, o.Reason)
		},
	},
	ReviewRequest: {
		title:    "Share Your Experience",
		severity: SeverityInfo,
		message: func(b *booking.Context, _ BookingEventOptions) string {
			return fmt.Sprintf("How was %s's %s with %s? Your review helps other fur parents.",
				b.PetName, b.ServiceName, b.ProviderName)
		},
	},
	Reminder24h: {
		title:    "Appointment Tomorrow",
		severity: SeverityInfo,
		email:    true,
		message: func(b *booking.Context, _ BookingEventOptions) string {
			return fmt.Sprintf("Reminder: %s's %s with %s is scheduled for tomorrow, %s at %s.",
				b.PetName, b.ServiceName, b.ProviderName, b.FormattedDate(), b.FormattedTime())
		},
	},
	Reminder1h: {
		title:    "Appointment in 1 Hour",
		severity: SeverityInfo,
		message: func(b *booking.Context, _ BookingEventOptions) string {
			return fmt.Sprintf("Reminder: %s's %s with %s starts at %s.",
				b.PetName, b.ServiceName, b.ProviderName, b.FormattedTime())
		},
	},
}

func withReason(msg, reason string) string {
	if r := strings.TrimSpace(reason); r != "" {
		return msg + " Reason: " + r
	}
	return msg
}

// BookingLink is the fur parent's deep link to a booking.
func BookingLink(bookingID int64) string {
	return fmt.Sprintf("/user/furparent/bookings?bookingId=%d", bookingID)
}

// ProviderBookingLink is the provider's deep link into booking management.
func ProviderBookingLink(bookingID int64) string {
	return fmt.Sprintf("/cremation/bookings?bookingId=%d", bookingID)
}

// CreateBookingNotification notifies the booking owner about a lifecycle event and,
// for created, pending and cancelled, echoes it to the provider account.
// The returned id is the fur parent's notification.
func (s *Service) CreateBookingNotification(ctx context.Context, bookingID int64, kind BookingKind, opts BookingEventOptions) (int64, error) {
	rule, ok := bookingRules[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	b, err := s.bookings.GetContext(ctx, bookingID)
	if err != nil {
		return 0, err
	}

	link := BookingLink(b.ID)
	if kind == ReviewRequest {
		link += "&showReview=true"
	}

	policy := EmailOff
	if rule.email && !rule.richEmail {
		policy = EmailOn
	}

	id, err := s.CreateNotification(ctx, Request{
		NewNotification: NewNotification{
			UserID:  b.UserID,
			Title:   rule.title,
			Message: rule.message(b, opts),
			Type:    rule.severity,
			Link:    link,
		},
		Email: policy,
	})
	if err != nil {
		return 0, err
	}

	if rule.email && rule.richEmail {
		s.sendBookingEmail(ctx, id, b, kind, opts, link)
	}
	if rule.providerEcho {
		s.notifyProvider(ctx, b, rule, opts)
	}
	return id, nil
}

// sendBookingEmail sends the booking template instead of the plain notification
// email, so each event produces one email.
func (s *Service) sendBookingEmail(ctx context.Context, notificationID int64, b *booking.Context, kind BookingKind, opts BookingEventOptions, link string) {
	s.deliver(ctx, channelEmail, notificationID, b.UserID, func(ctx context.Context) error {
		rec, err := s.recipients.User(ctx, b.UserID)
		if err != nil {
			return err
		}
		if !rec.CanEmail() {
			return errSkipped
		}
		if !s.acquire(ctx, "booking_email:"+string(kind), b.ID) {
			return errSkipped
		}

		data := email.BookingData{
			BookingID:    b.ID,
			FirstName:    rec.FirstName,
			PetName:      b.PetName,
			ServiceName:  b.ServiceName,
			ProviderName: b.ProviderName,
			Date:         b.FormattedDate(),
			Time:         b.FormattedTime(),
			TotalAmount:  b.TotalAmount,
			Link:         link,
		}

		var rendered email.Rendered
		if kind == BookingCreated {
			rendered = s.renderer.BookingConfirmation(data)
		} else {
			status := strings.TrimPrefix(string(kind), "booking_")
			rendered = s.renderer.BookingStatusUpdate(data, status, statusNote(kind, opts))
		}
		return s.sendEmail(ctx, rendered.To(rec.Email))
	})
}

func statusNote(kind BookingKind, opts BookingEventOptions) string {
	if kind != BookingCancelled {
		return ""
	}
	note := "This booking was cancelled."
	if opts.byProvider() {
		note = "This booking was cancelled by the service provider."
	}
	return withReason(note, opts.Reason)
}

func (s *Service) notifyProvider(ctx context.Context, b *booking.Context, rule bookingRule, opts BookingEventOptions) {
	providerUserID, err := s.providers.Resolve(ctx, b.ProviderID)
	if err != nil {
		s.log.Warn("provider notification skipped",
			zap.Int64("booking_id", b.ID),
			zap.Int64("provider_id", b.ProviderID),
			zap.Error(err),
		)
		return
	}

	_, err = s.CreateBusinessNotification(ctx, Request{
		NewNotification: NewNotification{
			UserID:  providerUserID,
			Title:   rule.providerTitle,
			Message: rule.providerText(b, opts),
			Type:    rule.severity,
			Link:    ProviderBookingLink(b.ID),
		},
	})
	if err != nil {
		s.log.Warn("provider notification failed",
			zap.Int64("booking_id", b.ID),
			zap.Int64("user_id", providerUserID),
			zap.Error(err),
		)
	}
}
