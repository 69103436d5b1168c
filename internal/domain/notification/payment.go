package notification

import (
	"context"
	"fmt"

	"petmemorial/internal/domain/booking"
	"petmemorial/internal/email"
	"petmemorial/internal/pkg/sms"
)

type PaymentKind string

const (
	PaymentPending   PaymentKind = "payment_pending"
	PaymentConfirmed PaymentKind = "payment_confirmed"
	PaymentFailed    PaymentKind = "payment_failed"
	PaymentRefunded  PaymentKind = "payment_refunded"
)

func (k PaymentKind) Valid() bool {
	_, ok := paymentRules[k]
	return ok
}

// PaymentOptions overrides the amount taken from the booking when set.
type PaymentOptions struct {
	Amount float64 `json:"amount,omitempty"`
}

type paymentRule struct {
	title    string
	severity Severity
	email    bool
	sms      bool
	message  func(b *booking.Context, amount string) string
}

var paymentRules = map[PaymentKind]paymentRule{
	PaymentPending: {
		title:    "Payment Pending",
		severity: SeverityInfo,
		message: func(b *booking.Context, amount string) string {
			return fmt.Sprintf("Your payment of %s for %s's %s is being processed.", amount, b.PetName, b.ServiceName)
		},
	},
	PaymentConfirmed: {
		title:    "Payment Confirmed",
		severity: SeveritySuccess,
		email:    true,
		sms:      true,
		message: func(b *booking.Context, amount string) string {
			return fmt.Sprintf("Your payment of %s for %s's %s has been confirmed.", amount, b.PetName, b.ServiceName)
		},
	},
	PaymentFailed: {
		title:    "Payment Failed",
		severity: SeverityError,
		email:    true,
		sms:      true,
		message: func(b *booking.Context, amount string) string {
			return fmt.Sprintf("Your payment of %s for %s's %s could not be processed. Please try again or use another payment method.",
				amount, b.PetName, b.ServiceName)
		},
	},
	PaymentRefunded: {
		title:    "Payment Refunded",
		severity: SeverityInfo,
		email:    true,
		message: func(b *booking.Context, amount string) string {
			return fmt.Sprintf("A refund of %s for %s's %s has been issued.", amount, b.PetName, b.ServiceName)
		},
	},
}

// CreatePaymentNotification notifies the booking owner about a payment event.
// Confirmed and failed payments also go out by SMS to users who opted in.
func (s *Service) CreatePaymentNotification(ctx context.Context, bookingID int64, kind PaymentKind, opts PaymentOptions) (int64, error) {
	rule, ok := paymentRules[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	b, err := s.bookings.GetContext(ctx, bookingID)
	if err != nil {
		return 0, err
	}

	amount := b.TotalAmount
	if opts.Amount > 0 {
		amount = opts.Amount
	}

	policy := EmailOff
	if rule.email {
		policy = EmailOn
	}

	id, err := s.CreateNotification(ctx, Request{
		NewNotification: NewNotification{
			UserID:  b.UserID,
			Title:   rule.title,
			Message: rule.message(b, email.FormatPeso(amount)),
			Type:    rule.severity,
			Link:    BookingLink(b.ID),
		},
		Email: policy,
	})
	if err != nil {
		return 0, err
	}

	if rule.sms {
		s.sendPaymentSMS(ctx, id, b, kind)
	}
	return id, nil
}

func (s *Service) sendPaymentSMS(ctx context.Context, notificationID int64, b *booking.Context, kind PaymentKind) {
	s.deliver(ctx, channelSMS, notificationID, b.UserID, func(ctx context.Context) error {
		if s.sms == nil {
			return errSkipped
		}
		rec, err := s.recipients.User(ctx, b.UserID)
		if err != nil {
			return err
		}
		phone := sms.NormalizePHNumber(rec.Phone)
		if !rec.SMSEnabled || phone == "" {
			return errSkipped
		}
		if !s.acquire(ctx, "payment_sms:"+string(kind), b.ID) {
			return errSkipped
		}
		return s.sms.Send(ctx, phone, sms.BookingMessage(rec.FirstName, b.PetName, b.ServiceName, string(kind), b.ID))
	})
}
