package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petmemorial/internal/domain/booking"
	"petmemorial/internal/testutil"
)

func TestCreateBookingNotification_CancelledByProvider(t *testing.T) {
	f := newFixture(t)

	id, err := f.svc.CreateBookingNotification(context.Background(), 42, BookingCancelled, BookingEventOptions{
		CancelledBy: "provider",
		Reason:      "Equipment failure",
	})
	require.NoError(t, err)

	list := f.notificationsOf(t, 7)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Contains(t, list[0].Message, "cancelled by the service provider")
	assert.Contains(t, list[0].Message, "Equipment failure")
	assert.Contains(t, list[0].Message, "Bella")
	assert.Contains(t, list[0].Message, "Standard Cremation")
	assert.Equal(t, SeverityWarning, list[0].Type)
	require.NotNil(t, list[0].Link)
	assert.Equal(t, "/user/furparent/bookings?bookingId=42", *list[0].Link)
}

func TestCreateBookingNotification_CancelledByCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBookingNotification(context.Background(), 42, BookingCancelled, BookingEventOptions{})
	require.NoError(t, err)

	list := f.notificationsOf(t, 7)
	require.Len(t, list, 1)
	assert.NotContains(t, list[0].Message, "service provider")
	assert.NotContains(t, list[0].Message, "Reason:")

	provider := f.notificationsOf(t, 9)
	require.Len(t, provider, 1)
	assert.Contains(t, provider[0].Message, "The customer cancelled booking #42")
}

func TestCreateBookingNotification_SourceProvider(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBookingNotification(context.Background(), 42, BookingCancelled, BookingEventOptions{Source: "provider"})
	require.NoError(t, err)
	assert.Contains(t, f.notificationsOf(t, 7)[0].Message, "cancelled by the service provider")
}

func TestCreateBookingNotification_ProviderEcho(t *testing.T) {
	tests := []struct {
		kind BookingKind
		echo bool
	}{
		{BookingCreated, true},
		{BookingPending, true},
		{BookingCancelled, true},
		{BookingConfirmed, false},
		{BookingInProgress, false},
		{BookingCompleted, false},
		{ReviewRequest, false},
		{Reminder24h, false},
		{Reminder1h, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.CreateBookingNotification(context.Background(), 42, tt.kind, BookingEventOptions{})
			require.NoError(t, err)

			provider := f.notificationsOf(t, 9)
			if !tt.echo {
				assert.Empty(t, provider)
				return
			}
			require.Len(t, provider, 1)
			require.NotNil(t, provider[0].Link)
			assert.Equal(t, "/cremation/bookings?bookingId=42", *provider[0].Link)
		})
	}
}

func TestCreateBookingNotification_OneEmailPerEvent(t *testing.T) {
	tests := []struct {
		kind      BookingKind
		userMails int
		subject   string
	}{
		{BookingCreated, 1, "Booking"},
		{BookingConfirmed, 1, "Booking"},
		{BookingInProgress, 1, "Booking"},
		{BookingCompleted, 1, "Booking"},
		{BookingCancelled, 1, "Booking"},
		{Reminder24h, 1, "Appointment Tomorrow - Rainbow Paws"},
		{BookingPending, 0, ""},
		{Reminder1h, 0, ""},
		{ReviewRequest, 0, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.CreateBookingNotification(context.Background(), 42, tt.kind, BookingEventOptions{})
			require.NoError(t, err)

			sent := f.mailer.to("ana@example.com")
			require.Len(t, sent, tt.userMails)
			if tt.userMails > 0 {
				assert.Contains(t, sent[0].Subject, tt.subject)
			}
		})
	}
}

func TestCreateBookingNotification_RichEmailUsesBookingTemplate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBookingNotification(context.Background(), 42, BookingCreated, BookingEventOptions{})
	require.NoError(t, err)

	sent := f.mailer.to("ana@example.com")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].HTML, "Bella")
	assert.Contains(t, sent[0].HTML, "Peaceful Paws")
	assert.Contains(t, sent[0].HTML, "March 3, 2026")
	assert.Contains(t, sent[0].HTML, "₱1500")

	// Provider gets the plain business notification email.
	assert.Len(t, f.mailer.to("owner@peacefulpaws.example.com"), 1)
}

func TestCreateBookingNotification_RichEmailRespectsPreference(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Exec(`UPDATE users SET email_notifications = 0 WHERE user_id = 7`).Error)

	_, err := f.svc.CreateBookingNotification(context.Background(), 42, BookingConfirmed, BookingEventOptions{})
	require.NoError(t, err)
	assert.Empty(t, f.mailer.to("ana@example.com"))
	assert.Len(t, f.notificationsOf(t, 7), 1)
}

func TestCreateBookingNotification_RichEmailDeduplicated(t *testing.T) {
	f := newFixture(t, withDeduper(stubDeduper{allow: false}))

	_, err := f.svc.CreateBookingNotification(context.Background(), 42, BookingConfirmed, BookingEventOptions{})
	require.NoError(t, err)
	assert.Empty(t, f.mailer.to("ana@example.com"))
}

func TestCreateBookingNotification_ReviewRequestLink(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBookingNotification(context.Background(), 42, ReviewRequest, BookingEventOptions{})
	require.NoError(t, err)

	list := f.notificationsOf(t, 7)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Link)
	assert.Equal(t, "/user/furparent/bookings?bookingId=42&showReview=true", *list[0].Link)
}

func TestCreateBookingNotification_ReminderText(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBookingNotification(context.Background(), 42, Reminder24h, BookingEventOptions{})
	require.NoError(t, err)

	list := f.notificationsOf(t, 7)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Message, "March 3, 2026")
	assert.Contains(t, list[0].Message, "10:00 AM")
}

func TestCreateBookingNotification_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBookingNotification(ctx, 42, "booking_exploded", BookingEventOptions{})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = f.svc.CreateBookingNotification(ctx, 999, BookingConfirmed, BookingEventOptions{})
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
	assert.Empty(t, f.notificationsOf(t, 7))
}

func TestCreateBookingNotification_ProviderUnresolved(t *testing.T) {
	f := newFixture(t)
	testutil.InsertBooking(t, f.db, testutil.Booking{ID: 50, UserID: 7, ProviderID: 77, PackageID: 11, PetName: "Milo", Date: "2026-03-04", Time: "09:00", TotalAmount: 1500})

	id, err := f.svc.CreateBookingNotification(context.Background(), 50, BookingCreated, BookingEventOptions{})
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Empty(t, f.notificationsOf(t, 9))
}

func TestRulesEngine_SeverityClosure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for kind := range bookingRules {
		_, err := f.svc.CreateBookingNotification(ctx, 42, kind, BookingEventOptions{Reason: "x"})
		require.NoError(t, err, kind)
	}
	for kind := range paymentRules {
		_, err := f.svc.CreatePaymentNotification(ctx, 42, kind, PaymentOptions{})
		require.NoError(t, err, kind)
	}
	for kind := range systemTitles {
		_, err := f.svc.CreateSystemNotification(ctx, kind, SystemNotice{Message: "m", UserIDs: []int64{7}})
		require.NoError(t, err, kind)
	}

	var types []string
	require.NoError(t, f.db.Raw(`SELECT type FROM notifications`).Scan(&types).Error)
	require.NotEmpty(t, types)
	for _, typ := range types {
		assert.True(t, Severity(typ).Valid(), typ)
	}
}
