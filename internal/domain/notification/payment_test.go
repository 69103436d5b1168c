package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petmemorial/internal/testutil"
)

func TestCreatePaymentNotification_FormatsAmount(t *testing.T) {
	f := newFixture(t)
	testutil.InsertBooking(t, f.db, testutil.Booking{ID: 5, UserID: 7, ProviderID: 3, PackageID: 11, PetName: "Coco", Date: "2026-03-05", Time: "14:30", TotalAmount: 1500})

	_, err := f.svc.CreatePaymentNotification(context.Background(), 5, PaymentConfirmed, PaymentOptions{})
	require.NoError(t, err)

	list := f.notificationsOf(t, 7)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Message, "₱1500")
	assert.Equal(t, SeveritySuccess, list[0].Type)
	assert.Equal(t, "Payment Confirmed", list[0].Title)
}

func TestCreatePaymentNotification_AmountOverride(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreatePaymentNotification(context.Background(), 42, PaymentRefunded, PaymentOptions{Amount: 750.5})
	require.NoError(t, err)
	assert.Contains(t, f.notificationsOf(t, 7)[0].Message, "₱750.50")
}

func TestCreatePaymentNotification_Channels(t *testing.T) {
	tests := []struct {
		kind     PaymentKind
		severity Severity
		emails   int
		sms      int
	}{
		{PaymentPending, SeverityInfo, 0, 0},
		{PaymentConfirmed, SeveritySuccess, 1, 1},
		{PaymentFailed, SeverityError, 1, 1},
		{PaymentRefunded, SeverityInfo, 1, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.CreatePaymentNotification(context.Background(), 42, tt.kind, PaymentOptions{})
			require.NoError(t, err)

			assert.Equal(t, tt.severity, f.notificationsOf(t, 7)[0].Type)
			assert.Len(t, f.mailer.to("ana@example.com"), tt.emails)
			require.Len(t, f.sms.calls, tt.sms)
			if tt.sms > 0 {
				assert.Equal(t, "639171234567", f.sms.calls[0].To)
				assert.Contains(t, f.sms.calls[0].Message, "Bella")
				assert.Contains(t, f.sms.calls[0].Message, "#42")
			}
		})
	}
}

func TestCreatePaymentNotification_SMSRequiresOptIn(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Exec(`UPDATE users SET sms_notifications = 0 WHERE user_id = 7`).Error)

	_, err := f.svc.CreatePaymentNotification(context.Background(), 42, PaymentConfirmed, PaymentOptions{})
	require.NoError(t, err)
	assert.Empty(t, f.sms.calls)
}

func TestCreatePaymentNotification_SMSRequiresPhone(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Exec(`UPDATE users SET phone = '' WHERE user_id = 7`).Error)

	_, err := f.svc.CreatePaymentNotification(context.Background(), 42, PaymentFailed, PaymentOptions{})
	require.NoError(t, err)
	assert.Empty(t, f.sms.calls)
}

func TestCreatePaymentNotification_SMSFailureSwallowed(t *testing.T) {
	f := newFixture(t)
	f.sms.err = errors.New("gateway timeout")

	id, err := f.svc.CreatePaymentNotification(context.Background(), 42, PaymentConfirmed, PaymentOptions{})
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestCreatePaymentNotification_UnknownKind(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreatePaymentNotification(context.Background(), 42, "payment_disputed", PaymentOptions{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}
