package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petmemorial/internal/domain/booking"
)

func TestScheduleBookingReminders_BothOffsetsInFuture(t *testing.T) {
	e := newEnv(t, appointment.Add(-72*time.Hour))

	scheduled, err := e.scheduler.ScheduleBookingReminders(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, scheduled, 2)

	assert.Equal(t, Type24h, scheduled[0].ReminderType)
	assert.True(t, scheduled[0].ScheduledTime.Equal(appointment.Add(-24*time.Hour)))
	assert.Equal(t, Type1h, scheduled[1].ReminderType)
	assert.True(t, scheduled[1].ScheduledTime.Equal(appointment.Add(-time.Hour)))

	stored, err := e.repo.ListByBooking(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.True(t, stored[0].ScheduledTime.Equal(appointment.Add(-24*time.Hour)))
	assert.False(t, stored[0].Sent)
}

func TestScheduleBookingReminders_SkipsPastOffsets(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		types []string
	}{
		{"day before noon keeps only 1h", appointment.Add(-22 * time.Hour), []string{Type1h}},
		{"thirty minutes out schedules nothing", appointment.Add(-30 * time.Minute), nil},
		{"exactly 24h out skips 24h", appointment.Add(-24 * time.Hour), []string{Type1h}},
		{"appointment already passed", appointment.Add(time.Hour), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, tt.now)

			scheduled, err := e.scheduler.ScheduleBookingReminders(context.Background(), 42)
			require.NoError(t, err)

			var got []string
			for _, r := range scheduled {
				got = append(got, r.ReminderType)
			}
			assert.Equal(t, tt.types, got)

			stored, err := e.repo.ListByBooking(context.Background(), 42)
			require.NoError(t, err)
			assert.Len(t, stored, len(tt.types))
		})
	}
}

func TestScheduleBookingReminders_RepeatedCallsDoNotDuplicate(t *testing.T) {
	e := newEnv(t, appointment.Add(-72*time.Hour))
	ctx := context.Background()

	_, err := e.scheduler.ScheduleBookingReminders(ctx, 42)
	require.NoError(t, err)

	require.NoError(t, e.db.Exec(`UPDATE service_bookings SET booking_time = ? WHERE id = ?`, "14:00", 42).Error)

	scheduled, err := e.scheduler.ScheduleBookingReminders(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, scheduled)

	stored, err := e.repo.ListByBooking(ctx, 42)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	moved := appointment.Add(4 * time.Hour)
	assert.True(t, stored[0].ScheduledTime.Equal(moved.Add(-24*time.Hour)))
	assert.True(t, stored[1].ScheduledTime.Equal(moved.Add(-time.Hour)))
}

func TestScheduleBookingReminders_MovedEarlierDropsPassedOffset(t *testing.T) {
	now := appointment.Add(-72 * time.Hour)
	e := newEnv(t, now)
	ctx := context.Background()

	_, err := e.scheduler.ScheduleBookingReminders(ctx, 42)
	require.NoError(t, err)

	moved := now.Add(3 * time.Hour)
	require.NoError(t, e.db.Exec(`UPDATE service_bookings SET booking_date = ?, booking_time = ? WHERE id = ?`,
		moved.Format("2006-01-02"), moved.Format("15:04"), 42).Error)

	_, err = e.scheduler.ScheduleBookingReminders(ctx, 42)
	require.NoError(t, err)

	stored, err := e.repo.ListByBooking(ctx, 42)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, Type1h, stored[0].ReminderType)
	assert.True(t, stored[0].ScheduledTime.Equal(moved.Add(-time.Hour)))

	// Only the moved 1h reminder is pending; the old 24h row is gone.
	due, err := e.repo.Due(ctx, moved, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, Type1h, due[0].ReminderType)
}

func TestScheduleBookingReminders_UnknownBooking(t *testing.T) {
	e := newEnv(t, appointment.Add(-72*time.Hour))

	_, err := e.scheduler.ScheduleBookingReminders(context.Background(), 999)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestScheduleBookingReminders_InvalidSchedule(t *testing.T) {
	e := newEnv(t, appointment.Add(-72*time.Hour))
	require.NoError(t, e.db.Exec(`UPDATE service_bookings SET booking_time = ? WHERE id = ?`, "sometime", 42).Error)

	_, err := e.scheduler.ScheduleBookingReminders(context.Background(), 42)
	assert.ErrorIs(t, err, booking.ErrInvalidSchedule)
}

func TestScheduleReminder_RejectsUnknownType(t *testing.T) {
	e := newEnv(t, appointment.Add(-72*time.Hour))

	_, err := e.scheduler.ScheduleReminder(context.Background(), 42, "2h", appointment.Add(-2*time.Hour))
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestScheduleBookingReminders_UsesLocation(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	e := newEnv(t, appointment.Add(-72*time.Hour))
	e.scheduler.loc = manila

	scheduled, err := e.scheduler.ScheduleBookingReminders(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, scheduled, 2)

	local := time.Date(2026, 3, 3, 10, 0, 0, 0, manila)
	assert.True(t, scheduled[1].ScheduledTime.Equal(local.Add(-time.Hour)))
}
