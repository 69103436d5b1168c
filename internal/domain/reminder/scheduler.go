package reminder

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"petmemorial/internal/domain/booking"
	"petmemorial/internal/pkg/logger"
)

// Scheduler seeds booking_reminders for a booking's appointment. It does not send
// anything; the Dispatcher picks the rows up when they come due.
type Scheduler struct {
	bookings booking.Reader
	repo     *Repository
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

// NewScheduler interprets booking dates and times in loc.
func NewScheduler(bookings booking.Reader, repo *Repository, loc *time.Location, l *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		bookings: bookings,
		repo:     repo,
		loc:      loc,
		now:      time.Now,
		log:      logger.OrNop(l),
	}
}

// ScheduleBookingReminders schedules the 24h and 1h reminders that are still in the
// future. Offsets already in the past are skipped. Calling it again for the same
// booking moves pending reminders to the current appointment time instead of
// adding duplicates, and drops pending reminders whose offset has since passed.
func (s *Scheduler) ScheduleBookingReminders(ctx context.Context, bookingID int64) ([]Reminder, error) {
	b, err := s.bookings.GetContext(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	appointment, err := b.DateTime(s.loc)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var scheduled []Reminder
	for _, off := range Offsets {
		at := appointment.Add(-off.Before)
		if !at.After(now) {
			// A pending row from an earlier appointment time would now fire late.
			retired, err := s.repo.RetirePending(ctx, bookingID, off.Type)
			if err != nil {
				return scheduled, err
			}
			s.log.Debug("reminder offset already passed",
				zap.Int64("booking_id", bookingID),
				zap.String("reminder_type", off.Type),
				zap.Bool("retired_pending", retired),
			)
			continue
		}

		rem, err := s.ScheduleReminder(ctx, bookingID, off.Type, at)
		if errors.Is(err, ErrDuplicateReminder) {
			moved, rerr := s.repo.Reschedule(ctx, bookingID, off.Type, at)
			if rerr != nil {
				return scheduled, rerr
			}
			s.log.Info("reminder already scheduled",
				zap.Int64("booking_id", bookingID),
				zap.String("reminder_type", off.Type),
				zap.Bool("rescheduled", moved),
			)
			continue
		}
		if err != nil {
			return scheduled, err
		}
		scheduled = append(scheduled, *rem)
	}
	return scheduled, nil
}

// ScheduleReminder persists one reminder.
func (s *Scheduler) ScheduleReminder(ctx context.Context, bookingID int64, reminderType string, at time.Time) (*Reminder, error) {
	if !validType(reminderType) {
		return nil, ErrInvalidType
	}
	return s.repo.Insert(ctx, bookingID, reminderType, at)
}
