package reminder

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"petmemorial/internal/domain/booking"
	"petmemorial/internal/domain/notification"
	"petmemorial/internal/pkg/logger"
	"petmemorial/internal/pkg/metrics"
)

// Notifier is the part of the notification service the dispatcher needs.
type Notifier interface {
	CreateBookingNotification(ctx context.Context, bookingID int64, kind notification.BookingKind, opts notification.BookingEventOptions) (int64, error)
}

// Dispatcher polls for due reminders and turns them into booking notifications.
type Dispatcher struct {
	repo     *Repository
	notifier Notifier
	batch    int
	now      func() time.Time
	log      *zap.Logger
}

func NewDispatcher(repo *Repository, notifier Notifier, batch int, l *zap.Logger) *Dispatcher {
	if batch <= 0 {
		batch = 100
	}
	return &Dispatcher{
		repo:     repo,
		notifier: notifier,
		batch:    batch,
		now:      time.Now,
		log:      logger.OrNop(l),
	}
}

// RunOnce handles one batch of due reminders and returns how many were sent.
// A reminder whose notification fails stays pending and is retried next run,
// unless its booking no longer exists.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	due, err := d.repo.Due(ctx, d.now(), d.batch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, rem := range due {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		kind, ok := KindFor(rem.ReminderType)
		if !ok {
			d.log.Warn("unknown reminder type", zap.Int64("reminder_id", rem.ID), zap.String("reminder_type", rem.ReminderType))
			d.markSent(ctx, rem)
			metrics.IncReminder(rem.ReminderType, metrics.OutcomeSkipped)
			continue
		}

		_, err := d.notifier.CreateBookingNotification(ctx, rem.BookingID, kind, notification.BookingEventOptions{Source: "reminder"})
		switch {
		case err == nil:
			d.markSent(ctx, rem)
			metrics.IncReminder(rem.ReminderType, metrics.OutcomeSent)
			sent++
		case errors.Is(err, booking.ErrBookingNotFound):
			d.log.Warn("reminder booking is gone", zap.Int64("reminder_id", rem.ID), zap.Int64("booking_id", rem.BookingID))
			d.markSent(ctx, rem)
			metrics.IncReminder(rem.ReminderType, metrics.OutcomeSkipped)
		default:
			d.log.Warn("reminder notification failed",
				zap.Int64("reminder_id", rem.ID),
				zap.Int64("booking_id", rem.BookingID),
				zap.Error(err),
			)
			metrics.IncReminder(rem.ReminderType, metrics.OutcomeFailed)
		}
	}
	return sent, nil
}

func (d *Dispatcher) markSent(ctx context.Context, rem Reminder) {
	if err := d.repo.MarkSent(ctx, rem.ID, d.now()); err != nil {
		d.log.Error("mark reminder sent failed", zap.Int64("reminder_id", rem.ID), zap.Error(err))
	}
}

// Run polls every interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.log.Info("reminder dispatcher started", zap.Duration("interval", interval))
	for {
		if n, err := d.RunOnce(ctx); err != nil {
			if ctx.Err() == nil {
				d.log.Error("reminder run failed", zap.Error(err))
			}
		} else if n > 0 {
			d.log.Info("reminders dispatched", zap.Int("count", n))
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			d.log.Info("reminder dispatcher stopped")
			return
		}
	}
}
