package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"petmemorial/internal/domain/booking"
	"petmemorial/internal/domain/notification"
	"petmemorial/internal/testutil"
)

// Booking 42 is seeded for 2026-03-03 10:00 UTC.
var appointment = time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)

type env struct {
	db        *gorm.DB
	repo      *Repository
	scheduler *Scheduler
}

func newEnv(t *testing.T, now time.Time) *env {
	t.Helper()

	db := testutil.OpenDB(t)
	testutil.CreateMarketplaceTables(t, db)
	testutil.SeedStandardBooking(t, db, "2026-03-03", "10:00")

	repo := NewRepository(db, notification.NewSchemaGuard(db))
	s := NewScheduler(booking.NewRepository(db), repo, time.UTC, nil)
	s.now = func() time.Time { return now }
	return &env{db: db, repo: repo, scheduler: s}
}

type notifyCall struct {
	BookingID int64
	Kind      notification.BookingKind
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	errs  map[int64]error
}

func (n *fakeNotifier) CreateBookingNotification(_ context.Context, bookingID int64, kind notification.BookingKind, _ notification.BookingEventOptions) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{BookingID: bookingID, Kind: kind})
	if err := n.errs[bookingID]; err != nil {
		return 0, err
	}
	return int64(len(n.calls)), nil
}
