package notification

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"petmemorial/internal/domain/booking"
	"petmemorial/internal/email"
	"petmemorial/internal/pkg/logger"
	"petmemorial/internal/pkg/worker"
)

// Deps wires the notification service. Only DB is required; a nil Live becomes
// NopBroadcaster and nil senders skip their channel.
type Deps struct {
	DB        *gorm.DB
	Guard     *SchemaGuard
	Bookings  booking.Reader
	Providers *ProviderResolver
	Renderer  *email.Renderer
	Email     EmailSender
	SMS       SMSSender
	Live      Broadcaster
	Dedupe    Deduper
	Pool      *worker.Pool
	Logger    *zap.Logger
}

// Service is the entry point for callers: the rules engine for booking, payment,
// system and admin events plus the read/mark operations behind the HTTP API.
type Service struct {
	*Dispatcher

	bookings  booking.Reader
	providers *ProviderResolver
}

func NewService(d Deps) *Service {
	guard := d.Guard
	if guard == nil {
		guard = NewSchemaGuard(d.DB)
	}
	bookings := d.Bookings
	if bookings == nil {
		bookings = booking.NewRepository(d.DB)
	}
	log := logger.OrNop(d.Logger)
	providers := d.Providers
	if providers == nil {
		providers = NewProviderResolver(log, DefaultProviderStrategies(d.DB)...)
	}

	d.Logger = log

	return &Service{
		Dispatcher: newDispatcher(d, NewStore(d.DB, guard), NewAdminStore(d.DB, guard), NewRecipientRepository(d.DB)),
		bookings:   bookings,
		providers:  providers,
	}
}

func (s *Service) ListForUser(ctx context.Context, userID int64, limit int) ([]Notification, int64, error) {
	list, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		s.log.Warn("unread count failed", zap.Int64("user_id", userID), zap.Error(err))
		unread = 0
	}
	return list, unread, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return s.store.MarkAsRead(ctx, notificationID, userID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	return s.store.MarkAllAsRead(ctx, userID)
}

func (s *Service) ListAdmin(ctx context.Context, limit int, unreadOnly bool) ([]AdminNotification, error) {
	return s.admins.List(ctx, limit, unreadOnly)
}

func (s *Service) MarkAdminAsRead(ctx context.Context, id int64) error {
	return s.admins.MarkAsRead(ctx, id)
}

func (s *Service) MarkAllAdminAsRead(ctx context.Context) (int64, error) {
	return s.admins.MarkAllAsRead(ctx)
}
