package notification

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"petmemorial/internal/email"
	"petmemorial/internal/pkg/logger"
	"petmemorial/internal/pkg/metrics"
	"petmemorial/internal/pkg/worker"
)

type EmailSender interface {
	Send(ctx context.Context, msg email.Message) error
}

type SMSSender interface {
	Send(ctx context.Context, to, message string) error
}

// Broadcaster pushes payloads to connected live subscribers. Implementations must not block.
type Broadcaster interface {
	BroadcastToUser(userID int64, accountType string, payload any)
	BroadcastToAccountType(accountType string, payload any)
}

// NopBroadcaster is used when no live transport is wired.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastToUser(int64, string, any) {}
func (NopBroadcaster) BroadcastToAccountType(string, any) {}

// Deduper reports whether a side effect identified by scope+id should happen now.
type Deduper interface {
	AcquireOnce(ctx context.Context, scope string, id int64) bool
}

// EmailPolicy overrides the per-audience email default of a notification.
type EmailPolicy int

const (
	EmailDefault EmailPolicy = iota
	EmailOn
	EmailOff
)

func (p EmailPolicy) enabled(def bool) bool {
	switch p {
	case EmailOn:
		return true
	case EmailOff:
		return false
	default:
		return def
	}
}

// Request is a notification addressed to one account.
type Request struct {
	NewNotification
	Email EmailPolicy
	// AccountType narrows the live push to subscriptions of that account type.
	// Empty reaches every subscription of the user; business notifications
	// default to the business account.
	AccountType string
}

// AdminRequest is broadcast to every admin. Email defaults to on.
type AdminRequest struct {
	NewAdminNotification
	Email EmailPolicy
}

const (
	channelEmail = "email"
	channelSMS   = "sms"
	channelPush  = "push"

	audienceUser     = "user"
	audienceBusiness = "business"
	audienceAdmin    = "admin"
)

var errSkipped = errors.New("delivery skipped")

// Dispatcher persists a notification and then delivers it over email and live push.
// Only persistence errors reach the caller; delivery failures are logged and counted.
type Dispatcher struct {
	store      *Store
	admins     *AdminStore
	recipients *RecipientRepository
	renderer   *email.Renderer
	mailer     EmailSender
	sms        SMSSender
	live       Broadcaster
	dedupe     Deduper
	pool       *worker.Pool
	log        *zap.Logger
}

// CreateNotification creates a user-audience notification. Email is off unless requested.
func (d *Dispatcher) CreateNotification(ctx context.Context, req Request) (int64, error) {
	n, err := d.store.Create(ctx, req.NewNotification)
	if err != nil {
		return 0, err
	}
	metrics.IncCreated(audienceUser)

	if req.Email.enabled(false) {
		d.deliver(ctx, channelEmail, n.ID, n.UserID, func(ctx context.Context) error {
			rec, err := d.recipients.User(ctx, n.UserID)
			if err != nil {
				return err
			}
			if !rec.CanEmail() {
				return errSkipped
			}
			msg := d.renderer.RenderUserNotification(notificationData(n, rec)).To(rec.Email)
			return d.sendEmail(ctx, msg)
		})
	}

	d.pushToUser(ctx, n, req.AccountType)
	return n.ID, nil
}

// CreateBusinessNotification creates a notification for a provider account. Email is on unless disabled.
func (d *Dispatcher) CreateBusinessNotification(ctx context.Context, req Request) (int64, error) {
	n, err := d.store.Create(ctx, req.NewNotification)
	if err != nil {
		return 0, err
	}
	metrics.IncCreated(audienceBusiness)

	if req.Email.enabled(true) {
		d.deliver(ctx, channelEmail, n.ID, n.UserID, func(ctx context.Context) error {
			rec, err := d.recipients.Business(ctx, n.UserID)
			if err != nil {
				return err
			}
			if !rec.CanEmail() {
				return errSkipped
			}
			msg := d.renderer.RenderBusinessNotification(notificationData(n, rec), rec.BusinessName).To(rec.Email)
			return d.sendEmail(ctx, msg)
		})
	}

	d.pushToUser(ctx, n, accountTypeOr(req.AccountType, AccountBusiness))
	return n.ID, nil
}

// CreateAdminNotification stores one admin notification and emails every active admin.
// Each admin email is attempted independently of the others.
func (d *Dispatcher) CreateAdminNotification(ctx context.Context, req AdminRequest) (int64, error) {
	n, err := d.admins.Create(ctx, req.NewAdminNotification)
	if err != nil {
		return 0, err
	}
	metrics.IncCreated(audienceAdmin)

	if req.Email.enabled(true) {
		d.emailAdmins(ctx, n)
	}

	d.deliver(ctx, channelPush, n.ID, 0, func(context.Context) error {
		d.live.BroadcastToAccountType(AccountAdmin, LivePayload{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			Link:      n.Link,
			CreatedAt: n.CreatedAt,
		})
		return nil
	})
	return n.ID, nil
}

func (d *Dispatcher) emailAdmins(ctx context.Context, n *AdminNotification) {
	admins, err := d.recipients.ActiveAdmins(ctx)
	if err != nil {
		d.log.Warn("admin recipients unavailable",
			zap.Int64("notification_id", n.ID),
			zap.String("channel", channelEmail),
			zap.Error(err),
		)
		metrics.IncDelivery(channelEmail, metrics.OutcomeFailed)
		return
	}

	data := email.NotificationData{Title: n.Title, Message: n.Message}
	if n.Link != nil {
		data.Link = *n.Link
	}

	tasks := make([]worker.Task, 0, len(admins))
	for _, admin := range admins {
		admin := admin
		tasks = append(tasks, func(ctx context.Context) error {
			d.deliver(ctx, channelEmail, n.ID, admin.UserID, func(ctx context.Context) error {
				ad := data
				ad.FirstName = admin.FirstName
				return d.sendEmail(ctx, d.renderer.RenderAdminNotification(ad, n.Type).To(admin.Email))
			})
			return nil
		})
	}
	d.pool.Settle(ctx, tasks)
}

func (d *Dispatcher) pushToUser(ctx context.Context, n *Notification, accountType string) {
	d.deliver(ctx, channelPush, n.ID, n.UserID, func(context.Context) error {
		d.live.BroadcastToUser(n.UserID, accountType, livePayload(n))
		return nil
	})
}

func (d *Dispatcher) sendEmail(ctx context.Context, msg email.Message) error {
	if d.mailer == nil {
		return errSkipped
	}
	return d.mailer.Send(ctx, msg)
}

func (d *Dispatcher) acquire(ctx context.Context, scope string, id int64) bool {
	if d.dedupe == nil {
		return true
	}
	return d.dedupe.AcquireOnce(ctx, scope, id)
}

// deliver runs one best-effort delivery. Errors and panics are logged and counted, never returned.
func (d *Dispatcher) deliver(ctx context.Context, channel string, notificationID, userID int64, fn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("notification delivery panicked",
				zap.String("channel", channel),
				zap.Int64("notification_id", notificationID),
				zap.Int64("user_id", userID),
				zap.Any("panic", r),
			)
			metrics.IncDelivery(channel, metrics.OutcomeFailed)
		}
	}()

	err := fn(ctx)
	switch {
	case err == nil:
		metrics.IncDelivery(channel, metrics.OutcomeSent)
	case errors.Is(err, errSkipped):
		metrics.IncDelivery(channel, metrics.OutcomeSkipped)
	default:
		d.log.Warn("notification delivery failed",
			zap.String("channel", channel),
			zap.Int64("notification_id", notificationID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		metrics.IncDelivery(channel, metrics.OutcomeFailed)
	}
}

func notificationData(n *Notification, rec *Recipient) email.NotificationData {
	data := email.NotificationData{FirstName: rec.FirstName, Title: n.Title, Message: n.Message}
	if n.Link != nil {
		data.Link = *n.Link
	}
	return data
}

func livePayload(n *Notification) LivePayload {
	return LivePayload{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    false,
		Link:      n.Link,
		CreatedAt: n.CreatedAt,
	}
}

func accountTypeOr(accountType, def string) string {
	if accountType == "" {
		return def
	}
	return accountType
}

func newDispatcher(d Deps, store *Store, admins *AdminStore, recipients *RecipientRepository) *Dispatcher {
	live := d.Live
	if live == nil {
		live = NopBroadcaster{}
	}
	renderer := d.Renderer
	if renderer == nil {
		renderer = email.NewRenderer("", "")
	}
	return &Dispatcher{
		store:      store,
		admins:     admins,
		recipients: recipients,
		renderer:   renderer,
		mailer:     d.Email,
		sms:        d.SMS,
		live:       live,
		dedupe:     d.Dedupe,
		pool:       d.Pool,
		log:        logger.OrNop(d.Logger),
	}
}

