package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"petmemorial/internal/email"
	"petmemorial/internal/pkg/worker"
	"petmemorial/internal/testutil"
)

type recordingMailer struct {
	mu     sync.Mutex
	sent   []email.Message
	failTo map[string]bool
	err    error
	before func(msg email.Message)
}

func (m *recordingMailer) Send(_ context.Context, msg email.Message) error {
	if m.before != nil {
		m.before(msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.failTo[msg.To] {
		return errors.New("smtp: mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) to(addr string) []email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []email.Message
	for _, msg := range m.sent {
		if msg.To == addr {
			out = append(out, msg)
		}
	}
	return out
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type smsCall struct {
	To      string
	Message string
}

type recordingSMS struct {
	mu    sync.Mutex
	calls []smsCall
	err   error
}

func (s *recordingSMS) Send(_ context.Context, to, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, smsCall{To: to, Message: message})
	return nil
}

type pushCall struct {
	UserID      int64
	AccountType string
	Payload     any
}

type recordingBroadcaster struct {
	mu    sync.Mutex
	calls []pushCall
}

func (b *recordingBroadcaster) BroadcastToUser(userID int64, accountType string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, pushCall{UserID: userID, AccountType: accountType, Payload: payload})
}

func (b *recordingBroadcaster) BroadcastToAccountType(accountType string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, pushCall{AccountType: accountType, Payload: payload})
}

type stubDeduper struct{ allow bool }

func (d stubDeduper) AcquireOnce(context.Context, string, int64) bool { return d.allow }

type fixture struct {
	db       *gorm.DB
	svc      *Service
	mailer   *recordingMailer
	sms      *recordingSMS
	live     *recordingBroadcaster
	renderer *email.Renderer
}

type fixtureOption func(*Deps)

func withPool(t *testing.T, size int) fixtureOption {
	return func(d *Deps) {
		p, err := worker.NewPool("test", size, nil)
		require.NoError(t, err)
		t.Cleanup(p.Release)
		d.Pool = p
	}
}

func withDeduper(dd Deduper) fixtureOption {
	return func(d *Deps) { d.Dedupe = dd }
}

// newFixture seeds the marketplace tables and booking 42 (Bella, Standard Cremation,
// 2026-03-03 10:00) and wires a service with recording collaborators.
func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	testutil.CreateMarketplaceTables(t, db)
	testutil.SeedStandardBooking(t, db, "2026-03-03", "10:00")

	renderer := email.NewRenderer("Rainbow Paws", "https://paws.example.com")
	renderer.Now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	f := &fixture{
		db:       db,
		mailer:   &recordingMailer{failTo: map[string]bool{}},
		sms:      &recordingSMS{},
		live:     &recordingBroadcaster{},
		renderer: renderer,
	}
	deps := Deps{
		DB:       db,
		Renderer: renderer,
		Email:    f.mailer,
		SMS:      f.sms,
		Live:     f.live,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.svc = NewService(deps)
	return f
}

func (f *fixture) notificationsOf(t *testing.T, userID int64) []Notification {
	t.Helper()
	list, err := f.svc.store.ListByUser(context.Background(), userID, 50)
	require.NoError(t, err)
	return list
}
