package notification

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"gorm.io/gorm"

	"petmemorial/internal/database"
)

const (
	tableNotifications      = "notifications"
	tableAdminNotifications = "admin_notifications"
	tableBookingReminders   = "booking_reminders"

	keyColumnID     = "id"
	keyColumnLegacy = "notification_id"
)

var notificationsDDL = map[string][]string{
	database.DialectPostgres: {
		`CREATE TABLE IF NOT EXISTS notifications (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			title VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			type VARCHAR(16) NOT NULL DEFAULT 'info' CHECK (type IN ('info', 'success', 'warning', 'error')),
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			link VARCHAR(512),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_is_read ON notifications (is_read)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications (created_at)`,
	},
	database.DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'info' CHECK (type IN ('info', 'success', 'warning', 'error')),
			is_read BOOLEAN NOT NULL DEFAULT 0,
			link TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_is_read ON notifications (is_read)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications (created_at)`,
	},
}

var adminNotificationsDDL = map[string][]string{
	database.DialectPostgres: {
		`CREATE TABLE IF NOT EXISTS admin_notifications (
			id BIGSERIAL PRIMARY KEY,
			type VARCHAR(64) NOT NULL,
			title VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			entity_type VARCHAR(64),
			entity_id BIGINT,
			link VARCHAR(512),
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_admin_notifications_is_read ON admin_notifications (is_read)`,
		`CREATE INDEX IF NOT EXISTS idx_admin_notifications_created_at ON admin_notifications (created_at)`,
	},
	database.DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS admin_notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			entity_type TEXT,
			entity_id INTEGER,
			link TEXT,
			is_read BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_admin_notifications_is_read ON admin_notifications (is_read)`,
		`CREATE INDEX IF NOT EXISTS idx_admin_notifications_created_at ON admin_notifications (created_at)`,
	},
}

var remindersDDL = map[string][]string{
	database.DialectPostgres: {
		`CREATE TABLE IF NOT EXISTS booking_reminders (
			id BIGSERIAL PRIMARY KEY,
			booking_id BIGINT NOT NULL,
			reminder_type VARCHAR(8) NOT NULL,
			scheduled_time TIMESTAMPTZ NOT NULL,
			sent BOOLEAN NOT NULL DEFAULT FALSE,
			sent_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_booking_reminders_booking_type ON booking_reminders (booking_id, reminder_type)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_reminders_due ON booking_reminders (sent, scheduled_time)`,
	},
	database.DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS booking_reminders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			booking_id INTEGER NOT NULL,
			reminder_type TEXT NOT NULL,
			scheduled_time DATETIME NOT NULL,
			sent BOOLEAN NOT NULL DEFAULT 0,
			sent_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_booking_reminders_booking_type ON booking_reminders (booking_id, reminder_type)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_reminders_due ON booking_reminders (sent, scheduled_time)`,
	},
}

// SchemaGuard makes sure the tables this subsystem owns exist before they are used.
//
// The notifications and booking_reminders checks are cached for the lifetime of the
// guard. Two callers racing past an unset flag both run CREATE TABLE IF NOT EXISTS,
// which is harmless, so no lock is held around the DDL.
type SchemaGuard struct {
	db *gorm.DB

	notificationsReady atomic.Bool
	remindersReady     atomic.Bool

	mu        sync.Mutex
	keyColumn string
}

func NewSchemaGuard(db *gorm.DB) *SchemaGuard {
	return &SchemaGuard{db: db}
}

// EnsureNotificationsTable creates the notifications table and its indexes on first use.
func (g *SchemaGuard) EnsureNotificationsTable(ctx context.Context) error {
	if g.notificationsReady.Load() {
		return nil
	}
	if err := g.ensure(ctx, tableNotifications, notificationsDDL); err != nil {
		return err
	}
	g.notificationsReady.Store(true)
	return nil
}

// EnsureAdminNotificationsTable checks on every call; admin volume is low.
func (g *SchemaGuard) EnsureAdminNotificationsTable(ctx context.Context) error {
	return g.ensure(ctx, tableAdminNotifications, adminNotificationsDDL)
}

func (g *SchemaGuard) EnsureRemindersTable(ctx context.Context) error {
	if g.remindersReady.Load() {
		return nil
	}
	// The unique index may be missing on tables created before it existed,
	// so the statements run even when the table is already there.
	for _, stmt := range remindersDDL[database.Dialect(g.db)] {
		if err := g.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure %s: %w", tableBookingReminders, err)
		}
	}
	g.remindersReady.Store(true)
	return nil
}

// KeyColumn returns the primary key column of the notifications table: "id", or
// "notification_id" on legacy schemas. Detected once and cached.
func (g *SchemaGuard) KeyColumn(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.keyColumn != "" {
		return g.keyColumn, nil
	}

	cols, err := g.db.WithContext(ctx).Migrator().ColumnTypes(tableNotifications)
	if err != nil {
		return "", fmt.Errorf("inspect %s columns: %w", tableNotifications, err)
	}

	hasID, hasLegacy := false, false
	for _, col := range cols {
		switch col.Name() {
		case keyColumnID:
			hasID = true
		case keyColumnLegacy:
			hasLegacy = true
		}
	}

	switch {
	case hasID:
		g.keyColumn = keyColumnID
	case hasLegacy:
		g.keyColumn = keyColumnLegacy
	default:
		return "", fmt.Errorf("%s has neither %s nor %s column", tableNotifications, keyColumnID, keyColumnLegacy)
	}
	return g.keyColumn, nil
}

// Prepare runs every check up front so request paths only hit cached state.
func (g *SchemaGuard) Prepare(ctx context.Context) error {
	if err := g.EnsureNotificationsTable(ctx); err != nil {
		return err
	}
	if err := g.EnsureAdminNotificationsTable(ctx); err != nil {
		return err
	}
	if err := g.EnsureRemindersTable(ctx); err != nil {
		return err
	}
	_, err := g.KeyColumn(ctx)
	return err
}

// Reset forgets every cached result. Tests use it after dropping or recreating tables.
func (g *SchemaGuard) Reset() {
	g.notificationsReady.Store(false)
	g.remindersReady.Store(false)
	g.mu.Lock()
	g.keyColumn = ""
	g.mu.Unlock()
}

func (g *SchemaGuard) ensure(ctx context.Context, table string, ddl map[string][]string) error {
	exists, err := g.tableExists(ctx, table)
	if err != nil {
		return fmt.Errorf("check %s: %w", table, err)
	}
	if exists {
		return nil
	}
	db := g.db.WithContext(ctx)
	for _, stmt := range ddl[database.Dialect(g.db)] {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure %s: %w", table, err)
		}
	}
	return nil
}

func (g *SchemaGuard) tableExists(ctx context.Context, table string) (bool, error) {
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	if database.Dialect(g.db) == database.DialectPostgres {
		query = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = CURRENT_SCHEMA() AND table_name = ?`
	}
	var n int64
	if err := g.db.WithContext(ctx).Raw(query, table).Scan(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
